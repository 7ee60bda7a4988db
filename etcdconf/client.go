package etcdconf

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-strata-bootstrap/logger"
)

// NewClient 创建 etcd 客户端并验证连通性
func NewClient(ctx context.Context, cfg Config) (*clientv3.Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid etcd config: %w", err)
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.Username != "" {
		clientCfg.Username = cfg.Username
		clientCfg.Password = cfg.Password
	}

	client, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	statusCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if _, err := client.Status(statusCtx, cfg.Endpoints[0]); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	logger.GetLogger("strata").DebugCtx(ctx, "✅ etcd 配置源连接成功",
		zap.Strings("endpoints", cfg.Endpoints))

	return client, nil
}
