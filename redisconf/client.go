package redisconf

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-strata-bootstrap/logger"
)

// NewClient 创建 Redis 客户端并验证连通性
//
// 应用默认值、校验配置后建连，Ping 失败立即报错而不是留到首次读取。
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addrs[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.GetLogger("strata").DebugCtx(ctx, "✅ Redis 配置源连接成功",
		zap.String("addr", cfg.Addrs[0]),
		zap.Int("db", cfg.DB))

	return client, nil
}
