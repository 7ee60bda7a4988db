package redisconf

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/KOMKZ/go-strata-bootstrap/config"
)

// Resource 以 Redis 键为载体的配置资源
//
// 键值为 YAML 或 JSON 文档；键不存在视为空贡献而非错误，
// 与文件资源缺失的语义保持一致。
type Resource struct {
	client *redis.Client
	key    string
}

var _ config.Resource = (*Resource)(nil)

// NewResource 创建 Redis 配置资源
func NewResource(client *redis.Client, key string) *Resource {
	return &Resource{client: client, key: key}
}

// Name 资源标识
func (r *Resource) Name() string {
	return "redis:" + r.key
}

// Load 读取并解析键值
func (r *Resource) Load() (map[string]any, error) {
	raw, err := r.client.Get(context.Background(), r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return config.ParseDocument(raw)
}

// Resolver 解析 "redis:<key>" 形式的 import 条目
type Resolver struct {
	client *redis.Client
}

var _ config.LocationResolver = (*Resolver)(nil)

// NewResolver 创建 Redis import 解析器
func NewResolver(client *redis.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve 把 location（Redis 键名）转为资源
func (r *Resolver) Resolve(location string) (config.Resource, error) {
	if location == "" {
		return nil, errors.New("redis import location is empty")
	}
	return NewResource(r.client, location), nil
}
