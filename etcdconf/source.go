package etcdconf

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/KOMKZ/go-strata-bootstrap/config"
)

// Resource 以 etcd 键为载体的配置资源
//
// 键值为 YAML 或 JSON 文档；键不存在视为空贡献。
type Resource struct {
	client *clientv3.Client
	key    string
}

var _ config.Resource = (*Resource)(nil)

// NewResource 创建 etcd 配置资源
func NewResource(client *clientv3.Client, key string) *Resource {
	return &Resource{client: client, key: key}
}

// Name 资源标识
func (r *Resource) Name() string {
	return "etcd:" + r.key
}

// Load 读取并解析键值
func (r *Resource) Load() (map[string]any, error) {
	resp, err := r.client.Get(context.Background(), r.key)
	if err != nil {
		return nil, fmt.Errorf("etcd get %s: %w", r.key, err)
	}
	if len(resp.Kvs) == 0 {
		return map[string]any{}, nil
	}
	return config.ParseDocument(resp.Kvs[0].Value)
}

// Resolver 解析 "etcd:<key>" 形式的 import 条目
type Resolver struct {
	client *clientv3.Client
}

var _ config.LocationResolver = (*Resolver)(nil)

// NewResolver 创建 etcd import 解析器
func NewResolver(client *clientv3.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve 把 location（etcd 键名）转为资源
func (r *Resolver) Resolve(location string) (config.Resource, error) {
	if location == "" {
		return nil, errors.New("etcd import location is empty")
	}
	return NewResource(r.client, location), nil
}
