// Package etcdconf etcd 配置源
//
// 提供以 etcd 键为载体的配置资源、对应的 import 解析器，
// 以及基于 Watch 的热更新：键值变更时重新合并并发出配置更新事件。
package etcdconf

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config etcd 连接配置
type Config struct {
	// Endpoints etcd 节点地址列表
	Endpoints []string `mapstructure:"endpoints"`

	// Username 用户名（可选，与 Password 成对出现）
	Username string `mapstructure:"username"`

	// Password 密码
	Password string `mapstructure:"password"`

	// DialTimeout 连接超时（默认 5s）
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() {
	if len(c.Endpoints) == 0 {
		c.Endpoints = []string{"127.0.0.1:2379"}
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoints, validation.Required.Error("endpoints cannot be empty")),
		validation.Field(&c.Password, validation.Required.When(c.Username != "").
			Error("password required when username is set")),
	)
}
