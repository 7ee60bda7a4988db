// Package redisconf Redis 配置源
//
// 提供以 Redis 键为载体的配置资源与对应的 import 解析器，
// 配置文档以 YAML 或 JSON 存入键值。
package redisconf

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config Redis 连接配置
type Config struct {
	// Addr 单地址（向后兼容，优先使用 Addrs）
	Addr string `mapstructure:"addr"`

	// Addrs 地址列表，取第一个地址
	Addrs []string `mapstructure:"addrs"`

	// Password 密码（可选）
	Password string `mapstructure:"password"`

	// DB 数据库编号（0-15）
	DB int `mapstructure:"db"`

	// PoolSize 连接池大小（默认 10）
	PoolSize int `mapstructure:"pool_size"`

	// MinIdleConns 最小空闲连接数（默认 5）
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries 最大重试次数（默认 3）
	MaxRetries int `mapstructure:"max_retries"`

	// DialTimeout 连接超时（默认 5s）
	DialTimeout time.Duration `mapstructure:"dial_timeout"`

	// ReadTimeout 读超时（默认 3s）
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout 写超时（默认 3s）
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() {
	if c.Addr != "" && len(c.Addrs) == 0 {
		c.Addrs = []string{c.Addr}
	}

	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 5
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}

	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addrs, validation.Required.Error("addrs cannot be empty")),
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.PoolSize, validation.Min(0)),
		validation.Field(&c.MinIdleConns, validation.Min(0)),
	)
}
