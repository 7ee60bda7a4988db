package logger

import (
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
// 字段与配置树中 log.* 键一一对应（bootstrap 通过 Unmarshal("log", &cfg) 绑定）
type Config struct {
	// Level 日志级别：debug / info / warn / error（默认 info）
	Level string `mapstructure:"level"`

	// Path 日志文件路径（默认 logs/app.log）
	Path string `mapstructure:"path"`

	// Console 是否输出到控制台（默认 true）
	Console *bool `mapstructure:"console"`

	// EnableFile 是否输出到文件（默认 true）
	EnableFile *bool `mapstructure:"enable_file"`

	// MaxSizeMB 单个日志文件最大体积（默认 100MB）
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// MaxBackups 保留的历史文件数量（默认 30）
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAgeDays 历史文件保留天数（默认 30）
	MaxAgeDays int `mapstructure:"max_age_days"`

	// Compress 是否压缩历史文件
	Compress bool `mapstructure:"compress"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults 填充零值字段
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Path == "" {
		c.Path = "logs/app.log"
	}
	if c.Console == nil {
		enabled := true
		c.Console = &enabled
	}
	if c.EnableFile == nil {
		enabled := true
		c.EnableFile = &enabled
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 30
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

// zapLevel 解析日志级别，未知级别回落到 info
func (c *Config) zapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// consoleEnabled Console 开关（nil 视为开启）
func (c *Config) consoleEnabled() bool {
	return c.Console == nil || *c.Console
}

// fileEnabled 文件输出开关（nil 视为开启）
func (c *Config) fileEnabled() bool {
	return c.EnableFile == nil || *c.EnableFile
}
