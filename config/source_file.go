package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileResource 文件配置资源
// 按扩展名解析 yaml/json/toml 等格式；文件不存在返回空 mapping（非错误）
type FileResource struct {
	path string
}

// NewFileResource 创建文件资源
func NewFileResource(path string) *FileResource {
	return &FileResource{path: path}
}

// Name 资源标识
func (r *FileResource) Name() string {
	return "file:" + r.path
}

// Load 加载并解析文件
func (r *FileResource) Load() (map[string]any, error) {
	if r.path == "" {
		return map[string]any{}, nil
	}

	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			// 文件不存在：空贡献，调用方负责告警
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("访问配置文件失败 %s: %w", r.path, err)
	}

	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", r.path, err)
	}

	return v.AllSettings(), nil
}

// FileResolver "file" 协议解析器
type FileResolver struct{}

// NewFileResolver 创建文件协议解析器
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

// Resolve location 即文件路径（相对路径基于进程工作目录）
func (f *FileResolver) Resolve(location string) (Resource, error) {
	return NewFileResource(location), nil
}
