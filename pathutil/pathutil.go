// Package pathutil 资源路径解析
//
// 可执行文件可能被打包后分发，资源相对路径不再相对源码目录：
// 相对路径优先基于 APP_PATH 环境变量解析，缺省回退到可执行文件所在目录。
package pathutil

import (
	"errors"
	"os"
	"path/filepath"
)

// EnvAppPath 开发环境下资源根目录的环境变量名
const EnvAppPath = "APP_PATH"

// ErrEmptyPath 路径为空
var ErrEmptyPath = errors.New("path is empty")

// Resolve 解析资源绝对路径
//
// 绝对路径原样规范化返回；相对路径基于 APP_PATH（未设置则取可执行文件
// 目录，再退到工作目录）拼接。mustExist 为 true 时校验存在性。
func Resolve(path string, mustExist bool) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	path = filepath.Clean(path)

	var abs string
	if filepath.IsAbs(path) {
		abs = path
	} else {
		abs = filepath.Join(baseDir(), path)
	}
	abs = filepath.Clean(abs)

	if mustExist {
		if _, err := os.Stat(abs); err != nil {
			return "", err
		}
	}
	return abs, nil
}

func baseDir() string {
	if base := os.Getenv(EnvAppPath); base != "" {
		return base
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
