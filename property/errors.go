package property

import "errors"

// ErrInvalidPath 路径格式非法（空路径或包含空片段，如 "a..b"、".a"、"a."）
var ErrInvalidPath = errors.New("invalid property path")

// ErrKeyNotFound 路径不存在（或最终值为 null，对读者而言等同于未配置）
var ErrKeyNotFound = errors.New("property key not found")
