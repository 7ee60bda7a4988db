package property

import (
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// Map 线程安全的嵌套键值树
//
// 值为标量、map[string]any 或 []any 的任意嵌套（由反序列化的配置文档
// 填充，结构保证无环）。所有变更操作持写锁，读者不会观察到半合并状态；
// 合并与读取均不回调用户代码，锁不会跨回调持有。
type Map struct {
	mu   sync.RWMutex
	data map[string]any
}

// New 创建 Map，initial 可为 nil
func New(initial map[string]any) *Map {
	if initial == nil {
		initial = make(map[string]any)
	}
	return &Map{data: initial}
}

// Merge 将 override 深度合并到当前树
//
// 递归规则：两侧同为 mapping 时递归合并，否则新值整体替换旧值；
// 新值为 nil 时按 policy 处理（见 NullPolicy）。整个操作在写锁内原子完成。
func (m *Map) Merge(override map[string]any, policy NullPolicy) {
	if len(override) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	mergeTree(m.data, override, policy)
}

func mergeTree(base, override map[string]any, policy NullPolicy) {
	for k, v := range override {
		if v == nil {
			switch policy {
			case NullIgnore:
				continue
			case NullDelete:
				delete(base, k)
				continue
			}
			// NullOverride：直接落盘 nil
		}

		if curr, ok := base[k].(map[string]any); ok {
			if next, ok := v.(map[string]any); ok {
				mergeTree(curr, next, policy)
				continue
			}
		}
		base[k] = v
	}
}

// getOptions Get 系列方法的选项
type getOptions struct {
	delimiter string
}

// GetOption 读取选项
type GetOption func(*getOptions)

// WithDelimiter 自定义路径分隔符（默认 "."）
func WithDelimiter(delimiter string) GetOption {
	return func(o *getOptions) {
		o.delimiter = delimiter
	}
}

// GetE 按分隔符路径读取嵌套值
//
//   - 路径为空、包含空片段（"a..b"、".a"、"a."）返回 ErrInvalidPath
//   - 路径不存在、中间节点不是 mapping 返回 ErrKeyNotFound
//   - 命中的值恰为 nil 时同样返回 ErrKeyNotFound：对读者而言
//     “配置为 null”与“未配置”不可区分
func (m *Map) GetE(path string, opts ...GetOption) (any, error) {
	o := getOptions{delimiter: "."}
	for _, opt := range opts {
		opt(&o)
	}

	if path == "" || o.delimiter == "" {
		return nil, ErrInvalidPath
	}

	segments := strings.Split(path, o.delimiter)
	for i, seg := range segments {
		segments[i] = strings.TrimSpace(seg)
		if segments[i] == "" {
			return nil, ErrInvalidPath
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var current any = m.data
	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, ErrKeyNotFound
		}
		current, ok = node[seg]
		if !ok {
			return nil, ErrKeyNotFound
		}
	}

	if current == nil {
		return nil, ErrKeyNotFound
	}
	return current, nil
}

// Get 按路径读取，任何失败（非法路径、缺失、null 值）都返回 def
func (m *Map) Get(path string, def any, opts ...GetOption) any {
	v, err := m.GetE(path, opts...)
	if err != nil {
		return def
	}
	return v
}

// GetString 读取字符串值，失败返回 def
func (m *Map) GetString(path string, def string, opts ...GetOption) string {
	v, err := m.GetE(path, opts...)
	if err != nil {
		return def
	}
	return cast.ToString(v)
}

// GetInt 读取整数值，失败返回 def
func (m *Map) GetInt(path string, def int, opts ...GetOption) int {
	v, err := m.GetE(path, opts...)
	if err != nil {
		return def
	}
	return cast.ToInt(v)
}

// GetBool 读取布尔值，失败返回 def
func (m *Map) GetBool(path string, def bool, opts ...GetOption) bool {
	v, err := m.GetE(path, opts...)
	if err != nil {
		return def
	}
	return cast.ToBool(v)
}

// GetStringSlice 读取字符串序列，失败返回 def
func (m *Map) GetStringSlice(path string, def []string, opts ...GetOption) []string {
	v, err := m.GetE(path, opts...)
	if err != nil {
		return def
	}
	result, err := cast.ToStringSliceE(v)
	if err != nil {
		return def
	}
	return result
}

// IsSet 路径是否存在且非 null
func (m *Map) IsSet(path string, opts ...GetOption) bool {
	_, err := m.GetE(path, opts...)
	return err == nil
}

// Data 返回整棵树的深拷贝
func (m *Map) Data() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return deepCopy(m.data)
}

func deepCopy(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		switch tv := v.(type) {
		case map[string]any:
			dst[k] = deepCopy(tv)
		case []any:
			items := make([]any, len(tv))
			for i, item := range tv {
				if nested, ok := item.(map[string]any); ok {
					items[i] = deepCopy(nested)
				} else {
					items[i] = item
				}
			}
			dst[k] = items
		default:
			dst[k] = v
		}
	}
	return dst
}
