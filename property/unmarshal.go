package property

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Unmarshal 将 path 指向的子树绑定到结构体
//
// path 为空字符串时绑定整棵树。使用 mapstructure 弱类型解码
// （字符串 "8080" 可绑定到 int 字段），字段 tag 为 `mapstructure:"..."`。
func (m *Map) Unmarshal(path string, out any) error {
	var subtree any
	if path == "" {
		subtree = m.Data()
	} else {
		v, err := m.GetE(path)
		if err != nil {
			return fmt.Errorf("unmarshal %q: %w", path, err)
		}
		subtree = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("unmarshal %q: %w", path, err)
	}

	if err := decoder.Decode(subtree); err != nil {
		return fmt.Errorf("unmarshal %q: %w", path, err)
	}
	return nil
}
