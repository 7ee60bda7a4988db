package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument 将原始字节解析为配置 mapping
// 先按 YAML 解析，失败则回退 JSON；两者都失败或结果不是 mapping 时返回错误
func ParseDocument(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err == nil && data != nil {
		return data, nil
	}

	data = nil
	if err := json.Unmarshal(raw, &data); err == nil && data != nil {
		return data, nil
	}

	return nil, fmt.Errorf("文档既不是 YAML mapping 也不是 JSON object")
}
