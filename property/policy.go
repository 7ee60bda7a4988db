package property

// NullPolicy 深度合并时显式 null 值的处理策略
//
// 配置文档中显式写出的 null（YAML 的 ~ / null，JSON 的 null）反序列化后
// 是无类型 nil，合并时按策略处理：
//   - NullIgnore   跳过，不覆盖原值（默认）
//   - NullDelete   删除对应键
//   - NullOverride 将 nil 作为值存入
type NullPolicy int

const (
	NullIgnore NullPolicy = iota
	NullDelete
	NullOverride
)

// String 策略名称
func (p NullPolicy) String() string {
	switch p {
	case NullIgnore:
		return "ignore"
	case NullDelete:
		return "delete"
	case NullOverride:
		return "override"
	default:
		return "unknown"
	}
}
