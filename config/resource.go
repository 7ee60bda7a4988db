package config

// Resource 配置数据资源能力：能产出一份 mapping
//
// Load 可被重复调用（如远程配置变更时重新加载），每次调用相互独立。
// 返回错误或非 mapping 数据时，调用方将其降级为空贡献，不中断引导。
type Resource interface {
	// Name 资源标识（用于日志与诊断）
	Name() string

	// Load 加载配置数据
	Load() (map[string]any, error)
}

// LocationResolver 配置源定位解析器能力：
// 给定一个 location 字符串，产出一个可加载的 Resource
type LocationResolver interface {
	Resolve(location string) (Resource, error)
}
