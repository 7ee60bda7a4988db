package config

import "github.com/KOMKZ/go-strata-bootstrap/bus"

// SweepPriority 解析器重试扫描的订阅优先级
// 固定高于默认优先级 0，保证扫描先于应用层订阅者确定性执行
const SweepPriority = 10

var (
	// KindResolverRegistered 解析器注册事件种类
	KindResolverRegistered = bus.NewKind("config.resolver_registered", nil)

	// KindConfigUpdated 配置更新事件种类（远程热更新触发）
	KindConfigUpdated = bus.NewKind("config.updated", nil)
)

// ResolverRegisteredEvent 解析器注册事件
// 由 ImportResolver.Register / AddImports 发出，驱动缓存 import 的重试扫描
type ResolverRegisteredEvent struct {
	bus.BaseEvent

	// Protocol 新注册（或被重放）的协议名
	Protocol string
}

// NewResolverRegisteredEvent 创建解析器注册事件
func NewResolverRegisteredEvent(protocol string, opts ...bus.EventOption) *ResolverRegisteredEvent {
	return &ResolverRegisteredEvent{
		BaseEvent: bus.NewEvent(KindResolverRegistered, opts...),
		Protocol:  protocol,
	}
}

// ConfigUpdatedEvent 配置更新事件
// 远程配置源监听到变更并重新合并后发出
type ConfigUpdatedEvent struct {
	bus.BaseEvent

	// Location 发生变更的资源标识
	Location string
}

// NewConfigUpdatedEvent 创建配置更新事件
func NewConfigUpdatedEvent(location string, opts ...bus.EventOption) *ConfigUpdatedEvent {
	return &ConfigUpdatedEvent{
		BaseEvent: bus.NewEvent(KindConfigUpdated, opts...),
		Location:  location,
	}
}
