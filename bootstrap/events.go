package bootstrap

import (
	"math"

	"github.com/KOMKZ/go-strata-bootstrap/bus"
)

// 启动阶段订阅优先级
//
// 数值大的先执行：先合并引导配置，再据此重建日志器，
// 最后用合并结果注册远端解析器（延迟注册反馈回路的入口）。
const (
	// PriorityConfig 引导配置合并，必须先于其他一切启动逻辑
	PriorityConfig = math.MaxInt - 1

	// PriorityLogger 日志器按 log.* 配置重建
	PriorityLogger = math.MaxInt - 2

	// PriorityRemote 远端配置源（redis/etcd）解析器注册
	PriorityRemote = math.MaxInt - 3
)

// KindApplicationStartup 应用启动事件种类
var KindApplicationStartup = bus.NewKind("application.startup", nil)

// ApplicationStartupEvent 应用启动事件
//
// Start 只发出一次；启动子流程全部以订阅者形式挂在该事件上，
// 业务方可用普通优先级（低于上述常量）挂载自己的启动逻辑。
type ApplicationStartupEvent struct {
	bus.BaseEvent

	// App 正在启动的应用实例
	App *Application
}

// NewApplicationStartupEvent 创建启动事件
func NewApplicationStartupEvent(app *Application, opts ...bus.EventOption) *ApplicationStartupEvent {
	return &ApplicationStartupEvent{
		BaseEvent: bus.NewEvent(KindApplicationStartup, opts...),
		App:       app,
	}
}
