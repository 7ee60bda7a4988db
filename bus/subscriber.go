package bus

import "context"

// Subscriber 订阅者接口
//
// Handle 返回的错误由总线记录日志后继续分发，不会中断同事件的其他订阅者
type Subscriber interface {
	Handle(ctx context.Context, event Event) error
}

// SubscriberFunc 函数式订阅者适配器
type SubscriberFunc func(ctx context.Context, event Event) error

// Handle 实现 Subscriber 接口
func (f SubscriberFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// subscriberEntry 订阅登记项
type subscriberEntry struct {
	id         uint64           // 全局递增 ID（同时是注册顺序，用于优先级平局）
	kind       *Kind            // 订阅的事件种类
	subscriber Subscriber       // 订阅者
	condition  func(Event) bool // 可选的事件谓词，false 则跳过
	priority   int              // 优先级，数值大的先执行
	concurrent bool             // 并发执行（fire-and-forget，不等待完成）
	once       bool             // 触发一次后自动注销
}

// SubscribeOption 订阅选项
type SubscribeOption func(*subscriberEntry)

// WithPriority 设置优先级
// 数值越大越先执行，默认 0；平局按注册顺序
func WithPriority(priority int) SubscribeOption {
	return func(e *subscriberEntry) {
		e.priority = priority
	}
}

// WithCondition 设置事件谓词，返回 false 时跳过该订阅者
func WithCondition(condition func(Event) bool) SubscribeOption {
	return func(e *subscriberEntry) {
		e.condition = condition
	}
}

// WithConcurrent 标记为并发订阅者
// 分发时提交到协程池独立执行，发射方不阻塞也收不到完成信号；
// 与其他并发订阅者之间无顺序保证
func WithConcurrent() SubscribeOption {
	return func(e *subscriberEntry) {
		e.concurrent = true
	}
}

// WithOnce 只执行一次，随后自动注销
func WithOnce() SubscribeOption {
	return func(e *subscriberEntry) {
		e.once = true
	}
}
