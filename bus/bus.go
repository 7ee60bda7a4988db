package bus

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-strata-bootstrap/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// UnsubscribeFunc 注销函数
type UnsubscribeFunc func()

// Bus 事件总线
//
// 优先级有序、支持种类层级匹配的发布/订阅分发器。分发由调用 Emit 的
// 协程驱动，没有独立事件循环；同步订阅者在发射协程内按优先级依次执行，
// 并发订阅者提交到协程池后即被遗忘。订阅者回调内可以再次 Emit（锁不跨
// 回调持有，重入安全）。
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*Kind][]subscriberEntry
	nextID      uint64
	pool        *ants.Pool
	logger      *logger.CtxLogger
	closed      int32
}

// Config 总线配置
type Config struct {
	// PoolSize 并发订阅者协程池大小（默认 100）
	PoolSize int `mapstructure:"pool_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{PoolSize: 100}
}

// New 创建事件总线
func New(cfg Config) *Bus {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultConfig().PoolSize
	}

	b := &Bus{
		subscribers: make(map[*Kind][]subscriberEntry),
		logger:      logger.GetLogger("strata"),
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		b.logger.Error("创建协程池失败，使用默认容量", zap.Error(err))
		pool, _ = ants.NewPool(DefaultConfig().PoolSize)
	}
	b.pool = pool

	return b
}

// Subscribe 订阅事件种类（含其全部子孙种类），返回注销函数
// 永不失败；重复注册是相互独立的登记项
func (b *Bus) Subscribe(kind *Kind, subscriber Subscriber, opts ...SubscribeOption) UnsubscribeFunc {
	if kind == nil || subscriber == nil {
		return func() {}
	}

	entry := subscriberEntry{
		id:         atomic.AddUint64(&b.nextID, 1),
		kind:       kind,
		subscriber: subscriber,
	}
	for _, opt := range opts {
		opt(&entry)
	}

	b.mu.Lock()
	b.subscribers[kind] = append(b.subscribers[kind], entry)
	b.mu.Unlock()

	return func() {
		b.unsubscribe(kind, entry.id)
	}
}

// unsubscribe 按登记 ID 注销
func (b *Bus) unsubscribe(kind *Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subscribers[kind]
	for i, e := range entries {
		if e.id == id {
			b.subscribers[kind] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Emit 分发事件
//
// 收集所有“注册种类是事件种类的祖先或本身”的订阅者，按优先级降序
// （平局按注册顺序）依次处理：谓词为 false 的跳过；并发订阅者提交到
// 协程池（fire-and-forget）；同步订阅者内联执行。订阅者返回错误或
// panic 均被捕获记录，不影响其余订阅者。分发结束后移除已触发的
// once 订阅者。
func (b *Bus) Emit(ctx context.Context, event Event) {
	if event == nil || event.EventKind() == nil {
		return
	}

	entries := b.collectEntries(event.EventKind())
	if len(entries) == 0 {
		return
	}

	var firedOnce []subscriberEntry
	for _, entry := range entries {
		if entry.condition != nil && !entry.condition(event) {
			continue
		}

		if entry.concurrent {
			b.dispatchConcurrent(ctx, event, entry)
		} else {
			b.invoke(ctx, event, entry)
		}

		if entry.once {
			firedOnce = append(firedOnce, entry)
		}
	}

	for _, entry := range firedOnce {
		b.unsubscribe(entry.kind, entry.id)
	}
}

// collectEntries 收集匹配种类的订阅者并集，按优先级降序排序
func (b *Bus) collectEntries(kind *Kind) []subscriberEntry {
	b.mu.RLock()
	var entries []subscriberEntry
	for registered, subs := range b.subscribers {
		if kind.Is(registered) {
			entries = append(entries, subs...)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].id < entries[j].id
	})
	return entries
}

// invoke 同步执行订阅者，错误与 panic 只记录日志
func (b *Bus) invoke(ctx context.Context, event Event, entry subscriberEntry) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorCtx(ctx, "订阅者 panic",
				zap.String("kind", event.EventKind().Name()),
				zap.Any("panic", r))
		}
	}()

	if err := entry.subscriber.Handle(ctx, event); err != nil {
		b.logger.ErrorCtx(ctx, "订阅者执行失败",
			zap.String("kind", event.EventKind().Name()),
			zap.Error(err))
	}
}

// dispatchConcurrent 提交并发订阅者到协程池
// 协程池耗尽或已关闭时降级为独立 goroutine，保证 at-most-once 触发
func (b *Bus) dispatchConcurrent(ctx context.Context, event Event, entry subscriberEntry) {
	if atomic.LoadInt32(&b.closed) == 1 {
		return
	}

	task := func() {
		b.invoke(ctx, event, entry)
	}

	if err := b.pool.Submit(task); err != nil {
		b.logger.WarnCtx(ctx, "提交并发订阅任务失败，降级为独立协程",
			zap.String("kind", event.EventKind().Name()),
			zap.Error(err))
		go task()
	}
}

// Clear 移除指定种类的全部订阅者
func (b *Bus) Clear(kind *Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, kind)
}

// ClearAll 移除全部订阅者
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[*Kind][]subscriberEntry)
}

// SubscriberCount 指定种类当前的订阅者数量（用于测试）
func (b *Bus) SubscriberCount(kind *Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[kind])
}

// Close 关闭总线并释放协程池
func (b *Bus) Close() {
	atomic.StoreInt32(&b.closed, 1)
	if b.pool != nil {
		b.pool.Release()
	}
}
