package config

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-strata-bootstrap/bus"
	"github.com/KOMKZ/go-strata-bootstrap/logger"
	"go.uber.org/zap"
)

// ErrNoProtocol import 引用不含协议分隔符，永久无法解析
var ErrNoProtocol = errors.New("import reference has no protocol")

// ErrProtocolNotRegistered 协议尚无解析器，引用已入队等待
var ErrProtocolNotRegistered = errors.New("protocol has no registered resolver")

// maxSweepPasses 单次扫描的趟数上限
// 正常情况下缓存单调收缩保证终止，上限只是防御非收敛配置（自引用 import 等）
const maxSweepPasses = 64

// ImportResolver 协议注册表 + 未解析 import 缓存
//
// 每个 import 引用的形式为 "protocol:location"。协议已注册则立即解析，
// 未注册则入队缓存；每当有解析器注册（或新增 import 需要重试）时通过
// 事件总线触发一次扫描，将缓存中协议已就绪的条目解析并合并进环境。
// 不含协议分隔符的条目永久无法解析，仅保留用于诊断。
// 进程级单例生命周期，由 bootstrap 构造并持有。
type ImportResolver struct {
	mu        sync.Mutex
	resolvers map[string]LocationResolver
	cached    []string

	bus *bus.Bus
	env *Environment
	log *logger.CtxLogger

	sweepActive   int32 // 有扫描在跑时为 1
	sweepRequired int32 // 活跃扫描结束前收到的新信号
}

// NewImportResolver 创建 import 解析器并完成接线：
// 订阅 ResolverRegistered 事件（优先级 SweepPriority），把自己挂为
// 环境的 import 接收方
func NewImportResolver(b *bus.Bus, env *Environment) *ImportResolver {
	r := &ImportResolver{
		resolvers: make(map[string]LocationResolver),
		bus:       b,
		env:       env,
		log:       logger.GetLogger("strata"),
	}

	b.Subscribe(KindResolverRegistered, bus.SubscriberFunc(r.onResolverRegistered),
		bus.WithPriority(SweepPriority))
	env.AttachImportSink(r)

	return r
}

// Register 注册协议解析器并发出 ResolverRegistered 事件触发扫描
func (r *ImportResolver) Register(ctx context.Context, protocol string, resolver LocationResolver) {
	if protocol == "" || resolver == nil {
		return
	}

	r.mu.Lock()
	r.resolvers[protocol] = resolver
	r.mu.Unlock()

	r.log.InfoCtx(ctx, "注册配置源解析器", zap.String("protocol", protocol))
	r.bus.Emit(ctx, NewResolverRegisteredEvent(protocol))
}

// AddImports 追加新的 import 引用到缓存，并为每个已注册协议重放一次
// ResolverRegistered 事件——新条目可能匹配早已注册、但从未对它扫描过的协议
func (r *ImportResolver) AddImports(ctx context.Context, imports []string) {
	if len(imports) == 0 {
		return
	}

	r.mu.Lock()
	r.cached = append(r.cached, imports...)
	protocols := r.protocolsLocked()
	r.mu.Unlock()

	for _, protocol := range protocols {
		r.bus.Emit(ctx, NewResolverRegisteredEvent(protocol))
	}
}

// Resolve 解析单个 import 引用
//
// 无协议分隔符：入队（仅诊断保留）并返回 ErrNoProtocol；
// 协议未注册：入队等待后续注册，返回 ErrProtocolNotRegistered；
// 协议已注册：交给解析器，location 两端空白在查找前去除。
func (r *ImportResolver) Resolve(ctx context.Context, ref string) (Resource, error) {
	protocol, location, ok := splitRef(ref)
	if !ok {
		r.enqueue(ref)
		return nil, ErrNoProtocol
	}

	r.mu.Lock()
	resolver, exists := r.resolvers[protocol]
	r.mu.Unlock()

	if !exists {
		r.enqueue(ref)
		return nil, ErrProtocolNotRegistered
	}

	return resolver.Resolve(location)
}

// Pending 返回缓存中未解析 import 的快照（诊断/测试用）
func (r *ImportResolver) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cached...)
}

// Protocols 返回已注册协议列表
func (r *ImportResolver) Protocols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protocolsLocked()
}

func (r *ImportResolver) protocolsLocked() []string {
	protocols := make([]string, 0, len(r.resolvers))
	for p := range r.resolvers {
		protocols = append(protocols, p)
	}
	return protocols
}

func (r *ImportResolver) enqueue(ref string) {
	r.mu.Lock()
	r.cached = append(r.cached, ref)
	r.mu.Unlock()
}

// onResolverRegistered 重试扫描入口（固定订阅者）
//
// 扫描循环到不动点：一趟内解析过至少一个条目就再来一趟，扫描期间新发现
// 的 import 由下一趟接手，单趟自身不递归。已有扫描在跑时只置信号位，
// 由活跃扫描收尾前消费，避免并发扫描与信号丢失。
func (r *ImportResolver) onResolverRegistered(ctx context.Context, _ bus.Event) error {
	atomic.StoreInt32(&r.sweepRequired, 1)

	if !atomic.CompareAndSwapInt32(&r.sweepActive, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&r.sweepActive, 0)

	for atomic.CompareAndSwapInt32(&r.sweepRequired, 1, 0) {
		passes := 0
		for r.sweepPass(ctx) {
			passes++
			if passes >= maxSweepPasses {
				r.log.WarnCtx(ctx, "import 扫描达到趟数上限，疑似配置自引用",
					zap.Int("max_passes", maxSweepPasses),
					zap.Strings("pending", r.Pending()))
				break
			}
		}
	}

	r.reportUnresolvable(ctx)
	return nil
}

// sweepPass 单趟扫描：划分缓存，解析协议已就绪的条目并合并进环境，
// 其余条目原样保留。返回是否取得进展（解析或尝试解析过至少一个条目）。
func (r *ImportResolver) sweepPass(ctx context.Context) bool {
	r.mu.Lock()
	pending := r.cached
	r.cached = nil
	resolvers := make(map[string]LocationResolver, len(r.resolvers))
	for p, res := range r.resolvers {
		resolvers[p] = res
	}
	r.mu.Unlock()

	progress := false
	var remaining []string

	for _, ref := range pending {
		if ref == "" {
			continue
		}

		protocol, location, ok := splitRef(ref)
		if !ok {
			remaining = append(remaining, ref)
			continue
		}

		resolver, exists := resolvers[protocol]
		if !exists {
			remaining = append(remaining, ref)
			continue
		}

		progress = true
		resource, err := resolver.Resolve(location)
		if err != nil {
			r.log.WarnCtx(ctx, "import 解析失败，条目丢弃",
				zap.String("import", ref),
				zap.Error(err))
			continue
		}

		// 合并可能发现新的 import，新条目落在 cached 中由下一趟接手
		r.env.MergeSource(ctx, resource)
	}

	// 扫描期间 AddImports 追加的新条目排在保留条目之后
	r.mu.Lock()
	r.cached = append(remaining, r.cached...)
	r.mu.Unlock()

	return progress
}

// reportUnresolvable 扫描收尾时对缓存余量做一次诊断输出
func (r *ImportResolver) reportUnresolvable(ctx context.Context) {
	for _, ref := range r.Pending() {
		if _, _, ok := splitRef(ref); !ok {
			r.log.WarnCtx(ctx, "import 引用缺少协议，永久无法解析",
				zap.String("import", ref))
		} else {
			r.log.DebugCtx(ctx, "import 等待协议注册",
				zap.String("import", ref))
		}
	}
}

// splitRef 拆分 "protocol:location" 引用；无 ':' 时 ok 为 false
func splitRef(ref string) (protocol, location string, ok bool) {
	idx := strings.Index(ref, ":")
	if idx < 0 {
		return "", "", false
	}
	return ref[:idx], strings.TrimSpace(ref[idx+1:]), true
}
