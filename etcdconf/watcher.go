package etcdconf

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-strata-bootstrap/bus"
	"github.com/KOMKZ/go-strata-bootstrap/config"
	"github.com/KOMKZ/go-strata-bootstrap/logger"
)

// Watcher 监听 etcd 配置键的变更并热更新环境
//
// 每次变更把键值文档重新合并进环境，然后发出 ConfigUpdatedEvent，
// 订阅方按需刷新派生状态。删除键不回滚已合并的配置。
type Watcher struct {
	client *clientv3.Client
	env    *config.Environment
	bus    *bus.Bus
	log    *logger.CtxLogger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher 创建配置键监听器
func NewWatcher(client *clientv3.Client, env *config.Environment, b *bus.Bus) *Watcher {
	return &Watcher{
		client: client,
		env:    env,
		bus:    b,
		log:    logger.GetLogger("strata"),
	}
}

// Watch 启动对指定键的监听，返回后台 goroutine 已就绪
func (w *Watcher) Watch(ctx context.Context, key string) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	ch := w.client.Watch(ctx, key)

	go func() {
		defer close(w.done)
		for resp := range ch {
			if err := resp.Err(); err != nil {
				w.log.WarnCtx(ctx, "⚠️ etcd 配置监听出错",
					zap.String("key", key), zap.Error(err))
				continue
			}
			for _, ev := range resp.Events {
				if ev.Type != clientv3.EventTypePut {
					continue
				}
				w.apply(ctx, key)
			}
		}
	}()
}

// apply 重新加载键值并合并，随后广播配置更新事件
func (w *Watcher) apply(ctx context.Context, key string) {
	res := NewResource(w.client, key)
	w.env.MergeSource(ctx, res)

	w.log.InfoCtx(ctx, "🔄 etcd 配置变更已合并", zap.String("key", key))

	if w.bus != nil {
		w.bus.Emit(ctx, config.NewConfigUpdatedEvent(res.Name()))
	}
}

// Stop 停止监听并等待后台 goroutine 退出
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
}
