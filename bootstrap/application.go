// Package bootstrap 应用引导
//
// Application 用 samber/do 装配事件总线、配置环境、import 解析器与
// 日志管理器；启动流程本身就是一组挂在启动事件上的订阅者：
// 合并引导配置 → 重建日志器 → 按合并结果注册远端配置源解析器。
// 远端解析器注册后会自动回放之前缓存的 import（延迟注册反馈回路）。
package bootstrap

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-strata-bootstrap/bus"
	"github.com/KOMKZ/go-strata-bootstrap/config"
	"github.com/KOMKZ/go-strata-bootstrap/etcdconf"
	"github.com/KOMKZ/go-strata-bootstrap/logger"
	"github.com/KOMKZ/go-strata-bootstrap/pathutil"
	"github.com/KOMKZ/go-strata-bootstrap/redisconf"
)

// DefaultBootstrapFile 默认引导配置文件（相对 APP_PATH 解析）
const DefaultBootstrapFile = "env/env.yml"

// Application 应用实例
//
// 所有组件经由注入器构造且只构造一次；测试隔离通过新建
// Application 实现，不存在跨实例共享的总线或环境。
type Application struct {
	injector *do.RootScope

	bus        *bus.Bus
	env        *config.Environment
	imports    *config.ImportResolver
	logManager *logger.Manager
	log        *logger.CtxLogger

	bootstrapFile string
	httpClient    *http.Client

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once

	mu       sync.Mutex
	closers  []io.Closer
	watchers []*etcdconf.Watcher
}

// Option 应用构造选项
type Option func(*Application)

// WithBootstrapFile 指定引导配置文件路径（默认 env/env.yml）
func WithBootstrapFile(path string) Option {
	return func(a *Application) {
		a.bootstrapFile = path
	}
}

// WithHTTPClient 指定 http/https 配置源使用的客户端
func WithHTTPClient(client *http.Client) Option {
	return func(a *Application) {
		a.httpClient = client
	}
}

// New 创建应用实例
func New(opts ...Option) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		bootstrapFile: DefaultBootstrapFile,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(a)
	}

	injector := do.New()

	do.Provide(injector, func(do.Injector) (*logger.Manager, error) {
		return logger.Default(), nil
	})
	do.Provide(injector, func(do.Injector) (*bus.Bus, error) {
		return bus.New(bus.DefaultConfig()), nil
	})
	do.Provide(injector, func(do.Injector) (*config.Environment, error) {
		return config.NewEnvironment(), nil
	})
	do.Provide(injector, func(i do.Injector) (*config.ImportResolver, error) {
		return config.NewImportResolver(
			do.MustInvoke[*bus.Bus](i),
			do.MustInvoke[*config.Environment](i),
		), nil
	})

	a.injector = injector
	a.logManager = do.MustInvoke[*logger.Manager](injector)
	a.log = a.logManager.GetLogger("strata")
	a.bus = do.MustInvoke[*bus.Bus](injector)
	a.env = do.MustInvoke[*config.Environment](injector)
	a.imports = do.MustInvoke[*config.ImportResolver](injector)

	// 本地协议开箱即用；远端协议等启动配置合并后按需注册
	a.imports.Register(ctx, "file", config.NewFileResolver())
	a.imports.Register(ctx, "http", config.NewHTTPResolver("http", a.httpClient))
	a.imports.Register(ctx, "https", config.NewHTTPResolver("https", a.httpClient))

	a.bus.Subscribe(KindApplicationStartup, bus.SubscriberFunc(a.onConfigStartup),
		bus.WithPriority(PriorityConfig))
	a.bus.Subscribe(KindApplicationStartup, bus.SubscriberFunc(a.onLoggerStartup),
		bus.WithPriority(PriorityLogger))
	a.bus.Subscribe(KindApplicationStartup, bus.SubscriberFunc(a.onRemoteStartup),
		bus.WithPriority(PriorityRemote))

	return a
}

// Start 发出启动事件，只生效一次
func (a *Application) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		a.log.InfoCtx(ctx, "🚀 应用启动", zap.String("bootstrap", a.bootstrapFile))
		a.bus.Emit(ctx, NewApplicationStartupEvent(a))
	})
}

// onConfigStartup 合并引导配置文件
// 文件缺失只告警不中断，应用可以纯靠代码注入的配置运行
func (a *Application) onConfigStartup(ctx context.Context, _ bus.Event) error {
	path, err := pathutil.Resolve(a.bootstrapFile, true)
	if err != nil {
		a.log.WarnCtx(ctx, "⚠️ 引导配置缺失，跳过合并",
			zap.String("file", a.bootstrapFile), zap.Error(err))
		return nil
	}

	a.env.MergeSource(ctx, config.NewFileResource(path))
	a.log.InfoCtx(ctx, "✅ 引导配置已合并", zap.String("file", path))
	return nil
}

// onLoggerStartup 按合并后的 log.* 配置重建日志器
func (a *Application) onLoggerStartup(ctx context.Context, _ bus.Event) error {
	if !a.env.IsSet("log") {
		return nil
	}

	var cfg logger.Config
	if err := a.env.Unmarshal("log", &cfg); err != nil {
		a.log.WarnCtx(ctx, "⚠️ 日志配置解析失败，保留当前日志器", zap.Error(err))
		return nil
	}

	a.logManager.Reconfigure(cfg)
	a.log.DebugCtx(ctx, "✅ 日志器已按配置重建", zap.String("level", cfg.Level))
	return nil
}

// onRemoteStartup 按合并后的配置注册远端配置源解析器
//
// 注册动作本身触发缓存 import 的回放扫描：引导文件里
// "redis:..." / "etcd:..." 的 import 在这里完成闭环。
// 远端不可达只告警，对应 import 留在缓存中。
func (a *Application) onRemoteStartup(ctx context.Context, _ bus.Event) error {
	if a.env.IsSet("redis.server") {
		a.registerRedis(ctx)
	}
	if a.env.IsSet("etcd.server") {
		a.registerEtcd(ctx)
	}
	return nil
}

func (a *Application) registerRedis(ctx context.Context) {
	var cfg redisconf.Config
	if err := a.env.Unmarshal("redis.server", &cfg); err != nil {
		a.log.WarnCtx(ctx, "⚠️ Redis 配置解析失败，跳过注册", zap.Error(err))
		return
	}

	client, err := redisconf.NewClient(ctx, cfg)
	if err != nil {
		a.log.WarnCtx(ctx, "⚠️ Redis 配置源不可达，跳过注册", zap.Error(err))
		return
	}

	a.addCloser(client)
	a.imports.Register(ctx, "redis", redisconf.NewResolver(client))
}

func (a *Application) registerEtcd(ctx context.Context) {
	var cfg etcdconf.Config
	if err := a.env.Unmarshal("etcd.server", &cfg); err != nil {
		a.log.WarnCtx(ctx, "⚠️ etcd 配置解析失败，跳过注册", zap.Error(err))
		return
	}

	client, err := etcdconf.NewClient(ctx, cfg)
	if err != nil {
		a.log.WarnCtx(ctx, "⚠️ etcd 配置源不可达，跳过注册", zap.Error(err))
		return
	}

	a.addCloser(client)
	a.imports.Register(ctx, "etcd", etcdconf.NewResolver(client))

	// watch_keys 列出的键启用热更新
	for _, key := range a.env.GetStringSlice("etcd.server.watch_keys", nil) {
		w := etcdconf.NewWatcher(client, a.env, a.bus)
		w.Watch(a.ctx, key)

		a.mu.Lock()
		a.watchers = append(a.watchers, w)
		a.mu.Unlock()
	}
}

func (a *Application) addCloser(c io.Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c)
}

// Stop 优雅关闭：先停监听器与总线，再关远端连接与注入器
func (a *Application) Stop() {
	a.cancel()

	a.mu.Lock()
	watchers := a.watchers
	closers := a.closers
	a.watchers = nil
	a.closers = nil
	a.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}

	a.bus.Close()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			a.log.WarnCtx(context.Background(), "⚠️ 组件关闭失败", zap.Error(err))
		}
	}

	if err := a.injector.Shutdown(); err != nil {
		a.log.WarnCtx(context.Background(), "⚠️ 注入器关闭失败", zap.Error(err))
	}

	a.logManager.Sync()
}

// WaitShutdown 等待关闭信号
// 双信号机制：第一次信号触发优雅关停，第二次立即强制退出
func (a *Application) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		a.log.InfoCtx(a.ctx, "收到关闭信号，开始优雅关停", zap.String("signal", sig.String()))

		go func() {
			sig := <-quit
			a.log.WarnCtx(context.Background(), "⚠️ 再次收到信号，强制退出", zap.String("signal", sig.String()))
			os.Exit(1)
		}()

	case <-a.ctx.Done():
		a.log.DebugCtx(context.Background(), "上下文已取消，开始优雅关停")
	}

	a.Stop()
}

// Bus 事件总线
func (a *Application) Bus() *bus.Bus {
	return a.bus
}

// Environment 配置环境
func (a *Application) Environment() *config.Environment {
	return a.env
}

// Imports import 解析器
func (a *Application) Imports() *config.ImportResolver {
	return a.imports
}

// Logger 获取模块日志器
func (a *Application) Logger(module string) *logger.CtxLogger {
	return a.logManager.GetLogger(module)
}

// Injector samber/do 注入器，业务组件挂载点
func (a *Application) Injector() *do.RootScope {
	return a.injector
}

// Context 应用根上下文，Stop 时取消
func (a *Application) Context() context.Context {
	return a.ctx
}
