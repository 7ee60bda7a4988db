package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager Logger 管理器（管理多个模块 Logger 实例）
//
// 模块 Logger 按需创建并缓存；Reconfigure 会就地重建所有已发出的
// Logger 的底层 core，因此启动早期拿到的 Logger 在配置合并完成后
// 自动切换到新的级别与输出目标，引用无需替换。
type Manager struct {
	mu      sync.RWMutex
	config  Config
	loggers map[string]*CtxLogger
	writers []*lumberjack.Logger
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager 创建独立的 Manager 实例
// cfg 中的零值字段会自动填充为默认值
func NewManager(cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		config:  cfg,
		loggers: make(map[string]*CtxLogger),
	}
}

// Default 获取全局 Manager
// 首次调用时仅输出到控制台，文件输出在 bootstrap 用合并后的配置
// Reconfigure 之后才开启（对齐"先有日志，配置就绪后再落盘"的启动次序）
func Default() *Manager {
	managerOnce.Do(func() {
		cfg := DefaultConfig()
		enableFile := false
		cfg.EnableFile = &enableFile
		globalManager = NewManager(cfg)
	})
	return globalManager
}

// GetLogger 获取指定模块的 CtxLogger（全局 Manager 便捷方法）
func GetLogger(moduleName string) *CtxLogger {
	return Default().GetLogger(moduleName)
}

// GetLogger 获取指定模块的 CtxLogger（线程安全，按需创建）
// 返回的 Logger 已自动包含 module 字段
func (m *Manager) GetLogger(moduleName string) *CtxLogger {
	// 快速路径：读锁
	m.mu.RLock()
	if l, exists := m.loggers[moduleName]; exists {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// 双重检查，避免并发创建
	if l, exists := m.loggers[moduleName]; exists {
		return l
	}

	l := &CtxLogger{module: moduleName}
	l.base.Store(m.buildZapLogger(moduleName))
	m.loggers[moduleName] = l
	return l
}

// Reconfigure 应用新配置并重建所有已缓存的 Logger
// bootstrap 在配置环境合并完成后调用（对应 log.* 配置键）
func (m *Manager) Reconfigure(cfg Config) {
	cfg.ApplyDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeWritersLocked()
	m.config = cfg

	for name, l := range m.loggers {
		l.base.Store(m.buildZapLogger(name))
	}
}

// Sync 刷新所有 Logger 的缓冲
func (m *Manager) Sync() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.loggers {
		_ = l.base.Load().Sync()
	}
}

// Close 刷新并关闭文件写入器
func (m *Manager) Close() {
	m.Sync()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeWritersLocked()
}

func (m *Manager) closeWritersLocked() {
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.writers = nil
}

// buildZapLogger 按当前配置构建底层 zap.Logger（调用方持有写锁）
func (m *Manager) buildZapLogger(moduleName string) *zap.Logger {
	level := m.config.zapLevel()

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core

	if m.config.consoleEnabled() {
		consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level))
	}

	if m.config.fileEnabled() && m.config.Path != "" {
		if dir := filepath.Dir(m.config.Path); dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
		writer := &lumberjack.Logger{
			Filename:   m.config.Path,
			MaxSize:    m.config.MaxSizeMB,
			MaxBackups: m.config.MaxBackups,
			MaxAge:     m.config.MaxAgeDays,
			Compress:   m.config.Compress,
		}
		m.writers = append(m.writers, writer)
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level))
	}

	if len(cores) == 0 {
		return zap.NewNop().With(zap.String("module", moduleName))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return base.With(zap.String("module", moduleName))
}
