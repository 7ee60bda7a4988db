package logger

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxLogger Context-Aware 的 Zap Logger 包装器
// module 在创建时绑定，使用时只需传递 ctx，TraceID 自动提取
type CtxLogger struct {
	base   atomic.Pointer[zap.Logger]
	module string
}

// Module 返回绑定的模块名
func (l *CtxLogger) Module() string {
	return l.module
}

// DebugCtx 记录 Debug 级别日志（自动提取 TraceID）
func (l *CtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Load().Debug(msg, enrichFields(ctx, fields)...)
}

// Debug 记录 Debug 级别日志（不需要 context 的便捷方法）
func (l *CtxLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// InfoCtx 记录 Info 级别日志（自动提取 TraceID）
func (l *CtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Load().Info(msg, enrichFields(ctx, fields)...)
}

// Info 记录 Info 级别日志（不需要 context 的便捷方法）
func (l *CtxLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// WarnCtx 记录 Warn 级别日志（自动提取 TraceID）
func (l *CtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Load().Warn(msg, enrichFields(ctx, fields)...)
}

// Warn 记录 Warn 级别日志（不需要 context 的便捷方法）
func (l *CtxLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// ErrorCtx 记录 Error 级别日志（自动提取 TraceID）
func (l *CtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Load().Error(msg, enrichFields(ctx, fields)...)
}

// Error 记录 Error 级别日志（不需要 context 的便捷方法）
func (l *CtxLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// enrichFields 从 ctx 中提取 TraceID/SpanID 追加到字段列表
func enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return fields
	}

	enriched := make([]zap.Field, 0, len(fields)+2)
	enriched = append(enriched, zap.String("trace_id", spanCtx.TraceID().String()))
	if spanCtx.HasSpanID() {
		enriched = append(enriched, zap.String("span_id", spanCtx.SpanID().String()))
	}
	return append(enriched, fields...)
}
