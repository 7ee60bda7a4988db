package config

import (
	"context"

	"github.com/KOMKZ/go-strata-bootstrap/logger"
	"github.com/KOMKZ/go-strata-bootstrap/property"
	"go.uber.org/zap"
)

// ImportsKey 保留配置键：指向 import 引用字符串序列
const ImportsKey = "config.imports"

// Environment 进程级"生效配置"
//
// 一个 Environment 实例是引导文件加上经 config.imports 传递可达的所有
// 资源的合并结果。没有终态，可被无限次继续合并（远程热更新）。
// 读取契约与 property.Map 完全一致。
type Environment struct {
	*property.Map

	imports ImportSink
	log     *logger.CtxLogger
}

// ImportSink 接收新发现的 import 引用
// 由 ImportResolver 实现；拆出接口避免 Environment 与解析器互相持有具体类型
type ImportSink interface {
	AddImports(ctx context.Context, imports []string)
}

// NewEnvironment 创建空的配置环境
func NewEnvironment() *Environment {
	return &Environment{
		Map: property.New(nil),
		log: logger.GetLogger("strata"),
	}
}

// AttachImportSink 绑定 import 接收方（由 NewImportResolver 调用）
func (e *Environment) AttachImportSink(sink ImportSink) {
	e.imports = sink
}

// MergeSource 加载资源并合并进环境
//
// 资源加载失败降级为空贡献（记录告警，不中断引导）。合并前先从
// 刚加载的数据（而非累计树）中提取 config.imports 转交解析器——
// 提取在前，合并在后，因此 import 资源先落盘，引用它的文档后落盘，
// 文档自身的值覆盖其 import 的值。null 值按默认 ignore 策略处理。
func (e *Environment) MergeSource(ctx context.Context, resource Resource) {
	if resource == nil {
		return
	}

	data, err := resource.Load()
	if err != nil {
		e.log.WarnCtx(ctx, "配置源加载失败，按空贡献处理",
			zap.String("resource", resource.Name()),
			zap.Error(err))
		data = nil
	}
	if len(data) == 0 {
		return
	}

	if imports := ExtractImports(data); len(imports) > 0 && e.imports != nil {
		e.imports.AddImports(ctx, imports)
	}

	e.Merge(data, property.NullIgnore)
}

// ExtractImports 从一份配置数据中提取 import 引用列表
// config.imports 缺失、为空或形状不是序列时返回 nil（视为无 import）
func ExtractImports(data map[string]any) []string {
	if len(data) == 0 {
		return nil
	}

	value, err := property.New(data).GetE(ImportsKey)
	if err != nil {
		return nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil
	}

	imports := make([]string, 0, len(items))
	for _, item := range items {
		if ref, ok := item.(string); ok && ref != "" {
			imports = append(imports, ref)
		}
	}
	return imports
}
