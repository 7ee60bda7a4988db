package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-strata-bootstrap/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWiring(t *testing.T) (*bus.Bus, *Environment, *ImportResolver) {
	t.Helper()
	b := bus.New(bus.DefaultConfig())
	t.Cleanup(b.Close)
	env := NewEnvironment()
	resolver := NewImportResolver(b, env)
	return b, env, resolver
}

func TestImportResolver_QueueThenRegister(t *testing.T) {
	_, env, resolver := newWiring(t)
	ctx := context.Background()

	stub := &stubResolver{resources: map[string]*stubResource{
		"1": {name: "x:1", data: map[string]any{"resolved": true}},
	}}

	resolver.AddImports(ctx, []string{"x:1"})
	assert.Equal(t, []string{"x:1"}, resolver.Pending())

	// 注册后恰好触发一次解析合并，并从缓存移除
	resolver.Register(ctx, "x", stub)

	assert.Equal(t, []string{"1"}, stub.resolved)
	assert.True(t, env.GetBool("resolved", false))
	assert.Empty(t, resolver.Pending())

	// 再次注册其他协议不会重复解析
	resolver.Register(ctx, "y", &stubResolver{})
	assert.Equal(t, []string{"1"}, stub.resolved)
}

func TestImportResolver_RegisterThenAddImports(t *testing.T) {
	_, env, resolver := newWiring(t)
	ctx := context.Background()

	stub := &stubResolver{resources: map[string]*stubResource{
		"later": {name: "x:later", data: map[string]any{"v": 7}},
	}}
	resolver.Register(ctx, "x", stub)

	// 新条目可能匹配早已注册的协议：AddImports 必须重放扫描
	resolver.AddImports(ctx, []string{"x:later"})

	assert.Equal(t, 7, env.GetInt("v", 0))
	assert.Empty(t, resolver.Pending())
}

func TestImportResolver_ProtocolLessEntryNeverResolves(t *testing.T) {
	_, _, resolver := newWiring(t)
	ctx := context.Background()

	resolver.AddImports(ctx, []string{"just-a-string"})

	for _, protocol := range []string{"a", "b", "c"} {
		resolver.Register(ctx, protocol, &stubResolver{})
	}

	// 无协议分隔符的条目任何注册都不匹配，永久保留用于诊断
	assert.Equal(t, []string{"just-a-string"}, resolver.Pending())
}

func TestImportResolver_LocationWhitespaceTrimmed(t *testing.T) {
	_, env, resolver := newWiring(t)
	ctx := context.Background()

	stub := &stubResolver{resources: map[string]*stubResource{
		"padded": {name: "x:padded", data: map[string]any{"ok": true}},
	}}
	resolver.Register(ctx, "x", stub)
	resolver.AddImports(ctx, []string{"x:  padded  "})

	assert.Equal(t, []string{"padded"}, stub.resolved)
	assert.True(t, env.GetBool("ok", false))
}

func TestImportResolver_Resolve(t *testing.T) {
	_, _, resolver := newWiring(t)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "no-protocol")
	assert.ErrorIs(t, err, ErrNoProtocol)
	assert.Contains(t, resolver.Pending(), "no-protocol")

	_, err = resolver.Resolve(ctx, "ghost:somewhere")
	assert.ErrorIs(t, err, ErrProtocolNotRegistered)
	assert.Contains(t, resolver.Pending(), "ghost:somewhere")

	resolver.Register(ctx, "x", &stubResolver{resources: map[string]*stubResource{
		"1": {name: "x:1", data: map[string]any{}},
	}})
	res, err := resolver.Resolve(ctx, "x: 1 ")
	require.NoError(t, err)
	assert.Equal(t, "x:1", res.Name())
}

// 扫描期间发现的 import 在同一次扫描内收敛到不动点，
// 无需等待下一次解析器注册
func TestImportResolver_SweepReachesFixpoint(t *testing.T) {
	_, env, resolver := newWiring(t)
	ctx := context.Background()

	stub := &stubResolver{resources: map[string]*stubResource{
		"first": {name: "x:first", data: map[string]any{
			"a": 1,
			"config": map[string]any{"imports": []any{"x:second"}},
		}},
		"second": {name: "x:second", data: map[string]any{
			"b": 2,
			"config": map[string]any{"imports": []any{"x:third"}},
		}},
		"third": {name: "x:third", data: map[string]any{"c": 3}},
	}}

	resolver.AddImports(ctx, []string{"x:first"})
	resolver.Register(ctx, "x", stub)

	assert.Equal(t, 1, env.GetInt("a", 0))
	assert.Equal(t, 2, env.GetInt("b", 0))
	assert.Equal(t, 3, env.GetInt("c", 0))
	assert.Empty(t, resolver.Pending())
}

// 自引用 import 被趟数上限拦住，不会死循环
func TestImportResolver_SelfReferenceTerminates(t *testing.T) {
	_, _, resolver := newWiring(t)
	ctx := context.Background()

	stub := &stubResolver{resources: map[string]*stubResource{
		"loop": {name: "x:loop", data: map[string]any{
			"config": map[string]any{"imports": []any{"x:loop"}},
		}},
	}}

	resolver.Register(ctx, "x", stub)
	resolver.AddImports(ctx, []string{"x:loop"})

	// 到达这里即证明扫描终止
	assert.NotEmpty(t, stub.resolved)
}

// 端到端场景：文件引导 + 延迟注册的 http 解析器
func TestImportResolver_EndToEndBootstrap(t *testing.T) {
	dir := t.TempDir()

	extra := filepath.Join(dir, "extra.yml")
	require.NoError(t, os.WriteFile(extra, []byte(
		"b: 2\nconfig:\n  imports:\n    - \"http://HOST/more.yml\"\n"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/more.yml", r.URL.Path)
		_, _ = w.Write([]byte("c: 3\n"))
	}))
	defer server.Close()

	bootstrap := filepath.Join(dir, "env.yml")
	bootstrapDoc := "a: 1\nconfig:\n  imports:\n    - \"file:" + extra + "\"\n"
	require.NoError(t, os.WriteFile(bootstrap, []byte(bootstrapDoc), 0o644))

	_, env, resolver := newWiring(t)
	ctx := context.Background()

	resolver.Register(ctx, "file", NewFileResolver())
	env.MergeSource(ctx, NewFileResource(bootstrap))

	// 初次合并后：a=1、b=2，http import 在缓存中等待
	assert.Equal(t, 1, env.GetInt("a", 0))
	assert.Equal(t, 2, env.GetInt("b", 0))
	assert.Equal(t, 0, env.GetInt("c", 0))
	require.Len(t, resolver.Pending(), 1)

	// 注册 http 解析器触发扫描，环境收敛到 a=1,b=2,c=3，缓存清空
	resolver.Register(ctx, "http", &rewriteHostResolver{target: server.URL})

	assert.Equal(t, 1, env.GetInt("a", 0))
	assert.Equal(t, 2, env.GetInt("b", 0))
	assert.Equal(t, 3, env.GetInt("c", 0))
	assert.Empty(t, resolver.Pending())
}

// rewriteHostResolver 把 import 中的占位 HOST 重写到 httptest server
type rewriteHostResolver struct {
	target string
}

func (r *rewriteHostResolver) Resolve(location string) (Resource, error) {
	// location 形如 "//HOST/more.yml"
	return NewHTTPResource(r.target+"/more.yml", nil), nil
}
