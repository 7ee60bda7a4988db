package property

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Merge_RecursesOnNestedMappings(t *testing.T) {
	m := New(map[string]any{
		"database": map[string]any{
			"host": "localhost",
			"port": 5432,
		},
	})

	m.Merge(map[string]any{
		"database": map[string]any{
			"host": "db.internal",
		},
		"cache": map[string]any{"ttl": 60},
	}, NullIgnore)

	assert.Equal(t, "db.internal", m.Get("database.host", ""))
	assert.Equal(t, 5432, m.Get("database.port", 0))
	assert.Equal(t, 60, m.Get("cache.ttl", 0))
}

func TestMap_Merge_NonMappingReplacesSubtree(t *testing.T) {
	m := New(map[string]any{
		"feature": map[string]any{"enabled": true},
	})

	m.Merge(map[string]any{"feature": "off"}, NullIgnore)

	assert.Equal(t, "off", m.Get("feature", ""))
	assert.Equal(t, 0, m.Get("feature.enabled", 0))
}

func TestMap_Merge_NullPolicies(t *testing.T) {
	build := func() *Map {
		return New(map[string]any{"a": 1, "b": map[string]any{"c": 2}})
	}

	t.Run("ignore keeps current value", func(t *testing.T) {
		m := build()
		m.Merge(map[string]any{"a": nil}, NullIgnore)
		assert.Equal(t, 1, m.Get("a", 0))
	})

	t.Run("delete removes the key", func(t *testing.T) {
		m := build()
		m.Merge(map[string]any{"a": nil}, NullDelete)
		assert.False(t, m.IsSet("a"))
		_, ok := m.Data()["a"]
		assert.False(t, ok)
	})

	t.Run("override stores the null marker", func(t *testing.T) {
		m := build()
		m.Merge(map[string]any{"a": nil}, NullOverride)
		v, ok := m.Data()["a"]
		assert.True(t, ok)
		assert.Nil(t, v)
		// 读者视角：null 等同于未配置
		assert.Equal(t, 42, m.Get("a", 42))
	})
}

// override 策略下 C 合并进 (A 合并 B) 等价于 B、C 依次合并进 A
func TestMap_Merge_OverrideAssociativity(t *testing.T) {
	a := map[string]any{"x": 1, "n": map[string]any{"a": 1, "b": 2}}
	b := map[string]any{"n": map[string]any{"b": 20, "c": 30}}
	c := map[string]any{"x": nil, "n": map[string]any{"c": 300}}

	m1 := New(deepCopy(a))
	m1.Merge(b, NullOverride)
	m1.Merge(c, NullOverride)

	m2 := New(deepCopy(a))
	merged := New(deepCopy(b))
	merged.Merge(c, NullOverride)
	m2.Merge(merged.Data(), NullOverride)

	assert.Equal(t, m1.Data(), m2.Data())
	assert.Equal(t, 300, m1.Get("n.c", 0))
	assert.Equal(t, 20, m1.Get("n.b", 0))
	assert.Equal(t, 99, m1.Get("x", 99)) // null 覆盖后读为默认值
}

func TestMap_Get_InvalidPaths(t *testing.T) {
	m := New(map[string]any{"a": map[string]any{"b": 1}})

	for _, path := range []string{"", "a..b", ".a", "a.", "..", "."} {
		assert.Equal(t, "fallback", m.Get(path, "fallback"), "path=%q", path)

		_, err := m.GetE(path)
		assert.ErrorIs(t, err, ErrInvalidPath, "path=%q", path)
	}
}

func TestMap_Get_MissingAndNonMapping(t *testing.T) {
	m := New(map[string]any{"a": map[string]any{"b": 1}, "s": "scalar"})

	_, err := m.GetE("a.x")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// 中间节点不是 mapping：一致地返回未找到，而不是类型错误
	_, err = m.GetE("s.deeper")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.Equal(t, "def", m.Get("a.x.y.z", "def"))
}

func TestMap_Get_SegmentsAreTrimmed(t *testing.T) {
	m := New(map[string]any{"a": map[string]any{"b": 7}})
	assert.Equal(t, 7, m.Get(" a . b ", 0))
}

func TestMap_Get_CustomDelimiter(t *testing.T) {
	m := New(map[string]any{"a": map[string]any{"b.c": 5}})
	assert.Equal(t, 5, m.Get("a/b.c", 0, WithDelimiter("/")))
}

func TestMap_TypedGetters(t *testing.T) {
	m := New(map[string]any{
		"server": map[string]any{
			"port":    "8080",
			"debug":   "true",
			"name":    123,
			"imports": []any{"file:a.yml", "file:b.yml"},
		},
	})

	assert.Equal(t, 8080, m.GetInt("server.port", 0))
	assert.True(t, m.GetBool("server.debug", false))
	assert.Equal(t, "123", m.GetString("server.name", ""))
	assert.Equal(t, []string{"file:a.yml", "file:b.yml"},
		m.GetStringSlice("server.imports", nil))
	assert.Equal(t, []string{"x"}, m.GetStringSlice("server.missing", []string{"x"}))
}

func TestMap_Unmarshal(t *testing.T) {
	m := New(map[string]any{
		"redis": map[string]any{
			"addr": "127.0.0.1:6379",
			"db":   "3",
		},
	})

	var cfg struct {
		Addr string `mapstructure:"addr"`
		DB   int    `mapstructure:"db"`
	}
	require.NoError(t, m.Unmarshal("redis", &cfg))
	assert.Equal(t, "127.0.0.1:6379", cfg.Addr)
	assert.Equal(t, 3, cfg.DB)

	err := m.Unmarshal("nope", &cfg)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMap_Unmarshal_DurationString(t *testing.T) {
	m := New(map[string]any{
		"server": map[string]any{"dial_timeout": "50ms"},
	})

	var cfg struct {
		DialTimeout time.Duration `mapstructure:"dial_timeout"`
	}
	require.NoError(t, m.Unmarshal("server", &cfg))
	assert.Equal(t, 50*time.Millisecond, cfg.DialTimeout)
}

func TestMap_Data_ReturnsDeepCopy(t *testing.T) {
	m := New(map[string]any{"a": map[string]any{"b": 1}})

	snapshot := m.Data()
	snapshot["a"].(map[string]any)["b"] = 999

	assert.Equal(t, 1, m.Get("a.b", 0))
}

func TestMap_ConcurrentMergeAndGet(t *testing.T) {
	m := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Merge(map[string]any{"k": map[string]any{"v": j}}, NullIgnore)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Get("k.v", 0)
			}
		}()
	}
	wg.Wait()

	assert.True(t, m.IsSet("k.v"))
}
