package config

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-strata-bootstrap/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResource 固定数据资源
type stubResource struct {
	name string
	data map[string]any
	err  error
}

func (s *stubResource) Name() string                  { return s.name }
func (s *stubResource) Load() (map[string]any, error) { return s.data, s.err }

// stubResolver 按 location 返回预置资源
type stubResolver struct {
	resources map[string]*stubResource
	resolved  []string
}

func (s *stubResolver) Resolve(location string) (Resource, error) {
	s.resolved = append(s.resolved, location)
	if res, ok := s.resources[location]; ok {
		return res, nil
	}
	return &stubResource{name: location, data: map[string]any{}}, nil
}

func TestEnvironment_MergeSource(t *testing.T) {
	env := NewEnvironment()
	env.MergeSource(context.Background(), &stubResource{
		name: "test",
		data: map[string]any{"a": 1, "nested": map[string]any{"b": 2}},
	})

	assert.Equal(t, 1, env.GetInt("a", 0))
	assert.Equal(t, 2, env.GetInt("nested.b", 0))
}

func TestEnvironment_MergeSource_LoadFailureDegradesToEmpty(t *testing.T) {
	env := NewEnvironment()
	env.Merge(map[string]any{"keep": true}, property.NullIgnore)

	env.MergeSource(context.Background(), &stubResource{
		name: "broken",
		err:  errors.New("connection refused"),
	})

	// 失败的源贡献为空，已有配置不受影响
	assert.True(t, env.GetBool("keep", false))
	assert.Empty(t, env.Get("anything", nil))
}

func TestEnvironment_MergeSource_ForwardsImports(t *testing.T) {
	env := NewEnvironment()

	var received []string
	env.AttachImportSink(importSinkFunc(func(ctx context.Context, imports []string) {
		received = append(received, imports...)
	}))

	env.MergeSource(context.Background(), &stubResource{
		name: "with-imports",
		data: map[string]any{
			"config": map[string]any{
				"imports": []any{"file:extra.yml", "redis:app/config"},
			},
			"a": 1,
		},
	})

	assert.Equal(t, []string{"file:extra.yml", "redis:app/config"}, received)
	assert.Equal(t, 1, env.GetInt("a", 0))
}

type importSinkFunc func(ctx context.Context, imports []string)

func (f importSinkFunc) AddImports(ctx context.Context, imports []string) { f(ctx, imports) }

func TestExtractImports_Shapes(t *testing.T) {
	cases := []struct {
		name string
		data map[string]any
		want []string
	}{
		{"nil data", nil, nil},
		{"no key", map[string]any{"a": 1}, nil},
		{
			"string sequence",
			map[string]any{"config": map[string]any{"imports": []any{"file:x", "file:y"}}},
			[]string{"file:x", "file:y"},
		},
		{
			"non-sequence shape treated as no imports",
			map[string]any{"config": map[string]any{"imports": "file:x"}},
			nil,
		},
		{
			"mapping shape treated as no imports",
			map[string]any{"config": map[string]any{"imports": map[string]any{"a": 1}}},
			nil,
		},
		{
			"non-string items skipped",
			map[string]any{"config": map[string]any{"imports": []any{"file:x", 7, ""}}},
			[]string{"file:x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractImports(tc.data)
			if tc.want == nil {
				assert.Empty(t, got)
			} else {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
