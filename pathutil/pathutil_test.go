package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EmptyPath(t *testing.T) {
	_, err := Resolve("", false)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestResolve_AbsolutePathReturnedAsIs(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(dir, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestResolve_RelativeAgainstAppPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAppPath, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "env"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env", "env.yml"), []byte("a: 1"), 0o644))

	got, err := Resolve("env/env.yml", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "env", "env.yml"), got)
}

func TestResolve_MissingFile(t *testing.T) {
	t.Setenv(EnvAppPath, t.TempDir())

	// mustExist=false 仍返回拼接结果
	got, err := Resolve("ghost.yml", false)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	_, err = Resolve("ghost.yml", true)
	assert.Error(t, err)
}
