package persist

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(t.TempDir())

	got := map[string]string{}
	require.NoError(t, b.Load(context.Background(), "prefixes.json", &got))
	assert.Empty(t, got)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(dir)
	ctx := context.Background()

	want := map[string]string{"1001": "ab", "1002": "cd"}
	require.NoError(t, b.Save(ctx, "prefixes.json", want))

	got := map[string]string{}
	require.NoError(t, b.Load(ctx, "prefixes.json", &got))
	assert.Equal(t, want, got)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "prefixes.json", entries[0].Name())
}

func TestFileBackend_Overwrite(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "prefixes.json", map[string]string{"1001": "ab"}))
	require.NoError(t, b.Save(ctx, "prefixes.json", map[string]string{"1002": "cd"}))

	got := map[string]string{}
	require.NoError(t, b.Load(ctx, "prefixes.json", &got))
	assert.Equal(t, map[string]string{"1002": "cd"}, got)
}

func TestFileBackend_NestedDirCreated(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(dir)

	require.NoError(t, b.Save(context.Background(), filepath.Join("data", "emotes.json"), map[string]int{}))
	_, err := os.Stat(filepath.Join(dir, "data", "emotes.json"))
	assert.NoError(t, err)
}

func TestFileBackend_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emotes.json"), []byte("{not json"), 0o644))

	b := NewFileBackend(dir)
	got := map[string]string{}
	assert.Error(t, b.Load(context.Background(), "emotes.json", &got))
}

func TestFileBackend_EmptyFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emotes.json"), nil, 0o644))

	b := NewFileBackend(dir)
	got := map[string]string{}
	require.NoError(t, b.Load(context.Background(), "emotes.json", &got))
	assert.Empty(t, got)
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	got := map[string]string{}
	require.NoError(t, b.Load(ctx, "prefixes.json", &got))
	assert.Empty(t, got)

	require.NoError(t, b.Save(ctx, "prefixes.json", map[string]string{"1001": "ab"}))
	raw, ok := b.Raw("prefixes.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"1001":"ab"}`, string(raw))

	require.NoError(t, b.Load(ctx, "prefixes.json", &got))
	assert.Equal(t, "ab", got["1001"])
}

func TestFileBackend_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	dir := t.TempDir()
	b := NewFileBackend(dir)
	ctx := context.Background()
	path := filepath.Join(dir, "emotes.json")

	require.NoError(t, b.Save(ctx, "emotes.json", map[string]int{}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "new files are world-readable")

	require.NoError(t, os.Chmod(path, 0o640))
	require.NoError(t, b.Save(ctx, "emotes.json", map[string]int{"a": 1}))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "existing mode is preserved")
}
