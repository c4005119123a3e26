package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, ok := store.Get("analysis.window")
	assert.False(t, ok)
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_ReadsHandWrittenTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[analysis]
window = "72h"
min_cluster_size = 12
min_support_deviation = 0.25

[weights]
competitor_strength = 0.4
self_absence = 0.3
content_feature_gap = 0.2
query_priority = 0.1

[competitors]
domains = ["rival.com", "other.io"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "72h", store.GetString("analysis.window"))
	assert.Equal(t, 12, store.GetInt("analysis.min_cluster_size"))
	assert.Equal(t, 12.0, store.GetFloat("analysis.min_cluster_size"))
	assert.Equal(t, 0.25, store.GetFloat("analysis.min_support_deviation"))
	assert.Equal(t, 0.4, store.GetFloat("weights.competitor_strength"))
	assert.Equal(t, []string{"rival.com", "other.io"}, store.GetStringSlice("competitors.domains"))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[analysis\nwindow ="), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_TypeMismatchesReturnZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("analysis.window", "72h"))
	require.NoError(t, store.Set("weights.self_absence", 0.3))

	assert.Zero(t, store.GetInt("analysis.window"))
	assert.Zero(t, store.GetInt("weights.self_absence"))
	assert.Zero(t, store.GetFloat("analysis.window"))
	assert.False(t, store.GetBool("analysis.window"))
	assert.Empty(t, store.GetString("weights.self_absence"))
	assert.Nil(t, store.GetStringSlice("analysis.window"))
}

func TestConfigStore_SetPersistsAsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("analysis.window", "48h"))
	require.NoError(t, store.Set("analysis.workers", 8))
	require.NoError(t, store.Set("weights.query_priority", 0.15))
	require.NoError(t, store.Set("competitors.domains", []string{"rival.com"}))

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[analysis]")
	assert.Contains(t, string(raw), "[weights]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "48h", reloaded.GetString("analysis.window"))
	assert.Equal(t, 8, reloaded.GetInt("analysis.workers"))
	assert.Equal(t, 0.15, reloaded.GetFloat("weights.query_priority"))
	assert.Equal(t, []string{"rival.com"}, reloaded.GetStringSlice("competitors.domains"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("weights", 1))

	assert.Error(t, store.Set("weights.self_absence", 0.3))
}

func TestConfigStore_LoadAfterExternalEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("analysis.window", "24h"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[analysis]\nwindow = \"96h\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "96h", store.GetString("analysis.window"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("analysis.workers", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("analysis.workers")
		}()
	}
	wg.Wait()

	_, ok := store.Get("analysis.workers")
	assert.True(t, ok)
}
