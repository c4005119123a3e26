package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Typed(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("analysis.window", "72h"))
	require.NoError(t, store.Set("analysis.min_cluster_size", int64(12)))
	require.NoError(t, store.Set("weights.self_absence", 0.25))
	require.NoError(t, store.Set("weights.query_priority", 1))
	require.NoError(t, store.Set("flags.strict", true))
	require.NoError(t, store.Set("competitors.domains", []any{"rival.com", 7, "other.io"}))

	assert.Equal(t, "72h", store.GetString("analysis.window"))
	assert.Equal(t, 12, store.GetInt("analysis.min_cluster_size"))
	assert.Equal(t, 0.25, store.GetFloat("weights.self_absence"))
	assert.Equal(t, 1.0, store.GetFloat("weights.query_priority"))
	assert.True(t, store.GetBool("flags.strict"))
	assert.Equal(t, []string{"rival.com", "other.io"}, store.GetStringSlice("competitors.domains"))
}

func TestConfigStore_MissingAndWrongType(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("analysis.window", 5))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("analysis.window"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("analysis.window"))
	assert.Nil(t, store.GetStringSlice("analysis.window"))
}

func TestConfigStore_StringSliceIsCopied(t *testing.T) {
	store := NewConfigStore()
	domains := []string{"rival.com"}
	require.NoError(t, store.Set("competitors.domains", domains))

	got := store.GetStringSlice("competitors.domains")
	got[0] = "changed.com"

	assert.Equal(t, []string{"rival.com"}, store.GetStringSlice("competitors.domains"))
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("weights.self_absence", float64(i)/100)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetFloat("weights.self_absence")
		}()
	}
	wg.Wait()

	_, ok := store.Get("weights.self_absence")
	assert.True(t, ok)
}
