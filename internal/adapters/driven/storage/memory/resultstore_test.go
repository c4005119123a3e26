package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func TestResultStore_LatestAndList(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNoRuns)

	older := &domain.RunResult{ID: "run-a", Name: "weekly", CreatedAt: base}
	newer := &domain.RunResult{ID: "run-b", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-b", latest.ID)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "run-b", infos[0].ID)
	assert.Equal(t, "weekly", infos[1].Name)

	got, err := store.Get(ctx, "run-a")
	require.NoError(t, err)
	assert.Same(t, older, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResultStore_RejectsMissingID(t *testing.T) {
	store := NewResultStore()

	assert.ErrorIs(t, store.Save(context.Background(), &domain.RunResult{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}
