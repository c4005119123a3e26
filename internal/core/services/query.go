package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService manages the tracked query set.
type QueryService struct {
	store    driven.QueryStore
	settings driving.SettingsService
}

// NewQueryService creates a new query service. Queries are validated
// against the competitor set held by settings.
func NewQueryService(store driven.QueryStore, settings driving.SettingsService) *QueryService {
	return &QueryService{
		store:    store,
		settings: settings,
	}
}

// Add creates or updates a tracked query.
func (s *QueryService) Add(ctx context.Context, query domain.TrackedQuery) error {
	_, err := s.Import(ctx, []domain.TrackedQuery{query})
	return err
}

// Import validates the batch merged into the stored set, then saves it.
// Queries in the batch replace stored queries with the same ID.
func (s *QueryService) Import(ctx context.Context, queries []domain.TrackedQuery) (int, error) {
	if len(queries) == 0 {
		return 0, nil
	}
	batch := make([]domain.TrackedQuery, len(queries))
	for i, q := range queries {
		q.OwnerDomains = domain.CanonicalDomains(q.OwnerDomains)
		batch[i] = q
	}

	settings, err := s.settings.Get()
	if err != nil {
		return 0, err
	}
	competitors := settings.CompetitorSet()
	if err := domain.ValidateQueries(batch, competitors); err != nil {
		return 0, err
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing queries: %w", err)
	}
	incoming := make(map[string]bool, len(batch))
	for _, q := range batch {
		incoming[q.ID] = true
	}
	merged := append([]domain.TrackedQuery(nil), batch...)
	for _, q := range stored {
		if !incoming[q.ID] {
			merged = append(merged, q)
		}
	}
	if err := domain.ValidateQueries(merged, competitors); err != nil {
		return 0, err
	}

	for _, q := range batch {
		if err := s.store.Save(ctx, q); err != nil {
			return 0, fmt.Errorf("saving query %s: %w", q.ID, err)
		}
	}
	logger.Debug("queries: imported %d, %d tracked", len(batch), len(merged))
	return len(batch), nil
}

// Get retrieves a tracked query.
func (s *QueryService) Get(ctx context.Context, id string) (*domain.TrackedQuery, error) {
	return s.store.Get(ctx, id)
}

// List returns all tracked queries.
func (s *QueryService) List(ctx context.Context) ([]domain.TrackedQuery, error) {
	return s.store.List(ctx)
}

// Remove deletes a tracked query. Its citation history is kept.
func (s *QueryService) Remove(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
