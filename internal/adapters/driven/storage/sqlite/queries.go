package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
)

// queryStore implements driven.QueryStore.
type queryStore struct {
	store *Store
}

var _ driven.QueryStore = (*queryStore)(nil)

// Save creates or updates a tracked query.
func (s *queryStore) Save(ctx context.Context, q domain.TrackedQuery) error {
	owners := q.OwnerDomains
	if owners == nil {
		owners = []string{}
	}
	ownersJSON, err := json.Marshal(owners)
	if err != nil {
		return fmt.Errorf("marshalling owner domains: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO tracked_queries (id, text, priority_weight, owner_domains)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			priority_weight = excluded.priority_weight,
			owner_domains = excluded.owner_domains
	`, q.ID, q.Text, q.PriorityWeight, string(ownersJSON))
	if err != nil {
		return fmt.Errorf("saving query: %w", err)
	}
	return nil
}

// Get retrieves a tracked query by ID.
func (s *queryStore) Get(ctx context.Context, id string) (*domain.TrackedQuery, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, text, priority_weight, owner_domains FROM tracked_queries WHERE id = ?
	`, id)
	q, err := scanQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns all tracked queries ordered by ID.
func (s *queryStore) List(ctx context.Context) ([]domain.TrackedQuery, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, text, priority_weight, owner_domains FROM tracked_queries ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.TrackedQuery
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Delete removes a tracked query.
func (s *queryStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM tracked_queries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting query: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuery(row scanner) (domain.TrackedQuery, error) {
	var (
		q      domain.TrackedQuery
		owners string
	)
	if err := row.Scan(&q.ID, &q.Text, &q.PriorityWeight, &owners); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return q, err
		}
		return q, fmt.Errorf("scanning query: %w", err)
	}
	if err := json.Unmarshal([]byte(owners), &q.OwnerDomains); err != nil {
		return q, fmt.Errorf("unmarshalling owner domains: %w", err)
	}
	return q, nil
}
