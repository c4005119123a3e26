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

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// Save stores a run result as JSON alongside its listing columns.
func (s *resultStore) Save(ctx context.Context, result *domain.RunResult) error {
	if result == nil || result.ID == "" {
		return domain.ErrInvalidInput
	}
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}

	info := result.Info()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO analysis_runs
			(id, name, window_end, created_at, events, gaps, patterns, recommendations, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			window_end = excluded.window_end,
			created_at = excluded.created_at,
			events = excluded.events,
			gaps = excluded.gaps,
			patterns = excluded.patterns,
			recommendations = excluded.recommendations,
			result = excluded.result
	`, info.ID, info.Name, formatTime(info.WindowEnd), formatTime(info.CreatedAt),
		info.Events, info.Gaps, info.Patterns, info.Recommendations, string(body))
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *resultStore) Get(ctx context.Context, id string) (*domain.RunResult, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT result FROM analysis_runs WHERE id = ?", id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return r, err
}

// Latest returns the most recently created run.
func (s *resultStore) Latest(ctx context.Context) (*domain.RunResult, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT result FROM analysis_runs ORDER BY created_at DESC, id LIMIT 1")
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoRuns
	}
	return r, err
}

// List returns run listings, newest first.
func (s *resultStore) List(ctx context.Context) ([]domain.RunInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, window_end, created_at, events, gaps, patterns, recommendations
		FROM analysis_runs ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var infos []domain.RunInfo
	for rows.Next() {
		var (
			info               domain.RunInfo
			windowEnd, created string
		)
		if err := rows.Scan(&info.ID, &info.Name, &windowEnd, &created,
			&info.Events, &info.Gaps, &info.Patterns, &info.Recommendations); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if info.WindowEnd, err = parseTime(windowEnd); err != nil {
			return nil, err
		}
		if info.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func scanResult(row scanner) (*domain.RunResult, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}
	var r domain.RunResult
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("unmarshalling result: %w", err)
	}
	return &r, nil
}
