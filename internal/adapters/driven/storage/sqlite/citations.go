package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driven"
)

// citationStore implements driven.CitationStore.
type citationStore struct {
	store *Store
}

var _ driven.CitationStore = (*citationStore)(nil)

// Append inserts events in one transaction. Rows whose uniqueness key is
// already stored are ignored.
func (s *citationStore) Append(ctx context.Context, events []domain.CitationEvent, interval time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO citation_events
			(query_id, engine, url, interval_start, domain, citation_type, position, observed_at, features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		features, err := json.Marshal(e.Features)
		if err != nil {
			return 0, fmt.Errorf("marshalling features: %w", err)
		}
		var position sql.NullInt64
		if e.Position != nil {
			position = sql.NullInt64{Int64: int64(*e.Position), Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			e.QueryID, string(e.Engine), e.URL, domain.IntervalStart(e.ObservedAt, interval).Unix(),
			e.Domain, string(e.CitationType), position, formatTime(e.ObservedAt), string(features))
		if err != nil {
			return 0, fmt.Errorf("inserting event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing events: %w", err)
	}
	return inserted, nil
}

// List returns events matching the filter.
func (s *citationStore) List(ctx context.Context, filter driven.EventFilter) ([]domain.CitationEvent, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.QueryIDs) > 0 {
		where = append(where, "query_id IN (?"+strings.Repeat(", ?", len(filter.QueryIDs)-1)+")")
		for _, id := range filter.QueryIDs {
			args = append(args, id)
		}
	}
	if !filter.Since.IsZero() {
		where = append(where, "observed_at >= ?")
		args = append(args, formatTime(filter.Since))
	}
	if !filter.Until.IsZero() {
		where = append(where, "observed_at <= ?")
		args = append(args, formatTime(filter.Until))
	}

	query := `SELECT query_id, engine, url, domain, citation_type, position, observed_at, features
		FROM citation_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY observed_at, query_id, engine, url"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []domain.CitationEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of stored events.
func (s *citationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM citation_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (domain.CitationEvent, error) {
	var (
		e                    domain.CitationEvent
		engine, citationType string
		position             sql.NullInt64
		observedAt, features string
	)
	if err := rows.Scan(&e.QueryID, &engine, &e.URL, &e.Domain, &citationType,
		&position, &observedAt, &features); err != nil {
		return e, fmt.Errorf("scanning event: %w", err)
	}
	e.Engine = domain.Engine(engine)
	e.CitationType = domain.CitationType(citationType)
	if position.Valid {
		p := int(position.Int64)
		e.Position = &p
	}
	t, err := parseTime(observedAt)
	if err != nil {
		return e, err
	}
	e.ObservedAt = t
	if err := json.Unmarshal([]byte(features), &e.Features); err != nil {
		return e, fmt.Errorf("unmarshalling features: %w", err)
	}
	return e, nil
}
