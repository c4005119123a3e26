package feed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// queryFile is the on-disk shape of a query definition file.
type queryFile struct {
	Queries []queryEntry `yaml:"queries"`
}

// queryEntry keeps priority_weight optional so an omitted weight can be told
// apart from an explicit zero.
type queryEntry struct {
	ID             string   `yaml:"id"`
	Text           string   `yaml:"text"`
	PriorityWeight *float64 `yaml:"priority_weight,omitempty"`
	OwnerDomains   []string `yaml:"owner_domains"`
}

func (e queryEntry) query() (domain.TrackedQuery, error) {
	q := domain.TrackedQuery{ID: e.ID, Text: e.Text, OwnerDomains: e.OwnerDomains}
	if e.PriorityWeight != nil {
		if *e.PriorityWeight == 0 {
			return q, &domain.ConfigurationError{
				Field:  "queries." + e.ID + ".priority_weight",
				Reason: "must be positive, omit it for the default",
			}
		}
		q.PriorityWeight = *e.PriorityWeight
	}
	return q, nil
}

func entryOf(q domain.TrackedQuery) queryEntry {
	e := queryEntry{ID: q.ID, Text: q.Text, OwnerDomains: q.OwnerDomains}
	if q.PriorityWeight != 0 {
		w := q.PriorityWeight
		e.PriorityWeight = &w
	}
	return e
}

// ReadQueries decodes a YAML query file. Unknown fields are rejected so
// typos in weights or owner lists do not pass silently.
func ReadQueries(r io.Reader) ([]domain.TrackedQuery, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file queryFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	queries := make([]domain.TrackedQuery, 0, len(file.Queries))
	var errs []error
	for _, e := range file.Queries {
		q, err := e.query()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		queries = append(queries, q)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return queries, nil
}

// ReadQueriesFile reads a YAML query file from disk.
func ReadQueriesFile(path string) ([]domain.TrackedQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	queries, err := ReadQueries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return queries, nil
}

// WriteQueries encodes queries in the same YAML shape ReadQueries accepts.
func WriteQueries(w io.Writer, queries []domain.TrackedQuery) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	file := queryFile{Queries: make([]queryEntry, 0, len(queries))}
	for _, q := range queries {
		file.Queries = append(file.Queries, entryOf(q))
	}
	if err := enc.Encode(file); err != nil {
		return err
	}
	return enc.Close()
}
