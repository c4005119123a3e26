// Package aggregator builds windowed citation statistics.
package aggregator

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// Aggregator computes per (query, engine, domain) statistics over a window.
type Aggregator struct {
	window  domain.Window
	workers int
}

// New creates an aggregator. Workers bounds the per-query fan-out.
func New(window domain.Window, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{window: window, workers: workers}
}

// Window returns the aggregation window.
func (a *Aggregator) Window() domain.Window {
	return a.window
}

// InWindow returns the events observed inside the window, preserving order.
func (a *Aggregator) InWindow(events []domain.CitationEvent) []domain.CitationEvent {
	return filter(events, a.window)
}

func filter(events []domain.CitationEvent, w domain.Window) []domain.CitationEvent {
	out := make([]domain.CitationEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.ObservedAt) {
			out = append(out, e)
		}
	}
	return out
}

// Aggregate produces one AggregateWindow per triple present in the window,
// ordered by query, engine and domain. Events are partitioned by query and
// each partition is reduced by its own worker.
func (a *Aggregator) Aggregate(events []domain.CitationEvent) ([]domain.AggregateWindow, error) {
	groups := partition(filter(events, a.window))
	results := make([][]domain.AggregateWindow, len(groups))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, group := range groups {
		g.Go(func() error {
			results[i] = reduce(group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.AggregateWindow
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// partition splits events by query ID, in query order.
func partition(events []domain.CitationEvent) [][]domain.CitationEvent {
	byQuery := make(map[string][]domain.CitationEvent)
	for _, e := range events {
		byQuery[e.QueryID] = append(byQuery[e.QueryID], e)
	}
	ids := make([]string, 0, len(byQuery))
	for id := range byQuery {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([][]domain.CitationEvent, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, byQuery[id])
	}
	return groups
}

type accumulator struct {
	agg domain.AggregateWindow

	positions     int
	positionSum   int
	words         int
	wordSum       int
	schema        int
	schemaPresent int
	ages          int
	ageSum        int
}

func (acc *accumulator) add(e domain.CitationEvent) {
	a := &acc.agg
	if a.CitationCount == 0 || e.ObservedAt.Before(a.FirstObserved) {
		a.FirstObserved = e.ObservedAt
	}
	if e.ObservedAt.After(a.LastObserved) {
		a.LastObserved = e.ObservedAt
	}
	a.CitationCount++
	a.TypeHistogram[e.CitationType]++

	if e.Position != nil {
		acc.positions++
		acc.positionSum += *e.Position
	}
	f := e.Features
	if f.Completeness() > 0 {
		a.Features.Samples++
	}
	if f.WordCount != nil {
		acc.words++
		acc.wordSum += *f.WordCount
	}
	if f.HasSchemaMarkup != nil {
		acc.schema++
		if *f.HasSchemaMarkup {
			acc.schemaPresent++
		}
	}
	if f.FreshnessAgeDays != nil {
		acc.ages++
		acc.ageSum += *f.FreshnessAgeDays
	}
}

func (acc *accumulator) result() domain.AggregateWindow {
	a := acc.agg
	a.AvgPosition = mean(acc.positionSum, acc.positions)
	a.Features.MeanWordCount = mean(acc.wordSum, acc.words)
	a.Features.SchemaMarkupRate = mean(acc.schemaPresent, acc.schema)
	a.Features.MeanFreshnessAgeDays = mean(acc.ageSum, acc.ages)
	return a
}

func mean(sum, n int) domain.Measure {
	if n == 0 {
		return domain.Undefined()
	}
	return domain.Known(float64(sum) / float64(n))
}

// reduce aggregates a single query's events.
func reduce(events []domain.CitationEvent) []domain.AggregateWindow {
	accs := make(map[domain.AggregateKey]*accumulator)
	for _, e := range events {
		key := domain.AggregateKey{QueryID: e.QueryID, Engine: e.Engine, Domain: e.Domain}
		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{agg: domain.AggregateWindow{
				QueryID:       e.QueryID,
				Engine:        e.Engine,
				Domain:        e.Domain,
				TypeHistogram: make(map[domain.CitationType]int),
			}}
			accs[key] = acc
		}
		acc.add(e)
	}

	out := make([]domain.AggregateWindow, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.result())
	}
	SortAggregates(out)
	return out
}

// SortAggregates orders aggregates by query, engine and domain.
func SortAggregates(aggs []domain.AggregateWindow) {
	sort.Slice(aggs, func(i, j int) bool {
		a, b := aggs[i], aggs[j]
		if a.QueryID != b.QueryID {
			return a.QueryID < b.QueryID
		}
		if a.Engine != b.Engine {
			return a.Engine < b.Engine
		}
		return a.Domain < b.Domain
	})
}
