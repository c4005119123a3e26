// Package patterns clusters citations by feature signature and measures how
// far each cluster's citation rate deviates from its baseline.
package patterns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

const noFeaturesReason = "no content features observed"

// Recogniser finds feature-signature patterns in windowed citation events.
type Recogniser struct {
	minClusterSize int
	workers        int
}

// New creates a recogniser. Clusters smaller than minClusterSize are excluded.
func New(minClusterSize, workers int) *Recogniser {
	if minClusterSize < 1 {
		minClusterSize = domain.DefaultMinClusterSize
	}
	if workers < 1 {
		workers = 1
	}
	return &Recogniser{minClusterSize: minClusterSize, workers: workers}
}

// Result holds the recogniser's outputs.
type Result struct {
	Patterns    []domain.Pattern
	Exclusions  []domain.Exclusion
	Preferences []domain.EnginePreference
	Positions   []domain.PositionPattern
	Temporal    *domain.TemporalPattern
}

// cluster accumulates citations sharing one signature.
type cluster struct {
	signature domain.FeatureSignature
	count     int
	engines   map[domain.Engine]int
	domains   map[string]bool
	first     time.Time
}

func newCluster(sig domain.FeatureSignature) *cluster {
	return &cluster{
		signature: sig,
		engines:   make(map[domain.Engine]int),
		domains:   make(map[string]bool),
	}
}

func (c *cluster) add(e domain.CitationEvent) {
	if c.count == 0 || e.ObservedAt.Before(c.first) {
		c.first = e.ObservedAt
	}
	c.count++
	c.engines[e.Engine]++
	c.domains[e.Domain] = true
}

func (c *cluster) merge(o *cluster) {
	if c.count == 0 || (o.count > 0 && o.first.Before(c.first)) {
		c.first = o.first
	}
	c.count += o.count
	for e, n := range o.engines {
		c.engines[e] += n
	}
	for d := range o.domains {
		c.domains[d] = true
	}
}

// tally is the per-partition state reduced after the fan-out.
type tally struct {
	clusters      map[string]*cluster
	engineTotals  map[domain.Engine]int
	engineDomains map[domain.Engine]map[string]bool
	engineTypes   map[domain.Engine]map[string]int
}

func newTally() *tally {
	return &tally{
		clusters:      make(map[string]*cluster),
		engineTotals:  make(map[domain.Engine]int),
		engineDomains: make(map[domain.Engine]map[string]bool),
		engineTypes:   make(map[domain.Engine]map[string]int),
	}
}

func (t *tally) add(e domain.CitationEvent) {
	sig := domain.SignatureOf(e.Features)
	key := sig.Key()
	c, ok := t.clusters[key]
	if !ok {
		c = newCluster(sig)
		t.clusters[key] = c
	}
	c.add(e)

	t.engineTotals[e.Engine]++
	if t.engineDomains[e.Engine] == nil {
		t.engineDomains[e.Engine] = make(map[string]bool)
		t.engineTypes[e.Engine] = make(map[string]int)
	}
	t.engineDomains[e.Engine][e.Domain] = true
	t.engineTypes[e.Engine][sig.ContentType]++
}

func (t *tally) merge(o *tally) {
	for key, c := range o.clusters {
		mine, ok := t.clusters[key]
		if !ok {
			mine = newCluster(c.signature)
			t.clusters[key] = mine
		}
		mine.merge(c)
	}
	for e, n := range o.engineTotals {
		t.engineTotals[e] += n
	}
	for e, ds := range o.engineDomains {
		if t.engineDomains[e] == nil {
			t.engineDomains[e] = make(map[string]bool)
			t.engineTypes[e] = make(map[string]int)
		}
		for d := range ds {
			t.engineDomains[e][d] = true
		}
		for ct, n := range o.engineTypes[e] {
			t.engineTypes[e][ct] += n
		}
	}
}

// Recognise clusters the events. Events are expected to be already windowed.
// Partitions by query are tallied in parallel and reduced in query order.
func (r *Recogniser) Recognise(events []domain.CitationEvent) (*Result, error) {
	byQuery := make(map[string][]domain.CitationEvent)
	for _, e := range events {
		byQuery[e.QueryID] = append(byQuery[e.QueryID], e)
	}
	ids := make([]string, 0, len(byQuery))
	for id := range byQuery {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	partials := make([]*tally, len(ids))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, id := range ids {
		g.Go(func() error {
			t := newTally()
			for _, e := range byQuery[id] {
				t.add(e)
			}
			partials[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally()
	for _, p := range partials {
		total.merge(p)
	}

	res := &Result{
		Patterns:    []domain.Pattern{},
		Exclusions:  []domain.Exclusion{},
		Preferences: r.preferences(total),
		Positions:   r.Positions(events),
		Temporal:    Temporal(events),
	}
	for key, c := range total.clusters {
		if c.signature.IsUnknown() {
			res.Exclusions = append(res.Exclusions, domain.Exclusion{
				Kind:       domain.ExclusionCluster,
				Subject:    key,
				SampleSize: c.count,
				Reason:     noFeaturesReason,
			})
			continue
		}
		if c.count < r.minClusterSize {
			res.Exclusions = append(res.Exclusions, domain.Exclusion{
				Kind:       domain.ExclusionCluster,
				Subject:    key,
				SampleSize: c.count,
				Reason:     fmt.Sprintf("sample size %d below minimum %d", c.count, r.minClusterSize),
			})
			continue
		}
		res.Patterns = append(res.Patterns, score(key, c, total))
	}

	SortPatterns(res.Patterns)
	sort.Slice(res.Exclusions, func(i, j int) bool {
		return res.Exclusions[i].Subject < res.Exclusions[j].Subject
	})
	return res, nil
}

// score computes rate, baseline and deviation for a cluster over the
// engines it was observed in.
func score(key string, c *cluster, t *tally) domain.Pattern {
	engines := make([]domain.Engine, 0, len(c.engines))
	for e := range c.engines {
		engines = append(engines, e)
	}
	sort.Slice(engines, func(i, j int) bool { return engines[i] < engines[j] })

	engineTotal := 0
	domains := make(map[string]bool)
	rates := make([]domain.EngineRate, 0, len(engines))
	for _, e := range engines {
		n := t.engineTotals[e]
		engineTotal += n
		for d := range t.engineDomains[e] {
			domains[d] = true
		}
		rates = append(rates, domain.EngineRate{
			Engine:       e,
			Citations:    c.engines[e],
			EngineTotal:  n,
			CitationRate: float64(c.engines[e]) / float64(n),
		})
	}

	rate := float64(c.count) / float64(engineTotal)
	baseline := float64(len(c.domains)) / float64(len(domains))

	return domain.Pattern{
		Signature:       c.signature,
		SignatureKey:    key,
		EnginesObserved: engines,
		CitationRate:    rate,
		BaselineRate:    baseline,
		Deviation:       Deviation(rate, baseline),
		SampleSize:      c.count,
		DistinctDomains: len(c.domains),
		FirstObserved:   c.first,
		EngineRates:     rates,
	}
}

// Deviation is (rate - baseline) / baseline clipped to the deviation bounds.
// A zero baseline has no meaningful deviation and yields 0.
func Deviation(rate, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	d := (rate - baseline) / baseline
	return math.Max(domain.MinDeviation, math.Min(domain.MaxDeviation, d))
}

// SortPatterns orders patterns by strength descending, then earlier first
// observation, then signature key.
func SortPatterns(patterns []domain.Pattern) {
	sort.Slice(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if sa, sb := a.Strength(), b.Strength(); sa != sb {
			return sa > sb
		}
		if !a.FirstObserved.Equal(b.FirstObserved) {
			return a.FirstObserved.Before(b.FirstObserved)
		}
		return a.SignatureKey < b.SignatureKey
	})
}

// preferences flags engines where a single known content type holds more
// than EnginePreferenceShare of the engine's citations.
func (r *Recogniser) preferences(t *tally) []domain.EnginePreference {
	prefs := []domain.EnginePreference{}
	for e, total := range t.engineTotals {
		if total < r.minClusterSize {
			continue
		}
		var top string
		topCount := 0
		for ct, n := range t.engineTypes[e] {
			if ct == domain.UnknownContentType {
				continue
			}
			if n > topCount || (n == topCount && ct < top) {
				top, topCount = ct, n
			}
		}
		share := float64(topCount) / float64(total)
		if topCount == 0 || share <= domain.EnginePreferenceShare {
			continue
		}
		prefs = append(prefs, domain.EnginePreference{
			Engine:      e,
			ContentType: top,
			Share:       share,
			Citations:   topCount,
			EngineTotal: total,
		})
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Engine < prefs[j].Engine })
	return prefs
}
