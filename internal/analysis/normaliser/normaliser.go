// Package normaliser turns raw collector records into citation events.
package normaliser

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// Normaliser validates, canonicalises and de-duplicates raw citation records.
// It is safe for concurrent use once constructed.
type Normaliser struct {
	queries  map[string]bool
	engines  *domain.EngineRegistry
	interval time.Duration
}

// New creates a normaliser for the tracked query set.
func New(queries []domain.TrackedQuery, engines *domain.EngineRegistry, interval time.Duration) *Normaliser {
	tracked := make(map[string]bool, len(queries))
	for _, q := range queries {
		tracked[q.ID] = true
	}
	if engines == nil {
		engines = domain.NewEngineRegistry()
	}
	return &Normaliser{
		queries:  tracked,
		engines:  engines,
		interval: interval,
	}
}

// Result is the output of one normalisation batch.
type Result struct {
	// Events are the newly accepted events, ordered by observed_at then key.
	Events []domain.CitationEvent

	Report domain.NormalisationReport
}

// Normalise converts a batch into events. Records whose uniqueness key is
// already held by known are discarded, so normalising the same batch twice
// against its own output yields no new events.
func (n *Normaliser) Normalise(records []domain.RawCitation, known []domain.CitationEvent) *Result {
	res := &Result{
		Report: domain.NormalisationReport{
			Received: len(records),
			Rejected: []domain.ValidationError{},
		},
	}

	seen := make(map[domain.EventKey]bool, len(known))
	for _, e := range known {
		seen[e.Key(n.interval)] = true
	}

	best := make(map[domain.EventKey]domain.CitationEvent)

	for i, raw := range records {
		event, verr := n.convert(i, raw)
		if verr != nil {
			res.Report.Rejected = append(res.Report.Rejected, *verr)
			continue
		}

		key := event.Key(n.interval)
		if seen[key] {
			res.Report.Known++
			continue
		}

		cur, ok := best[key]
		if !ok {
			best[key] = event
			continue
		}
		res.Report.Duplicates++
		if preferred(event, cur) {
			best[key] = event
		}
	}

	res.Events = make([]domain.CitationEvent, 0, len(best))
	for _, e := range best {
		res.Events = append(res.Events, e)
	}
	SortEvents(res.Events)
	res.Report.Accepted = len(res.Events)

	return res
}

// preferred reports whether a should replace b among duplicates.
// More complete features win; ties keep the earliest observation, and
// after that the record seen first.
func preferred(a, b domain.CitationEvent) bool {
	ca, cb := a.Features.Completeness(), b.Features.Completeness()
	if ca != cb {
		return ca > cb
	}
	return a.ObservedAt.Before(b.ObservedAt)
}

// SortEvents orders events by observed_at, query, engine and url.
func SortEvents(events []domain.CitationEvent) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		if a.QueryID != b.QueryID {
			return a.QueryID < b.QueryID
		}
		if a.Engine != b.Engine {
			return a.Engine < b.Engine
		}
		return a.URL < b.URL
	})
}

func (n *Normaliser) convert(i int, raw domain.RawCitation) (domain.CitationEvent, *domain.ValidationError) {
	reject := func(field, reason string) *domain.ValidationError {
		return &domain.ValidationError{
			Index:   i,
			Field:   field,
			Reason:  reason,
			QueryID: raw.QueryID,
			URL:     raw.URL,
		}
	}

	queryID := strings.TrimSpace(raw.QueryID)
	if queryID == "" {
		return domain.CitationEvent{}, reject("query_id", "required")
	}

	engine := domain.ParseEngine(raw.Engine)
	if engine == "" {
		return domain.CitationEvent{}, reject("engine", "required")
	}
	if !n.engines.Has(engine) {
		return domain.CitationEvent{}, reject("engine", fmt.Sprintf("unregistered engine %q", raw.Engine))
	}

	if strings.TrimSpace(raw.URL) == "" {
		return domain.CitationEvent{}, reject("url", "required")
	}
	canonical, host, err := CanonicalURL(raw.URL)
	if err != nil {
		return domain.CitationEvent{}, reject("url", err.Error())
	}

	if raw.ObservedAt.IsZero() {
		return domain.CitationEvent{}, reject("observed_at", "required")
	}
	if raw.Position != nil && *raw.Position < 1 {
		return domain.CitationEvent{}, reject("position", "must be 1 or greater")
	}
	if raw.WordCount != nil && *raw.WordCount < 0 {
		return domain.CitationEvent{}, reject("word_count", "must not be negative")
	}
	if raw.FreshnessAgeDays != nil && *raw.FreshnessAgeDays < 0 {
		return domain.CitationEvent{}, reject("freshness_age_days", "must not be negative")
	}

	if !n.queries[queryID] {
		verr := reject("query_id", "query is not tracked")
		verr.Orphaned = true
		return domain.CitationEvent{}, verr
	}

	d := domain.CanonicalDomain(raw.Domain)
	if d == "" {
		d = domain.CanonicalDomain(host)
	}

	features := domain.ContentFeatures{
		WordCount:        copyInt(raw.WordCount),
		HasSchemaMarkup:  copyBool(raw.HasSchemaMarkup),
		FreshnessAgeDays: copyInt(raw.FreshnessAgeDays),
	}
	if ct := strings.TrimSpace(raw.ContentType); ct != "" {
		features.ContentType = domain.NormaliseContentType(ct)
	}

	return domain.CitationEvent{
		QueryID:      queryID,
		Engine:       engine,
		Domain:       d,
		URL:          canonical,
		CitationType: domain.ParseCitationType(raw.CitationType),
		Position:     copyInt(raw.Position),
		ObservedAt:   raw.ObservedAt.UTC(),
		Features:     features,
	}, nil
}

// trackingParams are query parameters stripped from cited URLs.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"ref":    true,
	"source": true,
}

// CanonicalURL lowercases scheme and host, drops the fragment and tracking
// parameters, and sorts the remaining query. It returns the URL and its host.
func CanonicalURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", errors.New("invalid url")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", errors.New("missing host")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if trackingParams[strings.ToLower(k)] || strings.HasPrefix(strings.ToLower(k), "utm_") {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), u.Hostname(), nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
