package domain

import (
	"net/url"
	"sort"
	"strings"
)

// DefaultPriorityWeight is applied when a tracked query has no explicit weight.
const DefaultPriorityWeight = 1.0

// TrackedQuery is a query the owning entity monitors.
type TrackedQuery struct {
	// ID is the stable query reference used by citation records.
	ID string `json:"query_id" yaml:"id"`

	// Text is the query as typed by users.
	Text string `json:"text" yaml:"text"`

	// PriorityWeight ranks queries against each other; must be > 0.
	PriorityWeight float64 `json:"priority_weight" yaml:"priority_weight"`

	// OwnerDomains are the domains considered "self" for this query.
	OwnerDomains []string `json:"owner_domains" yaml:"owner_domains"`
}

// Priority returns the priority weight, applying the default when unset.
func (q TrackedQuery) Priority() float64 {
	if q.PriorityWeight == 0 {
		return DefaultPriorityWeight
	}
	return q.PriorityWeight
}

// IsOwner returns true if domain is one of the query's owner domains.
func (q TrackedQuery) IsOwner(domain string) bool {
	domain = CanonicalDomain(domain)
	for _, d := range q.OwnerDomains {
		if CanonicalDomain(d) == domain {
			return true
		}
	}
	return false
}

// CompetitorSet is the set of domains considered competitors for scoring.
type CompetitorSet struct {
	Domains []string `json:"domains"`
}

// NewCompetitorSet creates a competitor set with canonical, sorted, unique domains.
func NewCompetitorSet(domains ...string) CompetitorSet {
	return CompetitorSet{Domains: CanonicalDomains(domains)}
}

// Has returns true if domain is a competitor.
func (c CompetitorSet) Has(domain string) bool {
	domain = CanonicalDomain(domain)
	for _, d := range c.Domains {
		if CanonicalDomain(d) == domain {
			return true
		}
	}
	return false
}

// Len returns the number of competitor domains.
func (c CompetitorSet) Len() int {
	return len(c.Domains)
}

// CanonicalDomain lowercases a domain and strips scheme, path, port and a leading "www.".
func CanonicalDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if strings.Contains(d, "://") {
		if u, err := url.Parse(d); err == nil {
			d = u.Host
		}
	}
	if i := strings.IndexAny(d, "/:"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}

// CanonicalDomains canonicalises, de-duplicates and sorts a domain list.
func CanonicalDomains(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = CanonicalDomain(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
