package gaps

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

const (
	// minSharedTerms is the number of terms two queries must share to be related.
	minSharedTerms = 2

	// maxRelatedQueries caps the related queries listed per gap.
	maxRelatedQueries = 5
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true,
	"for": true, "from": true, "how": true, "i": true, "in": true, "is": true,
	"it": true, "my": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "vs": true, "what": true, "when": true, "which": true, "who": true,
	"why": true, "with": true, "you": true, "your": true,
}

// terms returns the distinct lowercase words of a query, without stop words.
func terms(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

// RelatedQueries maps each query ID to the other query IDs whose text shares
// at least two terms with it, most shared terms first, then by ID.
func RelatedQueries(queries []domain.TrackedQuery) map[string][]string {
	words := make([]map[string]bool, len(queries))
	for i, q := range queries {
		words[i] = terms(q.Text)
	}

	type match struct {
		id     string
		shared int
	}
	related := make(map[string][]string, len(queries))
	for i, q := range queries {
		var matches []match
		for j, o := range queries {
			if i == j || o.ID == q.ID {
				continue
			}
			shared := 0
			for w := range words[i] {
				if words[j][w] {
					shared++
				}
			}
			if shared >= minSharedTerms {
				matches = append(matches, match{id: o.ID, shared: shared})
			}
		}
		sort.Slice(matches, func(a, b int) bool {
			if matches[a].shared != matches[b].shared {
				return matches[a].shared > matches[b].shared
			}
			return matches[a].id < matches[b].id
		})
		ids := make([]string, 0, min(len(matches), maxRelatedQueries))
		for _, m := range matches {
			if len(ids) == maxRelatedQueries {
				break
			}
			ids = append(ids, m.id)
		}
		related[q.ID] = ids
	}
	return related
}
