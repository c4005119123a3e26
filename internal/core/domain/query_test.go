package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDomain(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"https://www.Example.com/path?q=1", "example.com"},
		{"example.com:8080", "example.com"},
		{"example.com.", "example.com"},
		{"  blog.example.com/", "blog.example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalDomain(tt.in))
		})
	}
}

func TestCanonicalDomains(t *testing.T) {
	got := CanonicalDomains([]string{"b.com", "www.A.com", "a.com", ""})

	assert.Equal(t, []string{"a.com", "b.com"}, got)
}

func TestTrackedQuery(t *testing.T) {
	q := TrackedQuery{ID: "q1", OwnerDomains: []string{"www.Mine.com"}}

	assert.Equal(t, DefaultPriorityWeight, q.Priority())
	assert.True(t, q.IsOwner("mine.com"))
	assert.False(t, q.IsOwner("rival.com"))

	q.PriorityWeight = 2.5
	assert.Equal(t, 2.5, q.Priority())
}

func TestCompetitorSet(t *testing.T) {
	c := NewCompetitorSet("Rival.com", "www.rival.com", "other.io")

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("RIVAL.com"))
	assert.False(t, c.Has("mine.com"))
}
