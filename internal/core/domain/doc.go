// Package domain defines the core business entities for Citescope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CitationEvent: One observed citation of a domain inside an AI answer
//   - TrackedQuery: A query the owning entity monitors
//   - AggregateWindow: Windowed statistics per (query, engine, domain)
//   - Pattern: A feature-signature cluster whose citation rate deviates from baseline
//   - ContentGap: A scored opportunity for a tracked query
//   - Recommendation: A prioritised action item
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
