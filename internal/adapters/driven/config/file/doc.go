// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("weights.self_absence") and written
// back as nested TOML tables, so a hand-edited config.toml such as
//
//	[analysis]
//	window = "168h"
//
//	[weights]
//	competitor_strength = 0.35
//
// round-trips unchanged in meaning.
package file
