// Package migrations embeds the SQL migrations for the SQLite store.
package migrations

import "embed"

// FS contains the numbered *.up.sql migrations.
//
//go:embed *.sql
var FS embed.FS
