package migrations

import "embed"

// FS contains embedded SQLite migrations for character document storage.
//
//go:embed *.sql
var FS embed.FS
