// Package migrations embeds the goose SQL migrations so the binary can
// bring any database up to the current schema without external files.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
