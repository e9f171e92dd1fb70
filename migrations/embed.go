// Package migrations holds the versioned PostgreSQL schema, embedded into the binaries.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
