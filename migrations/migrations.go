// Package migrations embeds the SQL schema scripts
package migrations

import "embed"

// FS holds every NNN_description.sql script
//
//go:embed *.sql
var FS embed.FS
