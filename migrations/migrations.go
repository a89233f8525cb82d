// Package migrations embeds the Postgres schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration, applied in version order by golang-migrate
//
//go:embed *.sql
var FS embed.FS
