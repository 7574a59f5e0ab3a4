// Package migrations embeds the PostgreSQL schema of the token service.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
