// Package migrations embeds the server database migrations applied by goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
