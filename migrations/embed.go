// Package migrations embeds the SQL schema of both storage backends.
package migrations

import "embed"

// FS holds postgres/*.sql (remote store) and sqlite/*.sql (on-device store).
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
