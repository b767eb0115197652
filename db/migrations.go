package db

import "embed"

// Migrations holds the golang-migrate SQL files so binaries can migrate
// without the source tree on disk.
//
//go:embed migrations/*.sql
var Migrations embed.FS
