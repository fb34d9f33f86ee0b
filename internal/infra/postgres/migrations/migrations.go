package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema for the question bank and recorded results.
var Migrations = migrate.NewMigrations()
