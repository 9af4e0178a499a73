package database

import (
	"database/sql"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the schema for the given driver. Every statement is
// idempotent so it runs on each start.
func Migrate(db *sql.DB, driver string) error {
	name := "schema/sqlite.sql"
	if driver == DriverPostgres {
		name = "schema/postgres.sql"
	}

	b, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
