package database

import "fmt"

// EnsureSchema creates the warmup and challenge tables if they do not
// exist. Safe to call on every startup.
func (db *DB) EnsureSchema() error {
	for _, query := range db.Dialect.SchemaQueries() {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
