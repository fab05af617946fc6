package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("BoolValue", func(t *testing.T) {
		if dialect.BoolValue(true) != "1" || dialect.BoolValue(false) != "0" {
			t.Error("BoolValue() should use integer literals for SQLite")
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("BoolValue", func(t *testing.T) {
		if dialect.BoolValue(true) != "TRUE" || dialect.BoolValue(false) != "FALSE" {
			t.Error("BoolValue() should use keyword literals for PostgreSQL")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})
}

func TestSchemaQueriesCoverBothTables(t *testing.T) {
	dialects := []struct {
		name    string
		dialect Dialect
	}{
		{name: "sqlite", dialect: NewSQLiteDialect()},
		{name: "postgres", dialect: NewPostgresDialect()},
		{name: "mysql", dialect: NewMySQLDialect()},
	}

	for _, tt := range dialects {
		t.Run(tt.name, func(t *testing.T) {
			joined := strings.Join(tt.dialect.SchemaQueries(), "\n")
			for _, table := range []string{"warmup_entries", "challenge_results"} {
				if !strings.Contains(joined, table) {
					t.Errorf("schema for %s does not create %s", tt.name, table)
				}
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT entries FROM warmup_entries WHERE student_id = ?",
			expected: "SELECT entries FROM warmup_entries WHERE student_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT entries FROM warmup_entries WHERE student_id = ?",
			expected: "SELECT entries FROM warmup_entries WHERE student_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO warmup_entries (student_id, entries) VALUES (?, ?)",
			expected: "INSERT INTO warmup_entries (student_id, entries) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE warmup_entries SET entries = ? WHERE student_id = ?",
			expected: "UPDATE warmup_entries SET entries = ? WHERE student_id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}
