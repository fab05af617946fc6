package database

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for MySQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) SchemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS warmup_entries (
			student_id VARCHAR(64) PRIMARY KEY,
			entries TEXT NOT NULL,
			updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_results (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			task_id BIGINT NOT NULL,
			student_id VARCHAR(64) NOT NULL,
			accuracy INT NOT NULL,
			time_spent_ms BIGINT NOT NULL,
			within_time_limit BOOLEAN NOT NULL,
			stars_awarded INT NOT NULL,
			completed_date VARCHAR(10) NOT NULL,
			completed_at DATETIME(6) NOT NULL,
			INDEX idx_challenge_results_daily (student_id, task_id, completed_date)
		);`,
	}
}

func (d *MySQLDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
