package database

import (
	"database/sql"
	"fmt"
)

// Schema creates the wait_outcomes table and its lookup indexes
const Schema = `
	CREATE TABLE IF NOT EXISTS wait_outcomes (
		id UUID PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		condition TEXT NOT NULL,
		result VARCHAR(20) NOT NULL,
		attempts INTEGER NOT NULL,
		elapsed_ms BIGINT NOT NULL,
		timeout_ms BIGINT NOT NULL,
		last_error TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_wait_outcomes_run_id ON wait_outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_wait_outcomes_result ON wait_outcomes(result);
	`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	return Migrate(DB)
}

// Migrate applies Schema to db
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create wait_outcomes table: %w", err)
	}
	return nil
}
