package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	_ "github.com/lib/pq"
)

var DB *sql.DB

// Connect opens the wait-outcome database described by cfg
func Connect(cfg *config.PostgresConfig) error {
	db, err := Open(cfg.ConnectionString())
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open opens and pings a PostgreSQL connection pool
func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A test run writes a few rows per wait; keep the pool small
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
