// Package testutil gives integration tests a private Postgres schema.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/google/uuid"
)

var postgresDefaults = map[string]string{
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "postgres",
	"POSTGRES_HOSTNAME": "localhost",
	"POSTGRES_PORT":     "5432",
}

// TestDatabase is a migrated schema that lives for one test
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	admin      *sql.DB
	closed     bool
}

// SetupTestDatabase creates a fresh wait log schema. It is dropped when the
// test ends, even if Teardown is never called.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	cfg, err := config.LoadPostgresConfig(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return postgresDefaults[key]
	})
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	admin, err := database.Open(cfg.ConnectionString())
	if err != nil {
		t.Skipf("Postgres not reachable: %v", err)
	}

	td := &TestDatabase{
		SchemaName: "waits_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		admin:      admin,
	}
	t.Cleanup(func() { td.Teardown(t) })

	if _, err := admin.Exec("CREATE SCHEMA " + td.SchemaName); err != nil {
		t.Fatalf("Failed to create schema %s: %v", td.SchemaName, err)
	}

	td.DB, err = database.Open(fmt.Sprintf("%s search_path=%s", cfg.ConnectionString(), td.SchemaName))
	if err != nil {
		t.Fatalf("Failed to open schema %s: %v", td.SchemaName, err)
	}
	if err := database.Migrate(td.DB); err != nil {
		t.Fatalf("Failed to migrate schema %s: %v", td.SchemaName, err)
	}
	return td
}

// Truncate empties the wait log between subtests
func (td *TestDatabase) Truncate(t *testing.T) {
	t.Helper()
	if _, err := td.DB.Exec("TRUNCATE wait_outcomes"); err != nil {
		t.Fatalf("Failed to truncate wait_outcomes: %v", err)
	}
}

// Teardown drops the schema and closes both pools. Safe to call twice.
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()
	if td.closed {
		return
	}
	td.closed = true

	if td.DB != nil {
		td.DB.Close()
	}
	if _, err := td.admin.Exec("DROP SCHEMA IF EXISTS " + td.SchemaName + " CASCADE"); err != nil {
		t.Logf("Warning: failed to drop schema %s: %v", td.SchemaName, err)
	}
	td.admin.Close()
}
