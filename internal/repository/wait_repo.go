package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/adyen/storefront-e2e/internal/models"
)

// WaitRepository handles database operations for wait outcomes
type WaitRepository struct {
	db *sql.DB
}

// NewWaitRepository creates a wait repository on the shared connection
func NewWaitRepository() *WaitRepository {
	return &WaitRepository{
		db: database.DB,
	}
}

// NewWaitRepositoryWithDB creates a wait repository with a specific database connection
func NewWaitRepositoryWithDB(db *sql.DB) *WaitRepository {
	return &WaitRepository{
		db: db,
	}
}

// Create stores one wait outcome
func (r *WaitRepository) Create(ctx context.Context, w *models.WaitOutcome) error {
	query := `
		INSERT INTO wait_outcomes (id, run_id, condition, result, attempts, elapsed_ms, timeout_ms, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	var lastErr sql.NullString
	if w.LastError != "" {
		lastErr = sql.NullString{String: w.LastError, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.RunID,
		w.Condition,
		string(w.Result),
		w.Attempts,
		w.Elapsed.Milliseconds(),
		w.Timeout.Milliseconds(),
		lastErr,
		w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wait outcome: %w", err)
	}
	return nil
}

// ListByRun returns the outcomes of one run in recording order
func (r *WaitRepository) ListByRun(ctx context.Context, runID string) ([]*models.WaitOutcome, error) {
	query := `
		SELECT id, run_id, condition, result, attempts, elapsed_ms, timeout_ms,
		       COALESCE(last_error, ''), created_at
		FROM wait_outcomes
		WHERE run_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, runID)
}

// ListFailures returns the most recent timed out or cancelled waits across runs
func (r *WaitRepository) ListFailures(ctx context.Context, limit int) ([]*models.WaitOutcome, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, run_id, condition, result, attempts, elapsed_ms, timeout_ms,
		       COALESCE(last_error, ''), created_at
		FROM wait_outcomes
		WHERE result <> $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`
	return r.list(ctx, query, string(models.WaitSatisfied), limit)
}

func (r *WaitRepository) list(ctx context.Context, query string, args ...any) ([]*models.WaitOutcome, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wait outcomes: %w", err)
	}
	defer rows.Close()

	var out []*models.WaitOutcome
	for rows.Next() {
		var (
			w                  models.WaitOutcome
			result             string
			elapsedMs, timeout int64
		)
		if err := rows.Scan(&w.ID, &w.RunID, &w.Condition, &result, &w.Attempts,
			&elapsedMs, &timeout, &w.LastError, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wait outcome: %w", err)
		}
		w.Result = models.WaitResult(result)
		w.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		w.Timeout = time.Duration(timeout) * time.Millisecond
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wait outcomes: %w", err)
	}
	return out, nil
}
