package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"goexpect/domain/core"
	"goexpect/domain/validation"
	"goexpect/ports"
)

// runRepository implements the RunRecorder interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new validation run repository
func NewRunRepository(db *sqlx.DB) ports.RunRecorder {
	return &runRepository{db: db}
}

// EnsureSchema creates the validation_runs table if it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS validation_runs (
		id TEXT PRIMARY KEY,
		suite_id TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		result JSONB NOT NULL,
		run_time TIMESTAMPTZ NOT NULL
	)`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure validation_runs schema: %w", err)
	}
	return nil
}

// Record inserts a completed run into the database
func (r *runRepository) Record(ctx context.Context, run *validation.Run) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	query := `INSERT INTO validation_runs (
		id, suite_id, success, score, result, run_time
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.SuiteID, run.Success, run.Score, resultJSON, run.RunTime,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its ID
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*validation.Run, error) {
	query := `SELECT id, suite_id, success, score, result, run_time
	FROM validation_runs WHERE id = $1`

	var run validation.Run
	var resultJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.SuiteID, &run.Success, &run.Score, &resultJSON, &run.RunTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]*validation.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, suite_id, success, score, result, run_time
	FROM validation_runs ORDER BY run_time DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*validation.Run
	for rows.Next() {
		var run validation.Run
		var resultJSON []byte

		if err := rows.Scan(&run.ID, &run.SuiteID, &run.Success, &run.Score, &resultJSON, &run.RunTime); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
		}

		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
