// internal/repositories/postgres/analysis_run_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type analysisRunRepo struct {
	db *sqlx.DB
}

func NewAnalysisRunRepo(db *sqlx.DB) repositories.AnalysisRunRepository {
	return &analysisRunRepo{db: db}
}

func (r *analysisRunRepo) CreateClaim(ctx context.Context, run *models.AnalysisRun) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Advisory lock on the project serializes simultaneous claims even when
	// no unfinished run row exists yet to lock.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, run.ProjectID); err != nil {
		return fmt.Errorf("failed to lock project for claim: %w", err)
	}

	var existingID uuid.UUID
	checkQuery := `SELECT analysis_run_id FROM analysis_runs
		WHERE project_id = $1 AND status IN ('pending', 'processing')`
	err = tx.GetContext(ctx, &existingID, checkQuery, run.ProjectID)
	if err == nil {
		return &repositories.RunInProgressError{RunID: existingID}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for in-progress run: %w", err)
	}

	insertQuery := `INSERT INTO analysis_runs
		(analysis_run_id, project_id, status, total_prompts, processed_prompts, total_cost, created_at, updated_at)
		VALUES (:analysis_run_id, :project_id, :status, :total_prompts, :processed_prompts, :total_cost, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, run); err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run claim: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	query := `SELECT analysis_run_id, project_id, status, total_prompts, processed_prompts, total_cost,
			started_at, completed_at, created_at, updated_at
		FROM analysis_runs WHERE analysis_run_id = $1`
	if err := r.db.GetContext(ctx, &run, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return &run, nil
}

func (r *analysisRunRepo) Start(ctx context.Context, runID uuid.UUID, totalPrompts int) error {
	query := `UPDATE analysis_runs
		SET status = 'processing', total_prompts = $2, started_at = NOW(), updated_at = NOW()
		WHERE analysis_run_id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, runID, totalPrompts)
	if err != nil {
		return fmt.Errorf("failed to start analysis run: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("analysis run %s is not in pending state", runID)
	}
	return nil
}

func (r *analysisRunRepo) IncrementProcessed(ctx context.Context, runID uuid.UUID) error {
	query := `UPDATE analysis_runs
		SET processed_prompts = processed_prompts + 1, updated_at = NOW()
		WHERE analysis_run_id = $1`
	if _, err := r.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to increment processed prompts: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) AddCost(ctx context.Context, runID uuid.UUID, cost float64) error {
	query := `UPDATE analysis_runs
		SET total_cost = total_cost + $2, updated_at = NOW()
		WHERE analysis_run_id = $1`
	if _, err := r.db.ExecContext(ctx, query, runID, cost); err != nil {
		return fmt.Errorf("failed to add run cost: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) Complete(ctx context.Context, runID uuid.UUID) error {
	query := `UPDATE analysis_runs
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE analysis_run_id = $1`
	if _, err := r.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to complete analysis run: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) Fail(ctx context.Context, runID uuid.UUID) error {
	query := `UPDATE analysis_runs
		SET status = 'failed', completed_at = NOW(), updated_at = NOW()
		WHERE analysis_run_id = $1`
	if _, err := r.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to fail analysis run: %w", err)
	}
	return nil
}
