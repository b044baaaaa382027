// internal/repositories/postgres/prompt_result_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type promptResultRepo struct {
	db *sqlx.DB
}

func NewPromptResultRepo(db *sqlx.DB) repositories.PromptResultRepository {
	return &promptResultRepo{db: db}
}

func (r *promptResultRepo) Create(ctx context.Context, result *models.PromptResult) error {
	query := `INSERT INTO prompt_results
		(prompt_result_id, analysis_run_id, prompt_id, response_text, response_length, latency_ms,
		 input_tokens, output_tokens, total_cost, error, created_at, updated_at)
		VALUES (:prompt_result_id, :analysis_run_id, :prompt_id, :response_text, :response_length, :latency_ms,
		 :input_tokens, :output_tokens, :total_cost, :error, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("failed to create prompt result: %w", err)
	}
	return nil
}

func (r *promptResultRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptResult, error) {
	var results []*models.PromptResult
	query := `SELECT prompt_result_id, analysis_run_id, prompt_id, response_text, response_length, latency_ms,
			input_tokens, output_tokens, total_cost, error, created_at, updated_at
		FROM prompt_results WHERE analysis_run_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &results, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list prompt results: %w", err)
	}
	return results, nil
}
