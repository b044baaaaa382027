// internal/repositories/postgres/prompt_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type promptRepo struct {
	db *sqlx.DB
}

func NewPromptRepo(db *sqlx.DB) repositories.PromptRepository {
	return &promptRepo{db: db}
}

func (r *promptRepo) ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Prompt, error) {
	var prompts []*models.Prompt
	query := `SELECT prompt_id, project_id, text, intent_type, is_active, created_at, updated_at
		FROM prompts WHERE project_id = $1 AND is_active = TRUE ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &prompts, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list active prompts: %w", err)
	}
	return prompts, nil
}
