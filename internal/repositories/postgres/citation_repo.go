// internal/repositories/postgres/citation_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type citationRepo struct {
	db *sqlx.DB
}

func NewCitationRepo(db *sqlx.DB) repositories.CitationRepository {
	return &citationRepo{db: db}
}

func (r *citationRepo) BulkCreate(ctx context.Context, citations []*models.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	query := `INSERT INTO citations
		(citation_id, prompt_result_id, url, domain, title, type, created_at, updated_at)
		VALUES (:citation_id, :prompt_result_id, :url, :domain, :title, :type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, citations); err != nil {
		return fmt.Errorf("failed to bulk create citations: %w", err)
	}
	return nil
}

func (r *citationRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.Citation, error) {
	var citations []*models.Citation
	query := `SELECT c.citation_id, c.prompt_result_id, c.url, c.domain, c.title, c.type,
			c.created_at, c.updated_at
		FROM citations c
		JOIN prompt_results pr ON pr.prompt_result_id = c.prompt_result_id
		WHERE pr.analysis_run_id = $1
		ORDER BY pr.created_at, c.created_at`
	if err := r.db.SelectContext(ctx, &citations, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}
	return citations, nil
}
