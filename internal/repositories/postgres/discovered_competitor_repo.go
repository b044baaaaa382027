// internal/repositories/postgres/discovered_competitor_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/jmoiron/sqlx"
)

type discoveredCompetitorRepo struct {
	db *sqlx.DB
}

func NewDiscoveredCompetitorRepo(db *sqlx.DB) repositories.DiscoveredCompetitorRepository {
	return &discoveredCompetitorRepo{db: db}
}

func (r *discoveredCompetitorRepo) BulkCreate(ctx context.Context, competitors []*models.DiscoveredCompetitor) error {
	if len(competitors) == 0 {
		return nil
	}
	query := `INSERT INTO discovered_competitors
		(discovered_competitor_id, prompt_result_id, project_id, name, created_at, updated_at)
		VALUES (:discovered_competitor_id, :prompt_result_id, :project_id, :name, :created_at, :updated_at)
		ON CONFLICT (project_id, prompt_result_id, name) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, competitors); err != nil {
		return fmt.Errorf("failed to bulk create discovered competitors: %w", err)
	}
	return nil
}
