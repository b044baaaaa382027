// internal/repositories/postgres/brand_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type brandRepo struct {
	db *sqlx.DB
}

func NewBrandRepo(db *sqlx.DB) repositories.BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Brand, error) {
	var brands []*models.Brand
	query := `SELECT brand_id, project_id, name, is_user_brand, created_at, updated_at
		FROM brands WHERE project_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &brands, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}
