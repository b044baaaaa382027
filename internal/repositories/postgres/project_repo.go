// internal/repositories/postgres/project_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type projectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) repositories.ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT project_id, name, schedule_weekday, created_at, updated_at
		FROM projects WHERE project_id = $1`
	if err := r.db.GetContext(ctx, &project, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	websites, err := r.ListWebsites(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Websites = websites

	return &project, nil
}

func (r *projectRepo) ListWebsites(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	var websites []string
	query := `SELECT url FROM project_websites WHERE project_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &websites, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list project websites: %w", err)
	}
	return websites, nil
}

func (r *projectRepo) ListScheduledForWeekday(ctx context.Context, weekday int) ([]*models.ProjectSummary, error) {
	var summaries []*models.ProjectSummary
	query := `SELECT p.project_id AS id, p.name, p.created_at,
			(SELECT MAX(ar.completed_at) FROM analysis_runs ar WHERE ar.project_id = p.project_id) AS last_run_date
		FROM projects p
		WHERE p.schedule_weekday = $1
		ORDER BY p.created_at`
	if err := r.db.SelectContext(ctx, &summaries, query, weekday); err != nil {
		return nil, fmt.Errorf("failed to list scheduled projects: %w", err)
	}
	return summaries, nil
}
