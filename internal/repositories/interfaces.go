// internal/repositories/interfaces.go
package repositories

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/google/uuid"
)

// RunInProgressError is returned by AnalysisRunRepository.CreateClaim when
// the project already has an unfinished run. Carries the existing run's id
// so callers can surface it.
type RunInProgressError struct {
	RunID uuid.UUID
}

func (e *RunInProgressError) Error() string {
	return fmt.Sprintf("analysis run %s is already in progress", e.RunID)
}

type ProjectRepository interface {
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListWebsites(ctx context.Context, projectID uuid.UUID) ([]string, error)
	ListScheduledForWeekday(ctx context.Context, weekday int) ([]*models.ProjectSummary, error)
}

type BrandRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Brand, error)
}

type PromptRepository interface {
	ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Prompt, error)
}

type AnalysisRunRepository interface {
	// CreateClaim inserts a pending run only if the project has no run in
	// pending or processing state; otherwise it returns *RunInProgressError
	// referencing the existing run. The check and the insert are one
	// transaction so simultaneous start requests cannot both win.
	CreateClaim(ctx context.Context, run *models.AnalysisRun) error
	GetByID(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error)
	Start(ctx context.Context, runID uuid.UUID, totalPrompts int) error
	IncrementProcessed(ctx context.Context, runID uuid.UUID) error
	AddCost(ctx context.Context, runID uuid.UUID, cost float64) error
	Complete(ctx context.Context, runID uuid.UUID) error
	Fail(ctx context.Context, runID uuid.UUID) error
}

type PromptResultRepository interface {
	Create(ctx context.Context, result *models.PromptResult) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptResult, error)
}

type BrandMentionRepository interface {
	BulkCreate(ctx context.Context, mentions []*models.BrandMention) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.BrandMention, error)
}

type CitationRepository interface {
	BulkCreate(ctx context.Context, citations []*models.Citation) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.Citation, error)
}

type MetricsSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *models.MetricsSnapshot) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.MetricsSnapshot, error)
}

type DiscoveredCompetitorRepository interface {
	BulkCreate(ctx context.Context, competitors []*models.DiscoveredCompetitor) error
}
