// internal/repositories/postgres/metrics_snapshot_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type metricsSnapshotRepo struct {
	db *sqlx.DB
}

func NewMetricsSnapshotRepo(db *sqlx.DB) repositories.MetricsSnapshotRepository {
	return &metricsSnapshotRepo{db: db}
}

// Upsert keys on (analysis_run_id, brand_id) so re-aggregating a run
// rewrites the existing snapshot instead of duplicating it.
func (r *metricsSnapshotRepo) Upsert(ctx context.Context, snapshot *models.MetricsSnapshot) error {
	query := `INSERT INTO metrics_snapshots
		(metrics_snapshot_id, analysis_run_id, brand_id, visibility_score, mention_count, citation_count,
		 share_of_voice, average_position, positive_count, neutral_count, negative_count,
		 average_sentiment, recommendation_count, first_position_count, created_at, updated_at)
		VALUES (:metrics_snapshot_id, :analysis_run_id, :brand_id, :visibility_score, :mention_count, :citation_count,
		 :share_of_voice, :average_position, :positive_count, :neutral_count, :negative_count,
		 :average_sentiment, :recommendation_count, :first_position_count, :created_at, :updated_at)
		ON CONFLICT (analysis_run_id, brand_id) DO UPDATE SET
		 visibility_score = EXCLUDED.visibility_score,
		 mention_count = EXCLUDED.mention_count,
		 citation_count = EXCLUDED.citation_count,
		 share_of_voice = EXCLUDED.share_of_voice,
		 average_position = EXCLUDED.average_position,
		 positive_count = EXCLUDED.positive_count,
		 neutral_count = EXCLUDED.neutral_count,
		 negative_count = EXCLUDED.negative_count,
		 average_sentiment = EXCLUDED.average_sentiment,
		 recommendation_count = EXCLUDED.recommendation_count,
		 first_position_count = EXCLUDED.first_position_count,
		 updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("failed to upsert metrics snapshot: %w", err)
	}
	return nil
}

func (r *metricsSnapshotRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.MetricsSnapshot, error) {
	var snapshots []*models.MetricsSnapshot
	query := `SELECT metrics_snapshot_id, analysis_run_id, brand_id, visibility_score, mention_count,
			citation_count, share_of_voice, average_position, positive_count, neutral_count,
			negative_count, average_sentiment, recommendation_count, first_position_count,
			created_at, updated_at
		FROM metrics_snapshots WHERE analysis_run_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &snapshots, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list metrics snapshots: %w", err)
	}
	return snapshots, nil
}
