// internal/repositories/postgres/brand_mention_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type brandMentionRepo struct {
	db *sqlx.DB
}

func NewBrandMentionRepo(db *sqlx.DB) repositories.BrandMentionRepository {
	return &brandMentionRepo{db: db}
}

func (r *brandMentionRepo) BulkCreate(ctx context.Context, mentions []*models.BrandMention) error {
	if len(mentions) == 0 {
		return nil
	}
	query := `INSERT INTO brand_mentions
		(brand_mention_id, prompt_result_id, brand_id, mentioned, "position", mention_count,
		 sentiment, sentiment_score, context, is_recommended, created_at, updated_at)
		VALUES (:brand_mention_id, :prompt_result_id, :brand_id, :mentioned, :position, :mention_count,
		 :sentiment, :sentiment_score, :context, :is_recommended, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentions); err != nil {
		return fmt.Errorf("failed to bulk create brand mentions: %w", err)
	}
	return nil
}

func (r *brandMentionRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.BrandMention, error) {
	var mentions []*models.BrandMention
	query := `SELECT bm.brand_mention_id, bm.prompt_result_id, bm.brand_id, bm.mentioned, bm."position",
			bm.mention_count, bm.sentiment, bm.sentiment_score, bm.context, bm.is_recommended,
			bm.created_at, bm.updated_at
		FROM brand_mentions bm
		JOIN prompt_results pr ON pr.prompt_result_id = bm.prompt_result_id
		WHERE pr.analysis_run_id = $1
		ORDER BY pr.created_at, bm.created_at`
	if err := r.db.SelectContext(ctx, &mentions, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list brand mentions: %w", err)
	}
	return mentions, nil
}
