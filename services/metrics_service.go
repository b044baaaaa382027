// services/metrics_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type metricsService struct {
	repos *RepositoryManager
}

func NewMetricsService(repos *RepositoryManager) MetricsService {
	return &metricsService{repos: repos}
}

// AggregateRun computes one snapshot per tracked brand from the run's
// persisted results. Failed prompt results are excluded from every
// denominator. Snapshots upsert on (run, brand), so re-running aggregation
// overwrites rather than duplicates.
func (s *metricsService) AggregateRun(ctx context.Context, runID uuid.UUID) ([]*models.MetricsSnapshot, error) {
	fmt.Printf("[AggregateRun] 📊 Aggregating metrics for run %s\n", runID)

	run, err := s.repos.AnalysisRunRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	brands, err := s.repos.BrandRepo.ListByProject(ctx, run.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	results, err := s.repos.PromptResultRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt results: %w", err)
	}

	mentions, err := s.repos.BrandMentionRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentions: %w", err)
	}

	citations, err := s.repos.CitationRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}

	// Only successful results count toward any denominator.
	validResults := make(map[uuid.UUID]bool)
	for _, result := range results {
		if result.Error == nil {
			validResults[result.PromptResultID] = true
		}
	}
	totalValid := len(validResults)

	mentionsByBrand := make(map[uuid.UUID][]*models.BrandMention)
	for _, mention := range mentions {
		if !validResults[mention.PromptResultID] {
			continue
		}
		mentionsByBrand[mention.BrandID] = append(mentionsByBrand[mention.BrandID], mention)
	}

	citationsByResult := make(map[uuid.UUID]int)
	for _, citation := range citations {
		citationsByResult[citation.PromptResultID]++
	}

	now := time.Now()
	snapshots := make([]*models.MetricsSnapshot, 0, len(brands))
	totalMentions := 0

	for _, brand := range brands {
		snapshot := &models.MetricsSnapshot{
			MetricsSnapshotID: uuid.New(),
			AnalysisRunID:     runID,
			BrandID:           brand.BrandID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		mentionedResults := 0
		positionSum := 0
		positionCount := 0
		sentimentSum := 0.0
		sentimentCount := 0

		for _, mention := range mentionsByBrand[brand.BrandID] {
			if !mention.Mentioned {
				continue
			}
			mentionedResults++
			// Citations are attributed per result: a brand mentioned in a
			// result inherits that result's citation count.
			snapshot.CitationCount += citationsByResult[mention.PromptResultID]

			if mention.Position != nil {
				positionSum += *mention.Position
				positionCount++
				if *mention.Position == 1 {
					snapshot.FirstPositionCount++
				}
			}
			if mention.Sentiment != nil {
				switch *mention.Sentiment {
				case models.SentimentPositive:
					snapshot.PositiveCount++
				case models.SentimentNegative:
					snapshot.NegativeCount++
				default:
					snapshot.NeutralCount++
				}
			}
			if mention.SentimentScore != nil {
				sentimentSum += *mention.SentimentScore
				sentimentCount++
			}
			if mention.IsRecommended {
				snapshot.RecommendationCount++
			}
		}

		// One mention per result: repeat occurrences inside a single
		// response do not inflate the count or share of voice.
		snapshot.MentionCount = mentionedResults
		if totalValid > 0 {
			snapshot.VisibilityScore = float64(mentionedResults) / float64(totalValid) * 100.0
		}
		if positionCount > 0 {
			avgPosition := float64(positionSum) / float64(positionCount)
			snapshot.AveragePosition = &avgPosition
		}
		if sentimentCount > 0 {
			avgSentiment := sentimentSum / float64(sentimentCount)
			snapshot.AverageSentiment = &avgSentiment
		}

		totalMentions += snapshot.MentionCount
		snapshots = append(snapshots, snapshot)
	}

	// Second pass: share of voice needs the cross-brand mention total.
	// When nobody is mentioned at all, every brand stays at zero.
	if totalMentions > 0 {
		for _, snapshot := range snapshots {
			snapshot.ShareOfVoice = float64(snapshot.MentionCount) / float64(totalMentions) * 100.0
		}
	}

	for _, snapshot := range snapshots {
		if err := s.repos.MetricsSnapshotRepo.Upsert(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to upsert snapshot for brand %s: %w", snapshot.BrandID, err)
		}
	}

	fmt.Printf("[AggregateRun] ✅ Wrote %d snapshots (%d mentions across brands, %d valid results)\n",
		len(snapshots), totalMentions, totalValid)
	return snapshots, nil
}
