// services/analysis_run_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

type analysisRunService struct {
	cfg       *config.Config
	repos     *RepositoryManager
	analyzer  PromptAnalysisService
	citations CitationService
	metrics   MetricsService
	discovery CompetitorDiscoveryService
	hub       *ProgressHub
}

// NewAnalysisRunService wires the run orchestrator. discovery may be nil
// to skip competitor extraction entirely.
func NewAnalysisRunService(
	cfg *config.Config,
	repos *RepositoryManager,
	analyzer PromptAnalysisService,
	citations CitationService,
	metrics MetricsService,
	discovery CompetitorDiscoveryService,
	hub *ProgressHub,
) AnalysisRunService {
	return &analysisRunService{
		cfg:       cfg,
		repos:     repos,
		analyzer:  analyzer,
		citations: citations,
		metrics:   metrics,
		discovery: discovery,
		hub:       hub,
	}
}

// StartRun validates preconditions and claims a run slot for the project.
// The claim is atomic at the database, so two simultaneous triggers cannot
// both create a run; the loser gets *repositories.RunInProgressError. The
// run itself is executed separately via ExecuteRun.
func (s *analysisRunService) StartRun(ctx context.Context, projectID uuid.UUID) (*RunAck, error) {
	fmt.Printf("[StartRun] 🚀 Run requested for project %s\n", projectID)

	if s.cfg.OpenAIAPIKey == "" && s.cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("no AI provider credentials configured")
	}

	if _, err := s.repos.ProjectRepo.GetByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	prompts, err := s.repos.PromptRepo.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("project %s has no active prompts", projectID)
	}

	run := &models.AnalysisRun{
		AnalysisRunID: uuid.New(),
		ProjectID:     projectID,
		Status:        models.RunStatusPending,
		TotalPrompts:  len(prompts),
	}
	if err := s.repos.AnalysisRunRepo.CreateClaim(ctx, run); err != nil {
		return nil, err
	}

	fmt.Printf("[StartRun] ✅ Claimed run %s (%d prompts)\n", run.AnalysisRunID, len(prompts))
	return &RunAck{RunID: run.AnalysisRunID, TotalPrompts: len(prompts)}, nil
}

// ExecuteRun works through every active prompt sequentially, persists each
// outcome, then aggregates metrics and marks the run completed. A provider
// failure on one prompt is recorded and the run moves on; a persistence
// failure (or a panic) fails the whole run. The progress stream always ends
// with a terminal event before closing.
func (s *analysisRunService) ExecuteRun(ctx context.Context, runID uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[ExecuteRun] 💥 Panic while executing run %s: %v\n", runID, r)
			err = fmt.Errorf("run execution panicked: %v", r)
			s.failRun(runID)
		}
	}()

	run, err := s.repos.AnalysisRunRepo.GetByID(ctx, runID)
	if err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to get analysis run: %w", err)
	}

	project, err := s.repos.ProjectRepo.GetByID(ctx, run.ProjectID)
	if err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to get project: %w", err)
	}

	websites, err := s.repos.ProjectRepo.ListWebsites(ctx, run.ProjectID)
	if err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to list project websites: %w", err)
	}

	brands, err := s.repos.BrandRepo.ListByProject(ctx, run.ProjectID)
	if err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to list brands: %w", err)
	}

	prompts, err := s.repos.PromptRepo.ListActiveByProject(ctx, run.ProjectID)
	if err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	if err := s.repos.AnalysisRunRepo.Start(ctx, runID, len(prompts)); err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to start run: %w", err)
	}

	brandNames := make([]string, len(brands))
	brandIDByName := make(map[string]uuid.UUID, len(brands))
	for i, brand := range brands {
		brandNames[i] = brand.Name
		brandIDByName[brand.Name] = brand.BrandID
	}

	fmt.Printf("[ExecuteRun] 🔄 Run %s (%s): %d prompts, %d brands\n",
		runID, project.Name, len(prompts), len(brands))

	for i, prompt := range prompts {
		if i > 0 && s.cfg.PacingDelay > 0 {
			// Pacing between provider calls to stay under rate limits
			select {
			case <-time.After(s.cfg.PacingDelay):
			case <-ctx.Done():
				s.failRun(runID)
				return fmt.Errorf("run cancelled: %w", ctx.Err())
			}
		}

		result := s.analyzer.AnalyzePrompt(ctx, prompt.Text, brandNames)

		if err := s.persistPromptOutcome(ctx, runID, run.ProjectID, prompt, result, websites, brandIDByName, brandNames); err != nil {
			s.failRun(runID)
			return err
		}

		if err := s.repos.AnalysisRunRepo.IncrementProcessed(ctx, runID); err != nil {
			s.failRun(runID)
			return fmt.Errorf("failed to record progress: %w", err)
		}

		s.hub.Publish(runID, ProgressEvent{
			Type:          "progress",
			RunID:         runID.String(),
			Processed:     i + 1,
			Total:         len(prompts),
			CurrentPrompt: prompt.Text,
		})
	}

	if _, err := s.metrics.AggregateRun(ctx, runID); err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to aggregate metrics: %w", err)
	}

	if err := s.repos.AnalysisRunRepo.Complete(ctx, runID); err != nil {
		s.failRun(runID)
		return fmt.Errorf("failed to complete run: %w", err)
	}

	s.hub.Publish(runID, ProgressEvent{
		Type:   "complete",
		RunID:  runID.String(),
		Status: models.RunStatusCompleted,
	})
	s.hub.Close(runID)

	fmt.Printf("[ExecuteRun] ✅ Run %s completed\n", runID)
	return nil
}

// persistPromptOutcome writes the prompt result row plus, for successful
// results, its mention and citation rows and any discovered competitors.
// Exactly one prompt result row lands per prompt, failed or not.
func (s *analysisRunService) persistPromptOutcome(
	ctx context.Context,
	runID, projectID uuid.UUID,
	prompt *models.Prompt,
	result *PromptAnalysisResult,
	websites []string,
	brandIDByName map[string]uuid.UUID,
	brandNames []string,
) error {
	now := time.Now()
	promptResult := &models.PromptResult{
		PromptResultID: uuid.New(),
		AnalysisRunID:  runID,
		PromptID:       prompt.PromptID,
		ResponseLength: result.ResponseLength,
		LatencyMS:      result.LatencyMS,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if result.Success {
		responseText := result.ResponseText
		inputTokens := result.InputTokens
		outputTokens := result.OutputTokens
		totalCost := result.TotalCost
		promptResult.ResponseText = &responseText
		promptResult.InputTokens = &inputTokens
		promptResult.OutputTokens = &outputTokens
		promptResult.TotalCost = &totalCost
		promptResult.SearchQueries = result.SearchQueries
	} else {
		errText := result.Error
		promptResult.Error = &errText
	}

	if err := s.repos.PromptResultRepo.Create(ctx, promptResult); err != nil {
		return fmt.Errorf("failed to store prompt result: %w", err)
	}

	if !result.Success {
		fmt.Printf("[ExecuteRun] ⚠️ Prompt %s failed, continuing: %s\n", prompt.PromptID, result.Error)
		return nil
	}

	mentions := make([]*models.BrandMention, 0, len(result.Mentions))
	for _, record := range result.Mentions {
		brandID, ok := brandIDByName[record.BrandName]
		if !ok {
			continue
		}
		mentions = append(mentions, &models.BrandMention{
			BrandMentionID: uuid.New(),
			PromptResultID: promptResult.PromptResultID,
			BrandID:        brandID,
			Mentioned:      record.Mentioned,
			Position:       record.Position,
			MentionCount:   record.MentionCount,
			Sentiment:      record.Sentiment,
			SentimentScore: record.SentimentScore,
			Context:        record.Context,
			IsRecommended:  record.IsRecommended,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := s.repos.BrandMentionRepo.BulkCreate(ctx, mentions); err != nil {
		return fmt.Errorf("failed to store brand mentions: %w", err)
	}

	s.citations.ClassifyCitations(result.Citations, websites)
	citations := make([]*models.Citation, 0, len(result.Citations))
	for _, record := range result.Citations {
		citations = append(citations, &models.Citation{
			CitationID:     uuid.New(),
			PromptResultID: promptResult.PromptResultID,
			URL:            record.URL,
			Domain:         record.Domain,
			Title:          record.Title,
			Type:           record.Type,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := s.repos.CitationRepo.BulkCreate(ctx, citations); err != nil {
		return fmt.Errorf("failed to store citations: %w", err)
	}

	runCost := result.TotalCost

	// Competitor discovery is best effort: a failure here never touches
	// the run outcome.
	if s.discovery != nil && result.ResponseText != "" {
		discovered, err := s.discovery.DiscoverCompetitors(ctx, result.ResponseText, brandNames)
		if err != nil {
			fmt.Printf("[ExecuteRun] ⚠️ Competitor discovery failed for prompt %s: %v\n", prompt.PromptID, err)
		} else if len(discovered.Names) > 0 {
			competitors := make([]*models.DiscoveredCompetitor, 0, len(discovered.Names))
			for _, name := range discovered.Names {
				competitors = append(competitors, &models.DiscoveredCompetitor{
					DiscoveredCompetitorID: uuid.New(),
					PromptResultID:         promptResult.PromptResultID,
					ProjectID:              projectID,
					Name:                   name,
					CreatedAt:              now,
					UpdatedAt:              now,
				})
			}
			if err := s.repos.DiscoveredCompetitorRepo.BulkCreate(ctx, competitors); err != nil {
				fmt.Printf("[ExecuteRun] ⚠️ Failed to store discovered competitors: %v\n", err)
			}
			runCost += discovered.TotalCost
		}
	}

	if runCost > 0 {
		if err := s.repos.AnalysisRunRepo.AddCost(ctx, runID, runCost); err != nil {
			return fmt.Errorf("failed to record run cost: %w", err)
		}
	}

	return nil
}

// failRun marks the run failed and ends the progress stream with a terminal
// event. Best effort: a run we cannot even mark failed is just logged.
func (s *analysisRunService) failRun(runID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.repos.AnalysisRunRepo.Fail(ctx, runID); err != nil {
		fmt.Printf("[ExecuteRun] ❌ Failed to mark run %s as failed: %v\n", runID, err)
	}
	s.hub.Publish(runID, ProgressEvent{
		Type:   "complete",
		RunID:  runID.String(),
		Status: models.RunStatusFailed,
	})
	s.hub.Close(runID)
}
