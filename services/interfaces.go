package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/jmoiron/sqlx"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/internal/repositories/postgres"
)

// RepositoryManager bundles all repositories behind one handle so services
// take a single dependency instead of nine.
type RepositoryManager struct {
	ProjectRepo              repositories.ProjectRepository
	BrandRepo                repositories.BrandRepository
	PromptRepo               repositories.PromptRepository
	AnalysisRunRepo          repositories.AnalysisRunRepository
	PromptResultRepo         repositories.PromptResultRepository
	BrandMentionRepo         repositories.BrandMentionRepository
	CitationRepo             repositories.CitationRepository
	MetricsSnapshotRepo      repositories.MetricsSnapshotRepository
	DiscoveredCompetitorRepo repositories.DiscoveredCompetitorRepository
}

// NewRepositoryManager wires the postgres implementations against one shared pool.
func NewRepositoryManager(db *sqlx.DB) *RepositoryManager {
	return &RepositoryManager{
		ProjectRepo:              postgres.NewProjectRepo(db),
		BrandRepo:                postgres.NewBrandRepo(db),
		PromptRepo:               postgres.NewPromptRepo(db),
		AnalysisRunRepo:          postgres.NewAnalysisRunRepo(db),
		PromptResultRepo:         postgres.NewPromptResultRepo(db),
		BrandMentionRepo:         postgres.NewBrandMentionRepo(db),
		CitationRepo:             postgres.NewCitationRepo(db),
		MetricsSnapshotRepo:      postgres.NewMetricsSnapshotRepo(db),
		DiscoveredCompetitorRepo: postgres.NewDiscoveredCompetitorRepo(db),
	}
}

// MentionRecord is the per-brand outcome of scanning one response text.
// Position is nil when the brand never appears.
type MentionRecord struct {
	BrandName      string
	Mentioned      bool
	Position       *int
	MentionCount   int
	Context        *string
	Sentiment      *string
	SentimentScore *float64
	IsRecommended  bool
}

// CitationRecord is one deduplicated source URL pulled from a response.
type CitationRecord struct {
	URL    string
	Domain string
	Title  *string
	Type   string
}

// PromptAnalysisResult carries everything one prompt execution produced.
// Analyze never fails as a call: provider errors land in Error with
// Success=false and a full set of unmentioned records.
type PromptAnalysisResult struct {
	Success        bool
	Error          string
	ResponseText   string
	ResponseLength int
	LatencyMS      int64
	InputTokens    int
	OutputTokens   int
	TotalCost      float64
	SearchQueries  []string
	Mentions       []MentionRecord
	Citations      []CitationRecord
}

// RunAck is the immediate answer to a run trigger; the work itself
// continues in the background.
type RunAck struct {
	RunID        uuid.UUID `json:"run_id"`
	TotalPrompts int       `json:"total_prompts"`
}

// ProgressEvent is what run observers receive over the progress hub.
// Type is "progress" while prompts are being worked and "complete" once
// the run has finished (terminal, the stream closes after it).
type ProgressEvent struct {
	Type          string `json:"type"`
	RunID         string `json:"run_id,omitempty"`
	Processed     int    `json:"processed,omitempty"`
	Total         int    `json:"total,omitempty"`
	CurrentPrompt string `json:"current_prompt,omitempty"`
	Status        string `json:"status,omitempty"`
}

// MentionService scans response text for brand visibility signals.
type MentionService interface {
	ExtractMentions(responseText string, brandNames []string) []MentionRecord
}

// CitationService turns provider grounding metadata (or raw text, as a
// fallback) into deduplicated citation records.
type CitationService interface {
	ExtractCitations(grounding *common.GroundingMetadata) []CitationRecord
	ExtractCitationsFromText(responseText string) []CitationRecord
	ClassifyCitations(records []CitationRecord, projectWebsites []string)
}

// PromptAnalysisService runs one prompt through a provider and extracts
// mentions and citations from whatever came back.
type PromptAnalysisService interface {
	AnalyzePrompt(ctx context.Context, promptText string, brandNames []string) *PromptAnalysisResult
}

// AnalysisRunService owns the run lifecycle: claim, execute, aggregate.
type AnalysisRunService interface {
	StartRun(ctx context.Context, projectID uuid.UUID) (*RunAck, error)
	ExecuteRun(ctx context.Context, runID uuid.UUID) error
}

// MetricsService computes per-brand snapshots for a finished run.
type MetricsService interface {
	AggregateRun(ctx context.Context, runID uuid.UUID) ([]*models.MetricsSnapshot, error)
}

// CompetitorDiscoveryService asks a model which competitor brands showed
// up in a response beyond the ones already tracked.
type CompetitorDiscoveryService interface {
	DiscoverCompetitors(ctx context.Context, responseText string, trackedNames []string) (*CompetitorDiscoveryResult, error)
}

// CompetitorDiscoveryResult holds discovered names plus what the
// extraction call cost.
type CompetitorDiscoveryResult struct {
	Names        []string
	InputTokens  int
	OutputTokens int
	TotalCost    float64
}

// CostService calculates API costs per provider/model.
type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, usedWebSearch bool) float64
}

// GenerateSchema builds a strict JSON schema for structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}
