// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Run status values for AnalysisRun.Status
const (
	RunStatusPending    = "pending"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// Sentiment labels for BrandMention.Sentiment
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Citation types
const (
	CitationTypePrimary   = "primary"
	CitationTypeSecondary = "secondary"
)

// Project is the top-level container for a tracked brand and its competitors.
type Project struct {
	ProjectID       uuid.UUID `json:"project_id" db:"project_id"`
	Name            string    `json:"name" db:"name"`
	Websites        []string  `json:"websites" db:"-"`
	ScheduleWeekday *int      `json:"schedule_weekday,omitempty" db:"schedule_weekday"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Brand is a tracked name within a project. Exactly one brand per project
// has IsUserBrand set.
type Brand struct {
	BrandID     uuid.UUID `json:"brand_id" db:"brand_id"`
	ProjectID   uuid.UUID `json:"project_id" db:"project_id"`
	Name        string    `json:"name" db:"name"`
	IsUserBrand bool      `json:"is_user_brand" db:"is_user_brand"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Prompt is a query sent to AI models during analysis runs.
type Prompt struct {
	PromptID   uuid.UUID `json:"prompt_id" db:"prompt_id"`
	ProjectID  uuid.UUID `json:"project_id" db:"project_id"`
	Text       string    `json:"text" db:"text"`
	IntentType string    `json:"intent_type" db:"intent_type"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// AnalysisRun is one execution over a project's active prompt set.
type AnalysisRun struct {
	AnalysisRunID    uuid.UUID  `json:"analysis_run_id" db:"analysis_run_id"`
	ProjectID        uuid.UUID  `json:"project_id" db:"project_id"`
	Status           string     `json:"status" db:"status"`
	TotalPrompts     int        `json:"total_prompts" db:"total_prompts"`
	ProcessedPrompts int        `json:"processed_prompts" db:"processed_prompts"`
	TotalCost        float64    `json:"total_cost" db:"total_cost"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// PromptResult is one prompt execution inside a run. Error is set when the
// provider call failed; such results carry no mention or citation rows.
type PromptResult struct {
	PromptResultID uuid.UUID `json:"prompt_result_id" db:"prompt_result_id"`
	AnalysisRunID  uuid.UUID `json:"analysis_run_id" db:"analysis_run_id"`
	PromptID       uuid.UUID `json:"prompt_id" db:"prompt_id"`
	ResponseText   *string   `json:"response_text,omitempty" db:"response_text"`
	ResponseLength int       `json:"response_length" db:"response_length"`
	LatencyMS      int64     `json:"latency_ms" db:"latency_ms"`
	InputTokens    *int      `json:"input_tokens,omitempty" db:"input_tokens"`
	OutputTokens   *int      `json:"output_tokens,omitempty" db:"output_tokens"`
	TotalCost      *float64  `json:"total_cost,omitempty" db:"total_cost"`
	SearchQueries  []string  `json:"search_queries,omitempty" db:"-"`
	Error          *string   `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// BrandMention records whether (and how) one brand appeared in one prompt
// result. Position is nil when the brand was not mentioned.
type BrandMention struct {
	BrandMentionID uuid.UUID `json:"brand_mention_id" db:"brand_mention_id"`
	PromptResultID uuid.UUID `json:"prompt_result_id" db:"prompt_result_id"`
	BrandID        uuid.UUID `json:"brand_id" db:"brand_id"`
	Mentioned      bool      `json:"mentioned" db:"mentioned"`
	Position       *int      `json:"position,omitempty" db:"position"`
	MentionCount   int       `json:"mention_count" db:"mention_count"`
	Sentiment      *string   `json:"sentiment,omitempty" db:"sentiment"`
	SentimentScore *float64  `json:"sentiment_score,omitempty" db:"sentiment_score"`
	Context        *string   `json:"context,omitempty" db:"context"`
	IsRecommended  bool      `json:"is_recommended" db:"is_recommended"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Citation is one distinct cited URL within a prompt result.
type Citation struct {
	CitationID     uuid.UUID `json:"citation_id" db:"citation_id"`
	PromptResultID uuid.UUID `json:"prompt_result_id" db:"prompt_result_id"`
	URL            string    `json:"url" db:"url"`
	Domain         string    `json:"domain" db:"domain"`
	Title          *string   `json:"title,omitempty" db:"title"`
	Type           string    `json:"type" db:"type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// MetricsSnapshot holds per-brand aggregates for one run. Derived data,
// upserted by the metrics service and never hand-edited.
type MetricsSnapshot struct {
	MetricsSnapshotID   uuid.UUID `json:"metrics_snapshot_id" db:"metrics_snapshot_id"`
	AnalysisRunID       uuid.UUID `json:"analysis_run_id" db:"analysis_run_id"`
	BrandID             uuid.UUID `json:"brand_id" db:"brand_id"`
	VisibilityScore     float64   `json:"visibility_score" db:"visibility_score"`
	MentionCount        int       `json:"mention_count" db:"mention_count"`
	CitationCount       int       `json:"citation_count" db:"citation_count"`
	ShareOfVoice        float64   `json:"share_of_voice" db:"share_of_voice"`
	AveragePosition     *float64  `json:"average_position,omitempty" db:"average_position"`
	PositiveCount       int       `json:"positive_count" db:"positive_count"`
	NeutralCount        int       `json:"neutral_count" db:"neutral_count"`
	NegativeCount       int       `json:"negative_count" db:"negative_count"`
	AverageSentiment    *float64  `json:"average_sentiment,omitempty" db:"average_sentiment"`
	RecommendationCount int       `json:"recommendation_count" db:"recommendation_count"`
	FirstPositionCount  int       `json:"first_position_count" db:"first_position_count"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// DiscoveredCompetitor is a brand name extracted from a response that is not
// among the project's tracked brands. Stored as a suggestion for review.
type DiscoveredCompetitor struct {
	DiscoveredCompetitorID uuid.UUID `json:"discovered_competitor_id" db:"discovered_competitor_id"`
	PromptResultID         uuid.UUID `json:"prompt_result_id" db:"prompt_result_id"`
	ProjectID              uuid.UUID `json:"project_id" db:"project_id"`
	Name                   string    `json:"name" db:"name"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectSummary is the slim project view used by the scheduled processor.
type ProjectSummary struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastRunDate *time.Time `json:"last_run_date,omitempty" db:"last_run_date"`
}
