// services/prompt_analysis_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brandlens/brandlens-workflows/internal/providers"
)

type promptAnalysisService struct {
	provider  providers.AIProvider
	mentions  MentionService
	citations CitationService
}

func NewPromptAnalysisService(provider providers.AIProvider, mentions MentionService, citations CitationService) PromptAnalysisService {
	return &promptAnalysisService{
		provider:  provider,
		mentions:  mentions,
		citations: citations,
	}
}

// AnalyzePrompt executes one prompt against the provider and extracts every
// downstream signal from the response. It never returns an error: a provider
// failure is captured in the result so one bad prompt cannot sink a run, and
// each tracked brand still gets an unmentioned record.
func (s *promptAnalysisService) AnalyzePrompt(ctx context.Context, promptText string, brandNames []string) *PromptAnalysisResult {
	fmt.Printf("[AnalyzePrompt] 🚀 Running prompt via %s: %.60s...\n", s.provider.GetProviderName(), promptText)

	start := time.Now()
	response, err := s.provider.RunPrompt(ctx, promptText)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		fmt.Printf("[AnalyzePrompt] ❌ Provider call failed after %dms: %v\n", latency, err)
		return &PromptAnalysisResult{
			Success:   false,
			Error:     err.Error(),
			LatencyMS: latency,
			Mentions:  s.mentions.ExtractMentions("", brandNames),
			Citations: []CitationRecord{},
		}
	}

	result := &PromptAnalysisResult{
		Success:        true,
		ResponseText:   response.Text,
		ResponseLength: len(response.Text),
		LatencyMS:      latency,
		InputTokens:    response.InputTokens,
		OutputTokens:   response.OutputTokens,
		TotalCost:      response.Cost,
		SearchQueries:  response.SearchQueries,
		Mentions:       s.mentions.ExtractMentions(response.Text, brandNames),
	}

	result.Citations = s.citations.ExtractCitations(response.Grounding)
	if len(result.Citations) == 0 {
		// No grounding metadata: fall back to scanning the text itself
		result.Citations = s.citations.ExtractCitationsFromText(response.Text)
	}

	fmt.Printf("[AnalyzePrompt] ✅ %d chars, %d citations, %dms\n",
		result.ResponseLength, len(result.Citations), latency)
	return result
}
