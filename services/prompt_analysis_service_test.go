package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/providers/common"
	"github.com/brandlens/brandlens-workflows/internal/providers/testutil"
	"github.com/brandlens/brandlens-workflows/services"
)

func newAnalyzer(provider *testutil.MockProvider) services.PromptAnalysisService {
	return services.NewPromptAnalysisService(provider, services.NewMentionService(), services.NewCitationService())
}

func TestAnalyzePromptSuccess(t *testing.T) {
	provider := &testutil.MockProvider{
		Entries: []testutil.MockEntry{
			{Response: testutil.TextResponse(
				"Globex is the best CRM. Acme works too.",
				common.WebSource{URI: "https://reviews.example.org/crm", Title: "CRM Roundup"},
			)},
		},
	}
	analyzer := newAnalyzer(provider)

	result := analyzer.AnalyzePrompt(context.Background(), "best CRM tools?", []string{"Acme", "Globex"})

	if !result.Success {
		t.Fatalf("Expected success, got error %q", result.Error)
	}
	if result.ResponseLength != len(result.ResponseText) {
		t.Errorf("Response length mismatch: %d vs %d chars", result.ResponseLength, len(result.ResponseText))
	}
	if len(result.Mentions) != 2 {
		t.Fatalf("Expected 2 mention records, got %d", len(result.Mentions))
	}
	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation from grounding, got %d", len(result.Citations))
	}
	if result.Citations[0].Domain != "reviews.example.org" {
		t.Errorf("Unexpected citation domain: %s", result.Citations[0].Domain)
	}
	if len(provider.Calls) != 1 || provider.Calls[0] != "best CRM tools?" {
		t.Errorf("Provider not called with prompt text: %v", provider.Calls)
	}
}

func TestAnalyzePromptProviderFailure(t *testing.T) {
	provider := &testutil.MockProvider{
		Entries: []testutil.MockEntry{
			{Err: errors.New("rate limited")},
		},
	}
	analyzer := newAnalyzer(provider)

	result := analyzer.AnalyzePrompt(context.Background(), "best CRM tools?", []string{"Acme", "Globex"})

	if result.Success {
		t.Fatal("Expected failure result")
	}
	if result.Error != "rate limited" {
		t.Errorf("Expected provider error in result, got %q", result.Error)
	}
	// Every brand still gets an unmentioned record
	if len(result.Mentions) != 2 {
		t.Fatalf("Expected 2 mention records on failure, got %d", len(result.Mentions))
	}
	for _, mention := range result.Mentions {
		if mention.Mentioned {
			t.Errorf("Brand %s should be unmentioned on failure", mention.BrandName)
		}
	}
	if len(result.Citations) != 0 {
		t.Errorf("Expected no citations on failure, got %d", len(result.Citations))
	}
}

func TestAnalyzePromptFallsBackToTextCitations(t *testing.T) {
	provider := &testutil.MockProvider{
		Entries: []testutil.MockEntry{
			{Response: testutil.TextResponse("Acme is covered at https://example.com/acme-review in depth.")},
		},
	}
	analyzer := newAnalyzer(provider)

	result := analyzer.AnalyzePrompt(context.Background(), "tell me about Acme", []string{"Acme"})

	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Error)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation from text fallback, got %d", len(result.Citations))
	}
	if result.Citations[0].URL != "https://example.com/acme-review" {
		t.Errorf("Unexpected fallback citation URL: %s", result.Citations[0].URL)
	}
}
