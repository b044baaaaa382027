package providers_test

import (
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/providers"
	"github.com/brandlens/brandlens-workflows/internal/providers/testutil"
)

func TestFactoryCreatesCorrectProvider(t *testing.T) {
	tests := []struct {
		modelName        string
		expectedProvider string
		shouldError      bool
	}{
		{"gpt-4.1", "openai", false},
		{"gpt-4.1-mini", "openai", false},
		{"gpt-5", "openai", false},
		{"GPT-4.1", "openai", false},
		{"claude-sonnet-4-20250514", "anthropic", false},
		{"claude-3-5-haiku", "anthropic", false},
		{"sonnet", "anthropic", false},
		{"gemini-2.0-flash", "", true}, // Not implemented
		{"unsupported-model", "", true},
		{"", "", true},
	}

	cfg := testutil.SampleConfig()
	costService := testutil.NewMockCostService()

	for _, tt := range tests {
		t.Run(tt.modelName, func(t *testing.T) {
			provider, err := providers.NewProvider(tt.modelName, cfg, costService)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for model %s, but got none", tt.modelName)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error for model %s: %v", tt.modelName, err)
				return
			}

			if provider == nil {
				t.Errorf("Provider is nil for model %s", tt.modelName)
				return
			}

			if provider.GetProviderName() != tt.expectedProvider {
				t.Errorf("Expected provider %s, got %s", tt.expectedProvider, provider.GetProviderName())
			}
		})
	}
}

func TestFactoryRequiresCredentials(t *testing.T) {
	costService := testutil.NewMockCostService()

	cfg := testutil.SampleConfig()
	cfg.OpenAIAPIKey = ""
	if _, err := providers.NewProvider("gpt-4.1", cfg, costService); err == nil {
		t.Error("Expected error when OpenAI key is missing")
	}

	cfg = testutil.SampleConfig()
	cfg.AnthropicAPIKey = ""
	if _, err := providers.NewProvider("claude-sonnet-4-20250514", cfg, costService); err == nil {
		t.Error("Expected error when Anthropic key is missing")
	}

	if _, err := providers.NewProvider("gpt-4.1", nil, costService); err == nil {
		t.Error("Expected error for nil config")
	}
}
