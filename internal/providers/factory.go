// internal/providers/factory.go
package providers

import (
	"fmt"
	"strings"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/providers/anthropic"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
	"github.com/brandlens/brandlens-workflows/internal/providers/openai"
)

// NewProvider creates the appropriate AI provider based on the model name
func NewProvider(modelName string, cfg *config.Config, costService common.CostService) (AIProvider, error) {
	modelLower := strings.ToLower(modelName)

	// OpenAI provider (gpt-4.1, gpt-5, etc.)
	if strings.Contains(modelLower, "gpt") {
		if cfg == nil || cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] 🎯 Selected OpenAI provider for model: %s\n", modelName)
		return openai.NewProvider(cfg, modelName, costService), nil
	}

	// Anthropic provider
	if strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") ||
		strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku") {
		if cfg == nil || cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] 🎯 Selected Anthropic provider for model: %s\n", modelName)
		return anthropic.NewProvider(cfg, modelName, costService), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", modelName)
}
