// internal/providers/anthropic/provider.go
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
)

// Provider implements providers.AIProvider using the Anthropic messages API
// with the server-side web search tool.
type Provider struct {
	client      *anthropic.Client
	model       string
	costService common.CostService
}

func NewProvider(cfg *config.Config, model string, costService common.CostService) *Provider {
	if cfg == nil {
		cfg = &config.Config{}
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &Provider{
		client:      &client,
		model:       model,
		costService: costService,
	}
}

func (p *Provider) GetProviderName() string {
	return "anthropic"
}

// RunPrompt sends the prompt with web search enabled and maps search-result
// citations into grounding metadata.
func (p *Provider) RunPrompt(ctx context.Context, promptText string) (*common.AIResponse, error) {
	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: promptText},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2000,
		Messages:  messages,
		Tools: []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(5),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("message call failed: %w", err)
	}

	var textParts []string
	grounding := &common.GroundingMetadata{}
	seenURIs := make(map[string]bool)
	var searchQueries []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
			for _, citation := range variant.Citations {
				if loc, ok := citation.AsAny().(anthropic.CitationsWebSearchResultLocation); ok {
					if loc.URL == "" || seenURIs[loc.URL] {
						continue
					}
					seenURIs[loc.URL] = true
					grounding.Chunks = append(grounding.Chunks, common.GroundingChunk{
						Web: &common.WebSource{
							URI:   loc.URL,
							Title: loc.Title,
						},
					})
				}
			}
		case anthropic.ServerToolUseBlock:
			var toolInput struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal([]byte(variant.JSON.Input.Raw()), &toolInput); err == nil && toolInput.Query != "" {
				searchQueries = append(searchQueries, toolInput.Query)
			}
		}
	}

	responseText := strings.Join(textParts, "")
	if responseText == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)
	cost := 0.0
	if p.costService != nil {
		cost = p.costService.CalculateCost(p.GetProviderName(), p.model, inputTokens, outputTokens, true)
	}

	return &common.AIResponse{
		Text:          responseText,
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		Cost:          cost,
		Grounding:     grounding,
		SearchQueries: searchQueries,
	}, nil
}
