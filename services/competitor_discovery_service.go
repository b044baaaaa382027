// services/competitor_discovery_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

// CompetitorListResponse is the structured-output shape the extraction
// model fills in.
type CompetitorListResponse struct {
	Competitors []string `json:"competitors" jsonschema_description:"Brand, company, or product names mentioned in the response"`
}

type competitorDiscoveryService struct {
	client      openai.Client
	model       openai.ChatModel
	costService CostService
}

func NewCompetitorDiscoveryService(cfg *config.Config, costService CostService) CompetitorDiscoveryService {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)
	return &competitorDiscoveryService{
		client:      client,
		model:       openai.ChatModel(cfg.ExtractionModel),
		costService: costService,
	}
}

// DiscoverCompetitors asks the extraction model which brands appear in a
// response beyond the names we already track. Results come back through a
// strict JSON schema; tracked names and empty strings are filtered out here
// as a second line of defense.
func (s *competitorDiscoveryService) DiscoverCompetitors(ctx context.Context, responseText string, trackedNames []string) (*CompetitorDiscoveryResult, error) {
	fmt.Printf("[DiscoverCompetitors] 🔍 Scanning response for untracked brands (tracking %d)\n", len(trackedNames))

	prompt := fmt.Sprintf(`Identify every brand, company, product, or service name mentioned in the response below that is NOT in the tracked list.

**TRACKED BRANDS (exclude these and their variations):** %s

**RULES:**
- Include company, product, service, platform, and tool names
- Exclude generic terms ("AI tools", "analytics platforms"), technical concepts, and audience words ("users", "customers")
- Use the most recognizable name for each entity and remove duplicates
- Return an empty list when nothing qualifies

**RESPONSE TO ANALYZE:**
`+"```\n%s\n```", strings.Join(trackedNames, ", "), responseText)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "competitor_discovery",
		Description: openai.String("Extract untracked brand names from AI response"),
		Schema:      GenerateSchema[CompetitorListResponse](),
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert in competitive analysis and brand identification. Extract brand names accurately and comprehensively."),
			openai.UserMessage(prompt),
		},
		Model: s.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.1),
	}

	chatResponse, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to discover competitors: %w", err)
	}
	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	var extracted CompetitorListResponse
	if err := json.Unmarshal([]byte(chatResponse.Choices[0].Message.Content), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse competitor response: %w", err)
	}

	tracked := make(map[string]bool, len(trackedNames))
	for _, name := range trackedNames {
		tracked[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var names []string
	seen := make(map[string]bool)
	for _, name := range extracted.Competitors {
		cleaned := strings.TrimSpace(name)
		key := strings.ToLower(cleaned)
		if cleaned == "" || tracked[key] || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, cleaned)
	}

	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)
	totalCost := 0.0
	if s.costService != nil {
		totalCost = s.costService.CalculateCost("openai", string(s.model), inputTokens, outputTokens, false)
	}

	fmt.Printf("[DiscoverCompetitors] ✅ Found %d untracked brands\n", len(names))
	return &CompetitorDiscoveryResult{
		Names:        names,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalCost:    totalCost,
	}, nil
}
