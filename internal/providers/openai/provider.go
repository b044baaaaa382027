// internal/providers/openai/provider.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
)

// Provider implements providers.AIProvider against the OpenAI responses API
// with the web search tool enabled.
type Provider struct {
	apiKey      string
	model       string
	baseURL     string
	costService common.CostService
	httpClient  *http.Client
}

func NewProvider(cfg *config.Config, model string, costService common.CostService) *Provider {
	if cfg == nil {
		cfg = &config.Config{}
	}

	fmt.Printf("[NewOpenAIProvider] Creating OpenAI provider\n")
	fmt.Printf("[NewOpenAIProvider]   - Model: %s\n", model)
	fmt.Printf("[NewOpenAIProvider]   - API key loaded: %t\n", cfg.OpenAIAPIKey != "")

	return &Provider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       model,
		baseURL:     "https://api.openai.com/v1",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (p *Provider) GetProviderName() string {
	return "openai"
}

// SetBaseURL overrides the API endpoint. Used by tests to point the
// provider at a mock server.
func (p *Provider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// webSearchRequest is the request body for the responses API
type webSearchRequest struct {
	Model string          `json:"model"`
	Tools []webSearchTool `json:"tools"`
	Input string          `json:"input"`
}

type webSearchTool struct {
	Type string `json:"type"`
}

// webSearchResponse is the subset of the responses API payload we consume
type webSearchResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output []webOutputItem `json:"output"`
	Usage  webUsage        `json:"usage"`
}

type webOutputItem struct {
	Type    string       `json:"type"`
	Status  string       `json:"status,omitempty"`
	Content []webContent `json:"content,omitempty"`
	Action  *webAction   `json:"action,omitempty"`
}

type webContent struct {
	Type        string          `json:"type"`
	Text        string          `json:"text,omitempty"`
	Annotations []webAnnotation `json:"annotations,omitempty"`
}

type webAnnotation struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

type webAction struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

type webUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// RunPrompt asks the model with web search enabled and maps URL-citation
// annotations into grounding metadata.
func (p *Provider) RunPrompt(ctx context.Context, promptText string) (*common.AIResponse, error) {
	requestBody := webSearchRequest{
		Model: p.model,
		Tools: []webSearchTool{
			{Type: "web_search_preview"},
		},
		Input: promptText,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/responses", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("web search API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var webResp webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&webResp); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	responseText := ""
	grounding := &common.GroundingMetadata{}
	var searchQueries []string

	for _, output := range webResp.Output {
		switch output.Type {
		case "message":
			for _, content := range output.Content {
				if content.Type != "output_text" {
					continue
				}
				if responseText == "" {
					responseText = content.Text
				}
				for _, annotation := range content.Annotations {
					if annotation.Type != "url_citation" || annotation.URL == "" {
						continue
					}
					grounding.Chunks = append(grounding.Chunks, common.GroundingChunk{
						Web: &common.WebSource{
							URI:   annotation.URL,
							Title: annotation.Title,
						},
					})
				}
			}
		case "web_search_call":
			if output.Action != nil && output.Action.Query != "" {
				searchQueries = append(searchQueries, output.Action.Query)
			}
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no message content found in web search response")
	}

	cost := 0.0
	if p.costService != nil {
		cost = p.costService.CalculateCost(p.GetProviderName(), p.model, webResp.Usage.InputTokens, webResp.Usage.OutputTokens, true)
	}

	return &common.AIResponse{
		Text:          responseText,
		InputTokens:   webResp.Usage.InputTokens,
		OutputTokens:  webResp.Usage.OutputTokens,
		Cost:          cost,
		Grounding:     grounding,
		SearchQueries: searchQueries,
	}, nil
}
