// internal/providers/testutil/mocks.go
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
)

// MockCostService is a mock implementation of CostService for testing
type MockCostService struct {
	CalculateCostFunc func(provider, model string, inputTokens, outputTokens int, websearch bool) float64
}

func (m *MockCostService) CalculateCost(provider, model string, inputTokens, outputTokens int, websearch bool) float64 {
	if m.CalculateCostFunc != nil {
		return m.CalculateCostFunc(provider, model, inputTokens, outputTokens, websearch)
	}
	return 0.0015 // Default mock cost
}

// NewMockCostService creates a new mock cost service
func NewMockCostService() *MockCostService {
	return &MockCostService{}
}

// SampleConfig returns a config suitable for provider tests
func SampleConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		OpenAIAPIKey:    "test-openai-key",
		AnthropicAPIKey: "test-anthropic-key",
		QueryModel:      "gpt-4.1",
		ExtractionModel: "gpt-4.1-mini",
	}
}

// MockProvider is a scripted AIProvider for pipeline tests. Responses are
// returned in order; once exhausted the last entry repeats. An entry with
// Err set makes the corresponding call fail.
type MockProvider struct {
	mu      sync.Mutex
	Entries []MockEntry
	Calls   []string
}

type MockEntry struct {
	Response *common.AIResponse
	Err      error
}

func (m *MockProvider) GetProviderName() string {
	return "mock"
}

func (m *MockProvider) RunPrompt(ctx context.Context, promptText string) (*common.AIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := len(m.Calls)
	m.Calls = append(m.Calls, promptText)

	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("mock provider has no scripted entries")
	}
	if idx >= len(m.Entries) {
		idx = len(m.Entries) - 1
	}

	entry := m.Entries[idx]
	if entry.Err != nil {
		return nil, entry.Err
	}
	return entry.Response, nil
}

// TextResponse builds a minimal successful AIResponse around the given text.
func TextResponse(text string, sources ...common.WebSource) *common.AIResponse {
	grounding := &common.GroundingMetadata{}
	for i := range sources {
		grounding.Chunks = append(grounding.Chunks, common.GroundingChunk{Web: &sources[i]})
	}
	return &common.AIResponse{
		Text:         text,
		InputTokens:  100,
		OutputTokens: 200,
		Cost:         0.0015,
		Grounding:    grounding,
	}
}

// MockOpenAIServer serves a canned responses-API payload for provider tests
type MockOpenAIServer struct {
	Server     *httptest.Server
	StatusCode int
	Body       string
	Requests   int
}

// NewMockOpenAIServer creates a mock OpenAI responses endpoint
func NewMockOpenAIServer() *MockOpenAIServer {
	mock := &MockOpenAIServer{
		StatusCode: http.StatusOK,
		Body:       SampleWebSearchResponse,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mock.Requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mock.StatusCode)
		w.Write([]byte(mock.Body))
	})

	mock.Server = httptest.NewServer(mux)
	return mock
}

func (m *MockOpenAIServer) Close() {
	m.Server.Close()
}
