// internal/providers/common/types.go
package common

// CostService calculates the dollar cost of a provider call. Satisfied by
// the services cost service; declared here so provider packages stay
// import-free of the services package.
type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, websearch bool) float64
}

// AIResponse is the normalized result of one provider call.
type AIResponse struct {
	Text          string
	InputTokens   int
	OutputTokens  int
	Cost          float64
	Grounding     *GroundingMetadata
	SearchQueries []string
}

// GroundingMetadata lists the web sources a provider consulted while
// producing a response. Every level is explicitly optional: a nil metadata,
// a chunk without a web source, and a web source without a title are all
// valid shapes.
type GroundingMetadata struct {
	Chunks []GroundingChunk `json:"chunks"`
}

// GroundingChunk is a single grounding entry. Web is nil for non-web
// chunks (e.g. provider-internal retrieval).
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource identifies one cited web page.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// WebChunks returns the web-sourced entries, tolerating a nil receiver.
func (g *GroundingMetadata) WebChunks() []WebSource {
	if g == nil {
		return nil
	}
	sources := make([]WebSource, 0, len(g.Chunks))
	for _, chunk := range g.Chunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			sources = append(sources, *chunk.Web)
		}
	}
	return sources
}
