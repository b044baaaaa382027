// internal/providers/provider.go
package providers

import (
	"context"

	"github.com/brandlens/brandlens-workflows/internal/providers/common"
)

// AIProvider runs a single web-grounded prompt against an AI model.
type AIProvider interface {
	RunPrompt(ctx context.Context, promptText string) (*common.AIResponse, error)
	GetProviderName() string
}
