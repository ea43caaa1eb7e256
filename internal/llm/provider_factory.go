package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultThrottleInterval spaces outbound model calls across all in-flight
// generation requests.
const DefaultThrottleInterval = 2 * time.Second

// ProviderFactory creates providers based on model name.
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
	throttle     *Throttle
}

// NewProviderFactory creates a new provider factory. All providers it builds
// share one throttle.
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
		throttle:     NewThrottle(DefaultThrottleInterval),
	}
}

// GetProvider returns the provider inferred from the model name.
// GPT models route to OpenAI, Gemini models to Google; unknown models
// default to OpenAI.
func (f *ProviderFactory) GetProvider(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	if strings.HasPrefix(modelLower, "gemini-") {
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured: %w", ErrNotConfigured)
		}
		return NewGeminiProvider(ctx, f.geminiAPIKey, f.throttle)
	}

	if f.openaiAPIKey == "" {
		return nil, fmt.Errorf("openai API key not configured: %w", ErrNotConfigured)
	}
	return NewOpenAIProvider(f.openaiAPIKey, f.throttle), nil
}
