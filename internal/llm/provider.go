package llm

import (
	"context"
	"errors"
	"time"
)

// Provider defines the interface for LLM completion backends. Implementations
// hold no per-call state; everything a call needs travels in the request.
type Provider interface {
	// Complete sends one chat completion request and returns the raw text.
	// Transport problems, non-2xx responses, and empty completions come back
	// as errors; a truncated-but-usable completion is NOT an error (see
	// Completion.FinishReason).
	Complete(ctx context.Context, request *CompletionRequest) (*Completion, error)

	// Name returns the provider name (e.g., "openai", "gemini").
	Name() string
}

// Typed failures the pipeline branches on. Everything else is a wrapped
// transport error.
var (
	// ErrNotConfigured means no API key is available for the provider.
	ErrNotConfigured = errors.New("llm: provider not configured")
	// ErrEmptyCompletion means the model returned nothing usable.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// FinishReasonLength is the normalized finish reason for a completion the
// model truncated at the token budget. It is a signal, not an error: the
// caller decides whether to request a continuation.
const FinishReasonLength = "length"

// CompletionRequest contains all parameters for one completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int64
	Temperature  float64
	// Timeout bounds the outbound call; zero means the provider default.
	Timeout time.Duration
}

// Completion is the raw result of one model call.
type Completion struct {
	Content      string
	FinishReason string // normalized; see FinishReasonLength
	InputTokens  int
	OutputTokens int
}

// Truncated reports whether the model stopped at the token budget.
func (c *Completion) Truncated() bool {
	return c.FinishReason == FinishReasonLength
}
