package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini   = "gemini"
	defaultGeminiTimeout = 120 * time.Second
)

// GeminiProvider implements Provider using Google's Gemini API. It serves as
// the fallback engine when the primary OpenAI models fail.
type GeminiProvider struct {
	client   *genai.Client
	throttle *Throttle
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string, throttle *Throttle) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:   client,
		throttle: throttle,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete sends one generation request to Gemini.
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	startTime := time.Now()
	log.Printf("✍️  GEMINI COMPLETION STARTED (model: %s, max_tokens: %d)", request.Model, request.MaxTokens)

	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	if err := p.throttle.Wait(ctx); err != nil {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini throttle wait: %w", err)
	}

	timeout := request.Timeout
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temperature := float32(request.Temperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
		Temperature:     &temperature,
		MaxOutputTokens: int32(request.MaxTokens),
	}

	span := transaction.StartChild("gemini.api_call")
	apiStart := time.Now()
	result, err := p.client.Models.GenerateContent(callCtx, request.Model, genai.Text(request.UserPrompt), config)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", time.Since(apiStart), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	content := result.Text()
	if content == "" {
		transaction.SetTag("success", "false")
		return nil, ErrEmptyCompletion
	}

	completion := &Completion{
		Content:      content,
		FinishReason: geminiFinishReason(result),
	}
	if result.UsageMetadata != nil {
		completion.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		completion.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI COMPLETION DONE in %v (%d chars, finish: %s)",
		time.Since(startTime), len(content), completion.FinishReason)

	return completion, nil
}

// geminiFinishReason normalizes Gemini's finish reason to the shared
// vocabulary ("length" for token-budget truncation).
func geminiFinishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 {
		return ""
	}
	reason := result.Candidates[0].FinishReason
	if reason == genai.FinishReasonMaxTokens {
		return FinishReasonLength
	}
	return string(reason)
}
