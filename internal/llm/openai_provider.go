package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	providerNameOpenAI = "openai"

	// Default outbound timeout when the request does not carry one.
	defaultOpenAITimeout = 120 * time.Second

	// Rate-limit retry policy: 10s x attempt number, capped at 3 attempts.
	rateLimitMaxAttempts  = 3
	rateLimitBackoffUnit  = 10 * time.Second
	maxCompletionLogChars = 200
)

// OpenAIProvider implements Provider using OpenAI's Chat Completions API.
type OpenAIProvider struct {
	client   *openai.Client
	throttle *Throttle
}

// NewOpenAIProvider creates a new OpenAI provider. The throttle is shared
// with any other providers so outbound calls are globally spaced.
func NewOpenAIProvider(apiKey string, throttle *Throttle) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:   &client,
		throttle: throttle,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Complete sends one chat completion request. HTTP 429 responses are retried
// with linear backoff; other transport failures return immediately.
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	startTime := time.Now()
	log.Printf("✍️  OPENAI COMPLETION STARTED (model: %s, max_tokens: %d)", request.Model, request.MaxTokens)

	transaction := sentry.StartTransaction(ctx, "openai.complete")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	if err := p.throttle.Wait(ctx); err != nil {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai throttle wait: %w", err)
	}

	timeout := request.Timeout
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserPrompt),
		},
		MaxTokens:   openai.Int(request.MaxTokens),
		Temperature: openai.Float(request.Temperature),
	}

	var resp *openai.ChatCompletion
	var err error
	for attempt := 1; attempt <= rateLimitMaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		span := transaction.StartChild("openai.api_call")
		apiStart := time.Now()
		resp, err = p.client.Chat.Completions.New(callCtx, params)
		span.Finish()
		cancel()

		if err == nil {
			log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", time.Since(apiStart))
			break
		}

		if !isRateLimited(err) || attempt == rateLimitMaxAttempts {
			log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(apiStart), err)
			transaction.SetTag("success", "false")
			sentry.CaptureException(err)
			return nil, fmt.Errorf("openai request failed: %w", err)
		}

		backoff := rateLimitBackoffUnit * time.Duration(attempt)
		log.Printf("⚠️  OPENAI RATE LIMITED (attempt %d/%d), backing off %v", attempt, rateLimitMaxAttempts, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			transaction.SetTag("success", "false")
			return nil, ctx.Err()
		}
	}

	if len(resp.Choices) == 0 {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai response had no choices: %w", ErrEmptyCompletion)
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if content == "" {
		transaction.SetTag("success", "false")
		return nil, ErrEmptyCompletion
	}

	completion := &Completion{
		Content:      content,
		FinishReason: string(choice.FinishReason),
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}

	transaction.SetTag("success", "true")
	transaction.SetData("tokens_in", completion.InputTokens)
	transaction.SetData("tokens_out", completion.OutputTokens)
	log.Printf("✅ OPENAI COMPLETION DONE in %v (%d chars, finish: %s, preview: %s)",
		time.Since(startTime), len(content), completion.FinishReason, truncateString(content, maxCompletionLogChars))

	return completion, nil
}

// isRateLimited reports whether err is an HTTP 429 from the OpenAI API.
func isRateLimited(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// truncateString shortens s for log output.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
