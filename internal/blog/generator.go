package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/seoscribe/seoscribe-api/internal/llm"
	"github.com/seoscribe/seoscribe-api/internal/logger"
)

const (
	// DefaultPrimaryModel and DefaultFallbackModel are the model tiers used
	// when the deployment does not override them.
	DefaultPrimaryModel  = "gpt-4o"
	DefaultFallbackModel = "gpt-4o-mini"

	defaultTargetWords = 1200

	initialMaxTokens      = 8000
	continuationMaxTokens = 4000
	initialTimeout        = 180 * time.Second
	continuationTimeout   = 60 * time.Second
	temperature           = 0.7
)

// Observer receives per-generation usage once a post is finished. The HTTP
// layer wires tracing and metrics through this; the pipeline itself stays
// free of those dependencies.
type Observer interface {
	RecordGeneration(ctx context.Context, keyword, model string, usage Usage, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) RecordGeneration(context.Context, string, string, Usage, time.Duration) {}

// modelTier pairs a provider with the model name to request from it.
type modelTier struct {
	provider llm.Provider
	model    string
}

// Generator runs the full pipeline for one post: prompt, model call, parse,
// normalize, word-count enforcement, locale repair, SEO fixes, and schema
// synthesis. All collaborators are injected; tests swap in fakes.
type Generator struct {
	prompts       *PromptBuilder
	cities        []string
	primary       llm.Provider
	primaryModel  string
	fallback      llm.Provider
	fallbackModel string
	observer      Observer
	now           func() time.Time
}

// GeneratorOptions configures a Generator. Primary is required; everything
// else has a default.
type GeneratorOptions struct {
	Primary       llm.Provider
	PrimaryModel  string
	Fallback      llm.Provider
	FallbackModel string
	KnownCities   []string
	Observer      Observer
}

func NewGenerator(opts GeneratorOptions) *Generator {
	g := &Generator{
		prompts:       NewPromptBuilder(),
		cities:        opts.KnownCities,
		primary:       opts.Primary,
		primaryModel:  opts.PrimaryModel,
		fallback:      opts.Fallback,
		fallbackModel: opts.FallbackModel,
		observer:      opts.Observer,
		now:           time.Now,
	}
	if len(g.cities) == 0 {
		g.cities = DefaultKnownCities
	}
	if g.primaryModel == "" {
		g.primaryModel = DefaultPrimaryModel
	}
	if g.fallbackModel == "" {
		g.fallbackModel = DefaultFallbackModel
	}
	if g.observer == nil {
		g.observer = noopObserver{}
	}
	return g
}

// Generate produces a complete post for the request. It never returns an
// error: every failure mode degrades to a result whose report records what
// went wrong, down to a minimal deterministic result when no model call
// succeeds at all.
func (g *Generator) Generate(ctx context.Context, req *GenerationRequest) *GenerationResult {
	started := g.now()

	// The request is treated as immutable; defaults go on a copy.
	r := *req
	if r.TargetWordCount <= 0 {
		r.TargetWordCount = defaultTargetWords
	}

	city := detectCityInKeyword(r.Keyword, g.cities)
	if city == "" {
		city = strings.TrimSpace(r.City)
	}
	keywordHasCity := city != "" && keywordContainsCity(r.Keyword, city)

	logger.Info("🚀 starting generation", logger.Fields{
		"keyword": r.Keyword, "city": city, "target_words": r.TargetWordCount,
	})
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "blog.generate",
		Message:  "generation started",
		Data:     map[string]any{"keyword": r.Keyword, "city": city},
		Level:    sentry.LevelInfo,
	})

	usage := &Usage{}
	report := &ValidationReport{}

	parsed, raw, modelUsed, err := g.initialArticle(ctx, &r, city, usage, report)
	if err != nil {
		logger.Error("💥 all model tiers failed, returning minimal result", err, logger.Fields{
			"keyword": r.Keyword,
		})
		result := g.minimalResult(&r, city)
		result.Report.AddError(fmt.Sprintf("generation failed: %v", err))
		g.observer.RecordGeneration(ctx, r.Keyword, modelUsed, *usage, g.now().Sub(started))
		return result
	}

	if len(parsed) == 0 {
		report.AddWarning("model response was not parseable JSON")
	}
	result := normalizeResult(parsed, raw, &r, report)
	result.Report = *report

	g.enforceWordCount(ctx, result, &r, city, usage)
	FixLocaleConsistency(result, r.City, city, r.Region, g.cities)
	ApplySeoFixes(result, &r, city, keywordHasCity)
	result.Schema = SynthesizeSchema(result, &r, city, g.now())
	result.WordCount = CountWords(result.Body)

	duration := g.now().Sub(started)
	logger.Info("✅ generation finished", logger.Fields{
		"keyword": r.Keyword, "model": modelUsed, "words": result.WordCount,
		"tokens": usage.TotalTokens, "duration_ms": duration.Milliseconds(),
		"warnings": len(result.Report.Warnings),
	})
	g.observer.RecordGeneration(ctx, r.Keyword, modelUsed, *usage, duration)
	return result
}

// initialArticle asks each model tier in order for the full article. A tier
// counts as failed not only on a transport error but also when its response
// carries no recoverable body (a refusal, plain prose), so the next tier
// gets a chance to produce real content. When every tier responds but none
// yields a body, the last response is still returned with a report warning
// and normalization degrades from there.
func (g *Generator) initialArticle(ctx context.Context, req *GenerationRequest, city string, usage *Usage, report *ValidationReport) (map[string]any, string, string, error) {
	system := g.prompts.SystemPrompt()
	user := g.prompts.UserPrompt(req, city)

	var lastParsed map[string]any
	var lastRaw, lastModel string
	var lastErr error
	for _, tier := range g.modelTiers() {
		raw, err := g.complete(ctx, tier, system, user, initialMaxTokens, initialTimeout, usage)
		if err != nil {
			logger.Warn("model tier failed, trying next", logger.Fields{
				"model": tier.model, "error": err.Error(),
			})
			lastErr = err
			continue
		}
		parsed := ParseModelJSON(raw)
		if body, _ := extractBody(parsed, raw); body != "" {
			return parsed, raw, tier.model, nil
		}
		logger.Warn("model response carried no article body, trying next tier", logger.Fields{
			"model": tier.model,
		})
		lastParsed, lastRaw, lastModel = parsed, raw, tier.model
	}
	if lastModel != "" {
		report.AddWarning("no model tier produced an article body")
		return lastParsed, lastRaw, lastModel, nil
	}
	if lastErr == nil {
		lastErr = llm.ErrNotConfigured
	}
	return nil, "", "", lastErr
}

// modelTiers returns the configured providers in fallback order.
func (g *Generator) modelTiers() []modelTier {
	tiers := make([]modelTier, 0, 2)
	if g.primary != nil {
		tiers = append(tiers, modelTier{provider: g.primary, model: g.primaryModel})
	}
	if g.fallback != nil {
		tiers = append(tiers, modelTier{provider: g.fallback, model: g.fallbackModel})
	}
	return tiers
}

// complete runs a single model call against one tier and accumulates usage.
// A truncated response is still returned; the caller decides whether the
// content is usable.
func (g *Generator) complete(ctx context.Context, tier modelTier, system, user string, maxTokens int64, timeout time.Duration, usage *Usage) (string, error) {
	completion, err := tier.provider.Complete(ctx, &llm.CompletionRequest{
		Model:        tier.model,
		SystemPrompt: system,
		UserPrompt:   user,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
		Timeout:      timeout,
	})
	if err != nil {
		return "", err
	}
	usage.Add(completion.InputTokens, completion.OutputTokens)
	if completion.Truncated() {
		logger.Warn("completion hit the token limit", logger.Fields{
			"model": tier.model, "output_tokens": completion.OutputTokens,
		})
	}
	return completion.Content, nil
}

// minimalResult is the totality floor: a deterministic result built purely
// from the request, with every required field populated.
func (g *Generator) minimalResult(req *GenerationRequest, city string) *GenerationResult {
	title := fmt.Sprintf("%s - %s", titleCase(strings.ToLower(req.Keyword)), req.CompanyName)
	result := &GenerationResult{
		Title:     title,
		H1:        title,
		MetaTitle: truncate(title, metaTitleMax),
		Body:      "<p>Content generation failed. Please try again.</p>",
		FAQItems:  []FAQItem{},
		CTA: CTA{
			CompanyName: req.CompanyName,
			Phone:       req.Phone,
			Email:       req.Email,
		},
	}
	fixMetaDescription(result, req, city)
	result.Schema = SynthesizeSchema(result, req, city, g.now())
	result.WordCount = CountWords(result.Body)
	return result
}
