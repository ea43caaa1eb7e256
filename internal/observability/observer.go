package observability

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/seoscribe/seoscribe-api/internal/blog"
	"github.com/seoscribe/seoscribe-api/internal/logger"
	"github.com/seoscribe/seoscribe-api/internal/metrics"
	"github.com/seoscribe/seoscribe-api/internal/models"
)

// GenerationObserver fans generation usage out to the usage log table,
// CloudWatch, and Sentry. It satisfies the pipeline's observer interface so
// the pipeline itself never touches these backends.
type GenerationObserver struct {
	db         *gorm.DB
	cloudwatch *metrics.Client
	sentry     *metrics.SentryMetrics
}

func NewGenerationObserver(db *gorm.DB, cw *metrics.Client) *GenerationObserver {
	return &GenerationObserver{
		db:         db,
		cloudwatch: cw,
		sentry:     metrics.NewSentryMetrics(),
	}
}

// RecordGeneration records usage for one finished post generation.
func (o *GenerationObserver) RecordGeneration(ctx context.Context, keyword, model string, usage blog.Usage, duration time.Duration) {
	cost := CalculateCost(model, usage.InputTokens, usage.OutputTokens)

	logger.Info("generation usage", logger.Fields{
		"keyword": keyword, "model": model,
		"total_tokens": usage.TotalTokens, "cost": FormatCost(cost),
		"duration_ms": duration.Milliseconds(),
	})

	if o.db != nil {
		entry := &models.GenerationLog{
			Keyword:      keyword,
			Model:        model,
			TotalTokens:  usage.TotalTokens,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			CostUSD:      cost,
			DurationMS:   int(duration.Milliseconds()),
			RequestID:    requestIDFromContext(ctx),
		}
		if err := o.db.WithContext(ctx).Create(entry).Error; err != nil {
			logger.Error("failed to persist generation log", err, logger.Fields{
				"keyword": keyword, "model": model,
			})
		}
	}

	if o.cloudwatch != nil {
		o.cloudwatch.RecordTokenUsage(model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
		o.cloudwatch.RecordGenerationDuration(duration, true)
	}
	if o.sentry != nil {
		o.sentry.RecordTokenUsage(ctx, model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
		o.sentry.RecordGenerationDuration(ctx, duration, true)
	}
}

type requestIDKey struct{}

// WithRequestID tags a context with the request ID the HTTP layer assigned.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
