package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seoscribe/seoscribe-api/internal/api/handlers"
	apimiddleware "github.com/seoscribe/seoscribe-api/internal/api/middleware"
	"github.com/seoscribe/seoscribe-api/internal/blog"
	"github.com/seoscribe/seoscribe-api/internal/config"
	"github.com/seoscribe/seoscribe-api/internal/llm"
	"github.com/seoscribe/seoscribe-api/internal/logger"
	"github.com/seoscribe/seoscribe-api/internal/metrics"
	"github.com/seoscribe/seoscribe-api/internal/observability"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{"version": version})
	})

	generator := buildGenerator(cfg, db)

	// API routes v1
	v1 := router.Group("/api/v1")
	{
		contentHandler := handlers.NewContentHandler(generator, db)
		v1.POST("/content/generations", contentHandler.Generate)
		v1.GET("/content/posts", contentHandler.ListPosts)
		v1.GET("/content/posts/:id", contentHandler.GetPost)
	}

	return router
}

// buildGenerator wires the model providers, shared throttle, and usage
// observer into one pipeline instance shared by all requests.
func buildGenerator(cfg *config.Config, db *gorm.DB) *blog.Generator {
	ctx := context.Background()
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)

	primary, err := factory.GetProvider(ctx, cfg.PrimaryModel)
	if err != nil {
		logger.Warn("primary model provider unavailable", logger.Fields{
			"model": cfg.PrimaryModel, "error": err.Error(),
		})
	}
	fallback, err := factory.GetProvider(ctx, cfg.FallbackModel)
	if err != nil {
		logger.Warn("fallback model provider unavailable", logger.Fields{
			"model": cfg.FallbackModel, "error": err.Error(),
		})
	}

	cloudwatchClient, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		logger.Warn("cloudwatch metrics unavailable", logger.Fields{"error": err.Error()})
	}

	return blog.NewGenerator(blog.GeneratorOptions{
		Primary:       primary,
		PrimaryModel:  cfg.PrimaryModel,
		Fallback:      fallback,
		FallbackModel: cfg.FallbackModel,
		Observer:      observability.NewGenerationObserver(db, cloudwatchClient),
	})
}
