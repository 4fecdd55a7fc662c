package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/empowrhq/leadflow/config"
	"github.com/empowrhq/leadflow/pkg/ai/llm"
	"github.com/empowrhq/leadflow/pkg/api/handlers"
	custommw "github.com/empowrhq/leadflow/pkg/api/middleware"
	"github.com/empowrhq/leadflow/pkg/auth"
	"github.com/empowrhq/leadflow/pkg/cache"
	"github.com/empowrhq/leadflow/pkg/database"
	"github.com/empowrhq/leadflow/pkg/enrichment"
	"github.com/empowrhq/leadflow/pkg/jobs"
	"github.com/empowrhq/leadflow/pkg/lemlist"
	"github.com/empowrhq/leadflow/pkg/logger"
	"github.com/empowrhq/leadflow/pkg/metrics"
	custommiddleware "github.com/empowrhq/leadflow/pkg/middleware"
	"github.com/empowrhq/leadflow/pkg/store"
	"github.com/empowrhq/leadflow/pkg/webhook"
)

// CustomValidator adapts go-playground/validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	webhookRateLimiter := custommiddleware.NewRateLimiter(120, 20) // enrichment callbacks may burst

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // Repanic after capturing to let the Recover middleware handle it
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	// CORS with restricted origins
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.FrontendURL)))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{}))

	// Global rate limiting
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "LeadFlow API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		// Check database connection
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		// Check Redis connection
		if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize JWT blacklist
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Initialize stores
	leadStore := store.NewLeadRepository(db.DB)
	companyStore := store.NewCompanyRepository(db.DB)
	campaignStore := store.NewCampaignRepository(db.DB)
	connectionStore := store.NewConnectionRepository(db.DB)

	// Optional LLM likelihood scorer
	var scorer enrichment.LikelihoodScorer
	if cfg.OpenAIAPIKey != "" {
		scorer = llm.NewScorer(llm.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		}, appLogger)
		log.Printf("✅ Likelihood scorer enabled (model: %s)", cfg.OpenAIModel)
	} else {
		log.Printf("ℹ️  Likelihood scorer disabled (no OpenAI key configured)")
	}

	// Initialize enrichment pipeline
	webhookClient := webhook.NewClient(cfg.WebhookURL, cfg.WebhookSecret)
	writer := enrichment.NewWriter(leadStore, companyStore, scorer, appLogger)
	writer.SetRecorder(prometheusMetrics)
	orchestrator := enrichment.NewOrchestrator(
		leadStore,
		companyStore,
		webhookClient,
		float64(cfg.EnrichmentTriggersPerSec),
		cfg.EnrichmentMaxBatch,
		appLogger,
	)
	orchestrator.SetRecorder(prometheusMetrics)
	log.Printf("✅ Enrichment pipeline initialized (max batch: %d, pace: %d/s)", cfg.EnrichmentMaxBatch, cfg.EnrichmentTriggersPerSec)

	// Initialize lemlist sync
	lemlistClient := lemlist.NewAPIClient(cfg.LemlistBaseURL)
	syncService := lemlist.NewSyncService(lemlistClient, leadStore, campaignStore, connectionStore, appLogger)
	syncService.SetRecorder(prometheusMetrics)

	// Initialize refresh poller
	poller := jobs.NewRefreshPoller(orchestrator, cfg.RefreshSchedule, log.Default())
	if cfg.RefreshEnabled {
		if err := poller.Setup(); err != nil {
			log.Fatalf("❌ Failed to setup refresh poller: %v", err)
		}
		poller.Start()
	} else {
		log.Printf("ℹ️  Refresh poller disabled (REFRESH_ENABLED=false)")
	}

	// Initialize handlers
	enrichmentHandler := handlers.NewEnrichmentHandler(writer, orchestrator, leadStore, redisClient, cfg.WebhookSecret)
	syncHandler := handlers.NewSyncHandler(syncService)
	leadsHandler := handlers.NewLeadsHandler(leadStore)

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	// Enrichment callback (public, signature-verified, higher rate limit)
	v1.POST("/enrich-lead", enrichmentHandler.EnrichLead, webhookRateLimiter.RateLimitMiddleware())

	// Protected routes (require JWT with blacklist validation)
	protected := v1.Group("")
	protected.Use(custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist))
	{
		protected.POST("/trigger-enrichment-batch", enrichmentHandler.TriggerBatch)

		lemlistGroup := protected.Group("/lemlist")
		{
			lemlistGroup.GET("/sync/campaign/:campaignId", syncHandler.SyncCampaign)
			lemlistGroup.POST("/sync/lead", syncHandler.SyncLead)
		}

		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.POST("", leadsHandler.Create)
			leadsGroup.GET("/:id", leadsHandler.GetByID)
		}

		enrichmentGroup := protected.Group("/enrichment")
		{
			enrichmentGroup.GET("/stats", enrichmentHandler.Stats)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 LeadFlow API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	if cfg.RefreshEnabled {
		log.Printf("⏰ Refresh poller: %s", cfg.RefreshSchedule)
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop the refresh poller
	if cfg.RefreshEnabled {
		poller.Stop()
		log.Println("✅ Refresh poller stopped")
	}

	// Gracefully shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
