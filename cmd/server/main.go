package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appbilling "github.com/billing/backend/internal/application/billing"
	apptax "github.com/billing/backend/internal/application/tax"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/tax"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/gateway"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/notify"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/rates"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	invoiceRepo := persistence.NewInvoiceRepository(db.DB)
	paymentRepo := persistence.NewPaymentRepository(db.DB)
	usageRepo := persistence.NewUsageRecordRepository(db.DB)

	// Exchange-rate source: file snapshot, optionally fronted by Redis
	// so a fleet of instances serves one consistent table
	var rateSource apptax.RateSource
	snapshotProvider := rates.NewSnapshotProvider(cfg.Rates.SnapshotPath, log)
	rateSource = snapshotProvider
	if cfg.Rates.CacheEnabled {
		cachedSource := rates.NewCachedSource(snapshotProvider, cfg.Redis, cfg.Rates.CacheTTL, log)
		defer func() {
			if err := cachedSource.Close(); err != nil {
				log.Error("Error closing rate cache", zap.Error(err))
			}
		}()
		rateSource = cachedSource
		log.Info("Rate snapshot cache enabled", zap.Duration("ttl", cfg.Rates.CacheTTL))
	}

	// Budget alert publisher (Redis pub/sub)
	alertPublisher := notify.NewRedisAlertPublisher(cfg.Redis, log)
	defer func() {
		if err := alertPublisher.Close(); err != nil {
			log.Error("Error closing alert publisher", zap.Error(err))
		}
	}()

	// Tax engine configuration
	engineConfig := tax.EngineConfig{
		ThirdPartyEnabled: cfg.Tax.ThirdPartyEnabled,
		DefaultRate:       decimal.NewFromFloat(cfg.Tax.DefaultRatePct),
		ManualRates:       make(map[string]decimal.Decimal, len(cfg.Tax.ManualRatesPct)),
	}
	for jurisdiction, pct := range cfg.Tax.ManualRatesPct {
		engineConfig.ManualRates[jurisdiction] = decimal.NewFromFloat(pct)
	}

	// Initialize application services
	reportService := apptax.NewReportService(invoiceRepo, paymentRepo, rateSource, log)
	usageService := appbilling.NewUsageReportingService(usageRepo, log, appbilling.UsageReportingServiceConfig{
		Thresholds: billing.Thresholds{
			WarningPercent:  cfg.Quota.WarningPercent,
			CriticalPercent: cfg.Quota.CriticalPercent,
			ExceededPercent: cfg.Quota.ExceededPercent,
		},
	})
	alertService := appbilling.NewBudgetAlertService(usageRepo, alertPublisher, log)

	// Initialize HTTP handlers
	taxReportHandler := handler.NewTaxReportHandler(reportService, engineConfig, currency.Code(cfg.Tax.ReportingCurrency))
	usageHandler := handler.NewUsageHandler(usageService, alertService)
	currencyHandler := handler.NewCurrencyHandler(rateSource)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding rules
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(taxReportHandler).
		Register(usageHandler).
		Register(currencyHandler).
		Register(systemHandler)

	// Provider sync is only mounted when a Stripe key is configured;
	// without one the platform runs on records already in storage
	if cfg.Stripe.APIKey != "" {
		stripeAdapter, err := gateway.NewStripeAdapter(&gateway.StripeConfig{
			SecretKey:     cfg.Stripe.APIKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			IsTestMode:    !strings.HasPrefix(cfg.Stripe.APIKey, "sk_live"),
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
		}
		ingestionService := appbilling.NewIngestionService(stripeAdapter, invoiceRepo, paymentRepo, log)
		r.Register(handler.NewBillingSyncHandler(ingestionService))
		log.Info("Stripe billing sync enabled")
	} else {
		log.Warn("No Stripe API key configured, billing sync disabled")
	}

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
