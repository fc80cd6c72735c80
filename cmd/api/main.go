package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/retailpos-api/internal/application/service"
	"github.com/sangkips/retailpos-api/internal/config"
	"github.com/sangkips/retailpos-api/internal/infrastructure/database"
	"github.com/sangkips/retailpos-api/internal/infrastructure/metrics"
	"github.com/sangkips/retailpos-api/internal/infrastructure/repository"
	"github.com/sangkips/retailpos-api/internal/jobs"
	"github.com/sangkips/retailpos-api/internal/presentation/http/handler"
	"github.com/sangkips/retailpos-api/internal/presentation/http/routes"
	"github.com/sangkips/retailpos-api/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	bootLogger, _ := zap.NewProduction()

	// Load configuration
	cfg := config.Load(bootLogger)

	logger, err := newLogger(&cfg.App)
	if err != nil {
		bootLogger.Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to databases
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	if err := database.AutoMigrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	mongoClient, mongoDB, err := database.NewMongoDB(ctx, &cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()
	cartColl := mongoDB.Collection(cfg.Mongo.CartCollection)
	if err := database.EnsureCartIndexes(ctx, cartColl); err != nil {
		logger.Warn("failed to ensure cart indexes", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	cartRepo := repository.NewCartRepository(cartColl)

	if err := database.SeedAdmin(ctx, userRepo, &cfg.Admin, logger); err != nil {
		logger.Warn("failed to seed admin user", zap.Error(err))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, logger)
	itemService := service.NewItemService(itemRepo, logger)
	cartService := service.NewCartService(cartRepo, itemRepo, m, logger)
	saleService := service.NewSaleService(saleRepo, itemRepo, cartRepo, userRepo, m, logger, cfg.App.StoreName)

	handlers := &routes.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Cart: handler.NewCartHandler(cartService),
		Item: handler.NewItemHandler(itemService),
		Sale: handler.NewSaleHandler(saleService),
	}

	router, rateLimiter := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         m,
		Gatherer:        registry,
		Logger:          logger,
	})
	defer rateLimiter.Stop()

	// Maintenance jobs
	if cfg.Jobs.Enabled {
		scheduler := jobs.NewScheduler(m, logger)
		for _, job := range []jobs.Job{
			jobs.IdempotencyCleanup(idempotencyRepo, cfg.Jobs.IdempotencyCleanupEvery),
			jobs.StaleCartSweep(cartService, cfg.Jobs.StaleCartSweepEvery, cfg.Jobs.CartTTL),
		} {
			if err := scheduler.Register(job); err != nil {
				logger.Fatal("failed to schedule job", zap.Error(err))
			}
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds a development logger when debugging and a JSON logger otherwise
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build(zap.Fields(zap.String("service", cfg.Name)))
}
