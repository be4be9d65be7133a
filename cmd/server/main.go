package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/events"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/router"
	"github.com/ikkim/storerating-backend/internal/scheduler"
	"github.com/ikkim/storerating-backend/internal/storage"
	"github.com/ikkim/storerating-backend/internal/websocket"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"github.com/ikkim/storerating-backend/pkg/rabbitmq"
	"github.com/ikkim/storerating-backend/pkg/redis"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting store rating server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if _, err := db.SeedAdmin(database, cfg.Admin); err != nil {
		logger.Warn("Failed to seed admin account", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Optional infrastructure
	var tokenStore *redis.TokenStore
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		tokenStore = redis.NewTokenStore(client)
		defer tokenStore.Close()
	} else {
		logger.Warn("Redis disabled, logout will not revoke tokens")
	}

	hub := websocket.NewHub()
	publishers := []events.Publisher{hub}
	if cfg.AMQP.URL != "" {
		broker, err := rabbitmq.NewPublisher(rabbitmq.Config{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		})
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", err)
		}
		defer broker.Close()
		publishers = append(publishers, events.NewBrokerPublisher(broker))
	}
	publisher := events.NewFanout(publishers...)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	appMetrics := metrics.NewAppMetrics(registry)
	cronMetrics := metrics.NewCronJobMetrics(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	storeRepo := repository.NewStoreRepository(database)
	ratingRepo := repository.NewRatingRepository(database)

	// Initialize services
	tokens := util.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry)
	var revoker service.TokenRevoker
	var revocations middleware.RevocationChecker
	if tokenStore != nil {
		revoker = tokenStore
		revocations = tokenStore
	}

	authService := service.NewAuthService(userRepo, tokens, revoker, cfg.Auth.AllowAdminSignup)
	userService := service.NewUserService(userRepo)
	storeService := service.NewStoreService(storeRepo, userRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, storeService, publisher, appMetrics)
	dashboardService := service.NewDashboardService(userRepo, storeRepo, ratingRepo)

	// Initialize controllers
	controller.RegisterValidators()
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService, authService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService, storeService, hub, cfg.CORS.AllowedOrigins)
	dashboardController := controller.NewDashboardController(dashboardService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens, revocations)
	rateLimiter := middleware.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst)

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		storeController,
		ratingController,
		dashboardController,
		authMiddleware,
		rateLimiter,
		httpMetrics,
		registry,
		func() error { return db.Ping(database) },
		cfg,
	)
	engine := r.Setup()

	// Scheduled jobs
	jobs := scheduler.New(cronMetrics)
	if cfg.Scheduler.Enabled {
		if err := jobs.Register(scheduler.PlatformStatsJob, cfg.Scheduler.StatsSpec,
			scheduler.PlatformStats(dashboardService, appMetrics)); err != nil {
			logger.Fatal("Failed to register job", err, map[string]interface{}{"job": scheduler.PlatformStatsJob})
		}
		if cfg.S3.Enabled() {
			uploader := storage.NewS3Storage(context.Background(), cfg.S3)
			if err := jobs.Register(scheduler.StoresReportJob, cfg.Scheduler.ReportSpec,
				scheduler.StoresReport(storeService, uploader, nil)); err != nil {
				logger.Fatal("Failed to register job", err, map[string]interface{}{"job": scheduler.StoresReportJob})
			}
		} else {
			logger.Info("S3 bucket not configured, stores report job disabled")
		}
		jobs.Start()

		if err := jobs.RunNow(context.Background(), scheduler.PlatformStatsJob); err != nil {
			logger.Warn("Initial platform stats refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := rateLimiter.Cleanup(); removed > 0 {
					logger.Debug("Pruned idle rate limiters", map[string]interface{}{"removed": removed})
				}
			case <-cleanupDone:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	close(cleanupDone)
	jobs.Stop()
	hub.Shutdown()

	logger.Info("Server stopped successfully")
}
