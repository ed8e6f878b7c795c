package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KOFI-GYIMAH/github-activity/docs"
	"github.com/KOFI-GYIMAH/github-activity/internal/cache"
	"github.com/KOFI-GYIMAH/github-activity/internal/config"
	"github.com/KOFI-GYIMAH/github-activity/internal/db"
	"github.com/KOFI-GYIMAH/github-activity/internal/github"
	"github.com/KOFI-GYIMAH/github-activity/internal/handler"
	md "github.com/KOFI-GYIMAH/github-activity/internal/middleware"
	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/internal/queue"
	"github.com/KOFI-GYIMAH/github-activity/internal/service"
	"github.com/KOFI-GYIMAH/github-activity/internal/worker"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title GitHub Activity Service
// @version 1.0.0
// @description Recent public commit activity for a GitHub user, cached with ETag revalidation.
// @host localhost:8081
// @BasePath /v1
func main() {
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.LevelDebug)
	}

	// * Load configuration
	cfg, err := config.LoadConfiguration()
	if err != nil {
		logger.Error("‼️ Failed to load config: %v", err)
		os.Exit(1)
	}

	// * Pick the cache store: Postgres when configured, in-memory otherwise
	var store models.KeyValueStore
	if cfg.DBURL != "" {
		database, err := db.NewPostgresDB(cfg.DBURL)
		if err != nil {
			logger.Error("Failed to initialize database: %v", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.Migrate(cfg.MigrationsPath); err != nil {
			logger.Error("Failed to run migrations: %v", err)
			os.Exit(1)
		}
		logger.Info("Successfully ran migrations")
		store = database
	} else {
		logger.Warn("DB_URL not set, cached responses will not survive a restart")
		store = db.NewMemoryDB()
	}

	cacheTTL, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		logger.Error("Invalid cache TTL: %v", err)
		os.Exit(1)
	}

	refreshInterval, err := time.ParseDuration(cfg.RefreshInterval)
	if err == nil && refreshInterval <= 0 {
		err = fmt.Errorf("must be positive, got %s", cfg.RefreshInterval)
	}
	if err != nil {
		logger.Error("Invalid refresh interval: %v", err)
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		location = time.UTC
	}

	// * Initialize GitHub client
	responseCache := cache.New(store, cacheTTL)
	githubClient := github.NewClient(cfg.GitHubToken, responseCache)
	githubClient.SetRefreshOnNotModified(cfg.CacheRefreshOn304)

	// * Create services
	activityService := service.NewActivityService(githubClient, cfg.GitHubUsername, cfg.CommitLimit, cfg.FetchConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// * Create and start worker
	refreshWorker := worker.NewRefreshWorker(activityService, refreshInterval)
	go refreshWorker.Run(ctx)

	// * Create API server
	apiHandler := handler.NewActivityHandler(ctx, activityService, githubClient, location)

	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("Failed to initialize RabbitMQ: %v", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()

		err = rabbitMQ.ConsumeRefreshRequests(ctx, func(ctx context.Context, req queue.RefreshRequest) error {
			if req.Username != cfg.GitHubUsername {
				logger.Warn("ignoring refresh request for %s", req.Username)
				return nil
			}
			refreshWorker.Refresh(ctx)
			return nil
		})
		if err != nil {
			logger.Error("Failed to consume refresh requests: %v", err)
			os.Exit(1)
		}
		apiHandler.SetPublisher(rabbitMQ)
	} else {
		apiHandler.SetRefresher(refreshWorker)
	}

	router := mux.NewRouter()
	router.Use(md.RecoverMiddleware)
	router.Use(md.LoggingMiddleware)
	api := router.PathPrefix("/v1").Subrouter()

	apiHandler.RegisterRoutes(api)
	router.PathPrefix("/v1/swagger/").Handler(httpSwagger.WrapHandler)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("Starting API server on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server error: %v", err)
			os.Exit(1)
		}
	}()

	// * Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
