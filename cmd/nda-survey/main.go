package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/intecsystems/nda-survey/internal/api"
	"github.com/intecsystems/nda-survey/internal/auth"
	"github.com/intecsystems/nda-survey/internal/cleanup"
	"github.com/intecsystems/nda-survey/internal/config"
	"github.com/intecsystems/nda-survey/internal/metrics"
	"github.com/intecsystems/nda-survey/internal/questionnaire"
	"github.com/intecsystems/nda-survey/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting nda-survey",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize the survey repository
	var repo storage.Repository
	switch cfg.Database.Driver {
	case "memory":
		slog.Warn("using in-memory storage, submissions will not survive restarts")
		repo = storage.NewMemoryRepository()
	default:
		migrationsDir := cfg.Database.MigrationsDir
		if migrationsDir == "" {
			migrationsDir = "embedded"
		}
		slog.Info("running database migrations", "dir", migrationsDir)
		if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pg, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected successfully")
		repo = pg
	}

	// Redis backs admin sessions and the API rate limit. When it is
	// unreachable both fall back to process-local behaviour.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var sessions auth.SessionStore
	var rateLimiter *api.RateLimiter
	if err := redisClient.Ping(initCtx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory sessions and no rate limit", "error", err)
		sessions = auth.NewMemorySessionStore()
	} else {
		sessions = auth.NewRedisSessionStore(redisClient)
		if cfg.RateLimit.Enabled {
			rateLimiter = api.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		// Ephemeral secret: admin tokens will not survive a restart
		jwtSecret = uuid.NewString()
		slog.Warn("AUTH_JWT_SECRET not set, generated an ephemeral secret")
	}
	authService := auth.NewService(repo, sessions, jwtSecret, cfg.Auth.TokenTTL)

	// Load questionnaire definitions
	loader := questionnaire.NewLoader()
	if err := loader.LoadFromDir(cfg.Questionnaires.Dir); err != nil {
		slog.Warn("failed to load questionnaires from dir", "dir", cfg.Questionnaires.Dir, "error", err)
	}
	if loader.Get(cfg.Questionnaires.Default) == nil {
		slog.Info("registering built-in questionnaire", "name", cfg.Questionnaires.Default)
		loader.Add(questionnaire.Default())
	}

	// Initialize cleanup worker
	cleaner := cleanup.NewCleaner(repo, cfg.Cleanup.Interval, cfg.Cleanup.DraftRetention)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, repo, loader, authService, metrics.New(), rateLimiter)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("nda-survey stopped")
}
