package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/api"
	"github.com/Techne-Finance/techne-sub000/internal/config"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/refresh"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
	"github.com/Techne-Finance/techne-sub000/internal/resolve"
	"github.com/Techne-Finance/techne-sub000/internal/state"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/defillama"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/verifier"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(cfg.App.LogLevel)

	appLog.Info("🚀 Starting Techne yield dashboard API...")
	appLog.Info("Environment: %s", cfg.App.Environment)

	if cfg.App.Environment == "development" {
		appLog.Debug("Config loaded:\n%s", cfg.SafeString())
	}

	// Database connection
	db, err := repository.InitDatabase(cfg.Database, cfg.App)
	if err != nil {
		appLog.Fatal("❌ Failed to connect to database: %v", err)
	}
	appLog.Info("✅ Database connected")

	defer func() {
		if err := repository.CloseDatabase(db); err != nil {
			appLog.Error("Error closing database: %v", err)
		}
	}()

	if err := repository.AutoMigrate(db); err != nil {
		appLog.Fatal("❌ Failed to migrate database: %v", err)
	}
	appLog.Info("✅ Database migrated")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	agentRepo := repository.NewAgentRepository(db)

	// Initialize Redis (optional for development, required for production)
	redisClient, err := state.NewRedisClient(cfg.Redis)
	if err != nil && cfg.App.Environment == "production" {
		appLog.Fatal("❌ Failed to connect to Redis (required in production): %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		appLog.Info("✅ Redis connected")
	} else {
		appLog.Warn("⚠️ Redis not available - credits and history will not persist")
	}

	stateStore := state.NewStore(redisClient, cfg.Credits.InitialBalance)

	// Upstream clients
	verifierClient := verifier.NewClient(cfg.Upstream.VerifierBaseURL)
	llamaClient := defillama.NewClientWithBaseURL(cfg.Upstream.DefiLlamaBaseURL)

	// Resolver: pair lookup -> onchain verify -> symbol search по кешу
	resolver := resolve.New(verifierClient, poolRepo, appLog)

	// Create API server
	server := api.NewServer(cfg, userRepo, poolRepo, agentRepo, resolver, stateStore, appLog)

	// Refresh service: періодичне оновлення Explore кешу з DeFiLlama
	var scheduler *refresh.Scheduler
	if cfg.Refresh.Enabled {
		refreshService := refresh.NewService(llamaClient, poolRepo, server.Hub(), cfg.Refresh, appLog)

		scheduler = refresh.NewScheduler(refreshService, cfg.Refresh.Schedule, appLog)
		if err := scheduler.Start(); err != nil {
			appLog.Fatal("❌ Failed to start refresh scheduler: %v", err)
		}
		appLog.Info("✅ Refresh scheduler started (%s)", cfg.Refresh.Schedule)

		if cfg.App.Environment == "development" {
			appLog.Info("Running initial pool refresh...")
			if err := scheduler.RunNow(context.Background()); err != nil {
				appLog.Warn("⚠️ Initial pool refresh failed: %v", err)
			}
		}
	}

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLog.Fatal("Failed to start server: %v", err)
		}
	}()

	appLog.Info("✅ API server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("🛑 Shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLog.Fatal("Server forced to shutdown: %v", err)
	}

	appLog.Info("✅ Stopped gracefully")
}
