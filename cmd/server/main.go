package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/api"
	"github.com/Schless09/Fore-cast-sub001/internal/api/middleware"
	"github.com/Schless09/Fore-cast-sub001/internal/providers"
	"github.com/Schless09/Fore-cast-sub001/internal/services"
	"github.com/Schless09/Fore-cast-sub001/pkg/config"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	snapshotCache := services.NewSnapshotCache(cacheService, cfg.SnapshotTTL, logger)

	var provider providers.LeaderboardProvider
	switch cfg.Provider {
	case "espn":
		logger.Info("Using ESPN leaderboard provider")
		provider = providers.NewESPNGolfClient(logger)
	default:
		if cfg.LiveGolfAPIKey == "" {
			logger.Warn("No LiveGolf API key configured, falling back to ESPN provider")
			provider = providers.NewESPNGolfClient(logger)
		} else {
			logger.Info("Using LiveGolf leaderboard provider")
			provider = providers.NewLiveGolfClient(cfg.LiveGolfAPIKey, logger)
		}
	}

	winnings := services.NewWinningsPropagator(db, logger)
	syncService := services.NewSyncService(
		db, provider, snapshotCache, cacheService, winnings, logger,
		cfg.SyncBatchSize, cfg.UnrosteredCap,
	)

	// Start the background sync loop
	if cfg.EnableScheduler {
		scheduler := services.NewSchedulerService(db, syncService, logger, cfg.SyncInterval)
		if err := scheduler.Start(); err != nil {
			logrus.Errorf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, redisClient, cacheService, snapshotCache, syncService, cfg, logger)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
