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

	"github.com/hoopmetrics/shot-predictor/internal/api"
	"github.com/hoopmetrics/shot-predictor/internal/api/middleware"
	"github.com/hoopmetrics/shot-predictor/internal/inference"
	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/internal/store"
	"github.com/hoopmetrics/shot-predictor/pkg/config"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logger.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis. A missing cache degrades to database-only reads
	// rather than preventing startup.
	cache := newCache(cfg, logger)

	// Load the shot model
	predictor, err := inference.NewService(cfg.ModelPath, cfg.ModelURL, cfg.ModelTimeout, cfg.CircuitBreakerThreshold, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize prediction service: %v", err)
	}

	// Initialize services
	stats := services.NewStatsService(store.NewStore(db), cache, logger)

	var prefetch *services.PrefetchService
	if cfg.EnablePrefetch {
		interval, err := time.ParseDuration(cfg.PrefetchInterval)
		if err != nil {
			logrus.Warnf("Invalid prefetch interval, using default 10m: %v", err)
			interval = 10 * time.Minute
		}
		prefetch = services.NewPrefetchService(stats, logger, interval, cfg.PrefetchTopPlayers)
		if err := prefetch.Start(); err != nil {
			logrus.Errorf("Failed to start prefetch service: %v", err)
		} else {
			defer prefetch.Stop()
		}
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	// Liveness probe outside the rate-limited API group
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Setup API routes under /api
	apiGroup := router.Group("/api")
	apiGroup.Use(limiter.Middleware())
	api.SetupRoutes(apiGroup, db, stats, predictor, cfg, logger)

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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// newCache connects to Redis when it is reachable, otherwise falls back to
// a no-op cache so every request reads straight from the database.
func newCache(cfg *config.Config, logger *logrus.Logger) services.CacheProvider {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warnf("Invalid Redis URL, running without cache: %v", err)
		return services.NoopCache{}
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("Redis unreachable, running without cache: %v", err)
		client.Close()
		return services.NoopCache{}
	}

	logger.Info("Connected to Redis")
	return services.NewCacheService(client)
}
