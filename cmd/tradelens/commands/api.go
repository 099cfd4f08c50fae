package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgkim/tradelens/internal/api"
	"github.com/sgkim/tradelens/internal/api/handlers"
	"github.com/sgkim/tradelens/internal/engine"
	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/scheduler"
	"github.com/sgkim/tradelens/internal/scheduler/jobs"
	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/database"
	"github.com/sgkim/tradelens/pkg/logger"
	"github.com/sgkim/tradelens/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health             - Health check
  POST /api/reports        - Submit a CSV and compute a report
  GET  /api/reports/{id}   - Retrieve a stored report

Example:
  go run ./cmd/tradelens api
  go run ./cmd/tradelens api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradeLens API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (no-op when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "tradelens")
	limiter := redis.NewRateLimiter(redisClient, "tradelens")

	// 5. Create repository and ensure schema
	repo := report.NewRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureSchema(ctx); err != nil {
		cancel()
		return fmt.Errorf("ensure schema: %w", err)
	}
	cancel()

	// 6. Create analyzer and handler
	analyzer := engine.NewAnalyzer(log)
	reportHandler := handlers.NewReportHandler(analyzer, repo, cache, cfg, log)

	// 7. Create router and server
	router := api.NewRouter(cfg, reportHandler, db, redisClient, limiter, log)
	server := api.New(cfg, log, router)

	// 8. Start the retention scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewRetentionJob(repo, cfg.Report.RetentionDays, log)); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/reports")
	fmt.Println("  GET  /api/reports/{id}")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
