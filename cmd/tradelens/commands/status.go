package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/database"
	"github.com/sgkim/tradelens/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check service dependencies",
	Long: `Checks connectivity to PostgreSQL and Redis and prints pool
statistics and stored report counts.

Example:
  go run ./cmd/tradelens status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradeLens Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Database
	fmt.Println("\n🗄️  PostgreSQL")
	PrintSeparator()
	db, err := database.New(cfg)
	if err != nil {
		PrintError(fmt.Sprintf("Connection failed: %v", err))
	} else {
		defer db.Close()

		health, err := db.HealthCheck(ctx)
		if err != nil {
			PrintError(fmt.Sprintf("Health check failed: %v", err))
		} else {
			PrintSuccess(fmt.Sprintf("Healthy (ping %v)", health.ResponseTime))
			PrintKeyValue("Total conns", fmt.Sprintf("%d", health.Stats.TotalConns), 12)
			PrintKeyValue("Idle conns", fmt.Sprintf("%d", health.Stats.IdleConns), 12)
			PrintKeyValue("Max conns", fmt.Sprintf("%d", health.Stats.MaxConns), 12)

			var reports int64
			if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&reports); err == nil {
				PrintKeyValue("Reports", fmt.Sprintf("%d", reports), 12)
			}
		}
	}

	// Redis
	fmt.Println("\n⚡ Redis")
	PrintSeparator()
	if !cfg.Redis.Enabled {
		PrintInfo("Disabled (caching and shared rate limiting off)")
		return nil
	}

	rc, err := redis.New(cfg)
	if err != nil {
		PrintError(fmt.Sprintf("Connection failed: %v", err))
		return nil
	}
	defer rc.Close()

	if err := rc.Ping(ctx); err != nil {
		PrintError(fmt.Sprintf("Ping failed: %v", err))
	} else {
		PrintSuccess(fmt.Sprintf("Healthy (%s:%s)", cfg.Redis.Host, cfg.Redis.Port))
	}

	return nil
}
