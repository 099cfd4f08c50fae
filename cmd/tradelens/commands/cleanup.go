package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/database"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old reports",
	Long: `Deletes stored reports older than the retention window. The
same purge runs daily inside the API server; this command triggers it
manually.

Example:
  tradelens cleanup
  tradelens cleanup --days 30
  tradelens cleanup --dry-run`,
	RunE: runCleanup,
}

var (
	cleanupDays   int
	cleanupDryRun bool
)

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (default from config)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "count matching reports without deleting")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Report Cleanup ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	days := cleanupDays
	if days <= 0 {
		days = cfg.Report.RetentionDays
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -days)
	fmt.Printf("📊 Retention window: %d days (cutoff %s)\n", days, cutoff.Format("2006-01-02"))

	var count int64
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM reports WHERE created_at < $1
	`, cutoff).Scan(&count)
	if err != nil {
		return fmt.Errorf("count reports: %w", err)
	}

	if count == 0 {
		PrintSuccess("No reports to clean up")
		return nil
	}

	if cleanupDryRun {
		fmt.Printf("🗑️ Would delete %d reports (dry run)\n", count)
		return nil
	}

	repo := report.NewRepository(db.Pool)
	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete reports: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Deleted %d reports", deleted))
	return nil
}
