package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgkim/tradelens/internal/engine"
	"github.com/sgkim/tradelens/internal/ingest"
	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/database"
	"github.com/sgkim/tradelens/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Analyze a trade-history CSV",
	Long: `Computes the full analytics report for a local CSV file and
prints a summary. By default nothing is persisted.

Example:
  go run ./cmd/tradelens analyze trades.csv
  go run ./cmd/tradelens analyze trades.csv --json
  go run ./cmd/tradelens analyze trades.csv --save`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeJSON bool
	analyzeSave bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the report to the database")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	trades, err := ingest.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	analyzer := engine.NewAnalyzer(log)
	rep := analyzer.Analyze(trades, filepath.Base(path))

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	printReportSummary(rep)

	if analyzeSave {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := report.NewRepository(db.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}

		id, err := repo.Save(ctx, rep)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Println()
		PrintSuccess(fmt.Sprintf("Report saved: %s", id))
	}

	return nil
}

func printReportSummary(rep *report.Report) {
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", rep.Header.Strategy)
	PrintSeparator()
	PrintKeyValue("Asset", rep.Header.Asset, 14)
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s", rep.Header.DateStart, rep.Header.DateEnd), 14)
	PrintKeyValue("Trades", fmt.Sprintf("%d", rep.Header.TradeCount), 14)
	PrintSeparator()
	PrintKeyValue("Final balance", fmt.Sprintf("%.2f", rep.Metrics.FinalBalance), 14)
	PrintKeyValue("Total return", rep.Metrics.TotalReturn+"%", 14)
	PrintKeyValue("Max drawdown", rep.Metrics.MaxDrawdown+"%", 14)
	PrintKeyValue("Win rate", rep.InstitutionalMetrics.WinRate+"%", 14)
	PrintKeyValue("Profit factor", rep.InstitutionalMetrics.ProfitFactor, 14)
	PrintKeyValue("Sharpe", rep.InstitutionalMetrics.SharpeRatio, 14)
	PrintKeyValue("Sortino", rep.InstitutionalMetrics.SortinoRatio, 14)
	PrintKeyValue("Expectancy", rep.InstitutionalMetrics.Expectancy, 14)
	PrintSeparator()

	passed := 0
	for _, c := range rep.Certification {
		if c.Pass {
			passed++
		}
	}
	PrintKeyValue("Certification", fmt.Sprintf("%d/%d checks passed", passed, len(rep.Certification)), 14)
	PrintKeyValue("Score", fmt.Sprintf("%.2f (%s)", rep.Scores.Overall, rep.Scores.Grade), 14)
	PrintDoubleSeparator()
}
