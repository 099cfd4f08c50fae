// Package engine computes the full analytics report from a normalized
// trade sequence. Every computation is a pure fold over the input; the
// same trades always produce the same report.
package engine

import (
	"path/filepath"
	"strings"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
	"github.com/sgkim/tradelens/pkg/logger"
)

const (
	defaultAsset    = "XAUUSD"
	unknownStrategy = "Unknown"
	headerDateFmt   = "2006-01-02"
)

// Analyzer runs the metric pipeline over normalized trades.
type Analyzer struct {
	logger *logger.Logger
}

func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{logger: log}
}

// Analyze computes the complete report for one CSV submission. An
// empty trade set yields a report with zeroed metrics rather than an
// error; parse failures are the caller's concern.
func (a *Analyzer) Analyze(trades []trade.Record, fileName string) *report.Report {
	eq := BuildEquitySeries(trades)
	perf := ComputePerformance(trades, eq)
	risk := ComputeRisk(trades, eq)
	sources, highlights := ComputeSignalSources(trades)
	stress := ComputeStressTests(trades, perf)

	riskMetrics := report.RiskMetrics{
		VaR95:                 report.Round2(risk.VaR95),
		CVaR95:                report.Round2(risk.CVaR95),
		InformationRatio:      report.Round2(risk.InformationRatio),
		AvgRecoveryTrades:     report.Round2(risk.AvgRecoveryTrades),
		LongestRecoveryTrades: risk.LongestRecoveryTrades,
		RecoveryPeriods:       risk.RecoveryPeriods,
		ConsecutiveLossStress: risk.Stress,
	}

	r := &report.Report{
		FileName:  fileName,
		Header:    buildHeader(trades, fileName),
		ChartData: eq.ChartData(trades),
		Metrics: report.Metrics{
			FinalBalance: report.Round2(eq.FinalBalance()),
			TotalReturn:  FormatMetric(eq.TotalReturnPercent()),
			MaxDrawdown:  FormatMetric(eq.MaxDrawdownPercent()),
			TotalTrades:  len(trades),
		},
		InstitutionalMetrics: institutionalMetrics(perf, len(trades)),
		RiskMetrics:          riskMetrics,
		Temporal:             ComputeTemporal(trades),
		Patterns:             ComputePatternGroups(trades),
		SignalSources:        sources,
		Highlights:           highlights,
		Regimes:              ComputeRegimes(trades),
		StressTests:          stress,
		Certification:        ComputeCertification(perf, eq, stress),
		Learning:             ComputeLearning(trades),
		Scores:               ComputeScores(perf, risk.VaR95, eq.MaxDrawdownPercent(), trades),
		Trades:               trades,
	}

	if a.logger != nil {
		a.logger.WithFields(map[string]interface{}{
			"file":    fileName,
			"trades":  len(trades),
			"grade":   r.Scores.Grade,
			"overall": r.Scores.Overall,
		}).Info("report computed")
	}

	return r
}

func institutionalMetrics(perf PerformanceMetrics, total int) report.InstitutionalMetrics {
	return report.InstitutionalMetrics{
		WinRate:         FormatMetric(perf.WinRate),
		ProfitFactor:    FormatMetric(perf.ProfitFactor),
		AvgWin:          FormatMetric(perf.AvgWin),
		AvgLoss:         FormatMetric(perf.AvgLoss),
		Expectancy:      FormatMetric(perf.Expectancy),
		SharpeRatio:     FormatMetric(perf.SharpeRatio),
		SortinoRatio:    FormatMetric(perf.SortinoRatio),
		CalmarRatio:     FormatMetric(perf.CalmarRatio),
		RecoveryFactor:  FormatMetric(perf.RecoveryFactor),
		MaxWinStreak:    perf.MaxWinStreak,
		MaxLossStreak:   perf.MaxLossStreak,
		KellyPercentage: FormatMetric(perf.Kelly * 100),
		AvgRisk:         FormatMetric(perf.AvgRisk),
		AvgLeverage:     FormatMetric(perf.AvgLeverage),
		BestTrade:       FormatMetric(perf.BestTrade),
		WorstTrade:      FormatMetric(perf.WorstTrade),
		TotalTrades:     total,
		WinningTrades:   perf.WinningTrades,
		LosingTrades:    perf.LosingTrades,
		TotalPnL:        FormatMetric(perf.TotalPnL),
	}
}

// buildHeader derives the banner metadata: the asset from the first
// trade's extra columns, the strategy from the file name, and the date
// range from the chronologically first and last parsable entry times.
func buildHeader(trades []trade.Record, fileName string) report.Header {
	h := report.Header{
		Asset:      defaultAsset,
		Strategy:   unknownStrategy,
		TradeCount: len(trades),
	}

	if len(trades) > 0 {
		if s := trades[0].Extra["symbol"]; s != "" {
			h.Asset = s
		} else if s := trades[0].Extra["asset"]; s != "" {
			h.Asset = s
		}
	}

	if base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)); base != "" && base != "." {
		h.Strategy = base
	}

	ordered := sortChronological(trades)
	for _, t := range ordered {
		if t.HasEntryTime {
			h.DateStart = t.EntryTime.Format(headerDateFmt)
			break
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].HasEntryTime {
			h.DateEnd = ordered[i].EntryTime.Format(headerDateFmt)
			break
		}
	}

	return h
}
