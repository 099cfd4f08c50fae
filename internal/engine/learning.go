package engine

import (
	"math"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
)

const (
	learningWinRateGain    = 3.0   // win-rate points
	learningPnLGain        = 5.0   // dollars per trade
	learningConfidenceGain = 0.005 // fraction
	learningAdjWithConf    = 0.05  // cumulative |adjustment| paired with confidence gain
	learningAdjAlone       = 0.1   // cumulative |adjustment| sufficient alone
	confidenceTrendBand    = 0.01  // fraction; +/- band for "stable"
)

// ComputeLearning compares the first and last chronological thirds of
// the trade history for signs of adaptive learning. Only meaningful
// when at least one trade carries Bayesian confidence data.
func ComputeLearning(trades []trade.Record) report.LearningAnalysis {
	var a report.LearningAnalysis

	for _, t := range trades {
		if t.HasBayesianConfidence {
			a.HasBayesianData = true
		}
		if t.HasBayesianAdjustment {
			a.CumulativeAdjustment += math.Abs(t.CombinedBayesianAdjustment)
		}
	}
	a.ConfidenceTrend = "stable"

	ordered := sortChronological(trades)
	third := len(ordered) / 3
	if third == 0 {
		a.CumulativeAdjustment = report.Round2(a.CumulativeAdjustment)
		return a
	}

	early := ordered[:third]
	late := ordered[len(ordered)-third:]

	a.EarlyWinRate, a.EarlyAvgPnL, a.EarlyConfidence = segmentStats(early)
	a.LateWinRate, a.LateAvgPnL, a.LateConfidence = segmentStats(late)

	a.WinRateImprovement = a.LateWinRate - a.EarlyWinRate
	a.PnLImprovement = a.LateAvgPnL - a.EarlyAvgPnL
	a.ConfidenceImprovement = a.LateConfidence - a.EarlyConfidence

	if a.ConfidenceImprovement > confidenceTrendBand {
		a.ConfidenceTrend = "increasing"
	} else if a.ConfidenceImprovement < -confidenceTrendBand {
		a.ConfidenceTrend = "decreasing"
	}

	if a.HasBayesianData {
		a.LearningDetected = a.WinRateImprovement >= learningWinRateGain ||
			a.PnLImprovement >= learningPnLGain ||
			(a.ConfidenceImprovement > learningConfidenceGain && a.CumulativeAdjustment > learningAdjWithConf) ||
			a.CumulativeAdjustment > learningAdjAlone
	}

	a.EarlyWinRate = report.Round2(a.EarlyWinRate)
	a.LateWinRate = report.Round2(a.LateWinRate)
	a.WinRateImprovement = report.Round2(a.WinRateImprovement)
	a.EarlyAvgPnL = report.Round2(a.EarlyAvgPnL)
	a.LateAvgPnL = report.Round2(a.LateAvgPnL)
	a.PnLImprovement = report.Round2(a.PnLImprovement)
	a.CumulativeAdjustment = report.Round2(a.CumulativeAdjustment)

	return a
}

// segmentStats returns win rate (percent), average PnL and average
// effective confidence (fraction) for a segment.
func segmentStats(segment []trade.Record) (winRate, avgPnL, avgConfidence float64) {
	if len(segment) == 0 {
		return 0, 0, 0
	}

	var wins int
	var pnlSum, confSum float64
	for _, t := range segment {
		if t.IsWin() {
			wins++
		}
		pnlSum += t.PnL
		confSum += t.EffectiveConfidence()
	}

	n := float64(len(segment))
	return float64(wins) / n * 100, pnlSum / n, confSum / n
}
