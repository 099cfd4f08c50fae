package engine

import (
	"math"
	"sort"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
)

// consecutiveLossThresholdPercent is the fixed stress threshold for the
// worst loss streak against starting balance.
const consecutiveLossThresholdPercent = 20.0

// RiskAnalysis groups tail-loss, benchmark-relative and recovery
// statistics over per-trade percentage returns.
type RiskAnalysis struct {
	VaR95            float64
	CVaR95           float64
	InformationRatio float64

	AvgRecoveryTrades     float64
	LongestRecoveryTrades int
	RecoveryPeriods       int

	Stress report.ConsecutiveLossStress
}

// ComputeRisk derives the risk metric group from the trade set and
// equity series.
func ComputeRisk(trades []trade.Record, eq *EquitySeries) RiskAnalysis {
	var r RiskAnalysis

	returns := percentReturns(trades)
	r.VaR95, r.CVaR95 = historicalVaR(returns)
	r.InformationRatio = informationRatio(returns)
	r.AvgRecoveryTrades, r.LongestRecoveryTrades, r.RecoveryPeriods = recoveryPeriods(eq)
	r.Stress = consecutiveLossStress(trades, eq.StartingBalance)

	return r
}

func percentReturns(trades []trade.Record) []float64 {
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.Return() * 100
	}
	return returns
}

// historicalVaR sorts percentage returns ascending and reads the
// 5th-percentile index; CVaR-95 is the mean of the tail at or below
// that index.
func historicalVaR(returns []float64) (var95, cvar95 float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * 0.05))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	var95 = sorted[idx]

	var sum float64
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
	}
	cvar95 = sum / float64(idx+1)

	return var95, cvar95
}

// informationRatio is the mean per-trade return over its population
// standard deviation (zero-benchmark tracking error).
func informationRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sumSq float64
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	trackingError := math.Sqrt(sumSq / float64(len(returns)))

	if trackingError == 0 {
		return 0
	}
	return mean / trackingError
}

// recoveryPeriods counts consecutive trades spent below the running
// peak. A period closes when the balance returns to the peak; an open
// drawdown at the end of the series is not accumulated.
func recoveryPeriods(eq *EquitySeries) (avg float64, longest, periods int) {
	var current, totalLength int

	for i := range eq.Balances {
		if eq.Drawdowns[i] > 0 {
			current++
			continue
		}
		if current > 0 {
			periods++
			totalLength += current
			if current > longest {
				longest = current
			}
			current = 0
		}
	}

	if periods > 0 {
		avg = float64(totalLength) / float64(periods)
	}
	return avg, longest, periods
}

// consecutiveLossStress measures the longest loss streak and its
// cumulative dollar loss against the starting balance. Ties on length
// keep the deeper loss.
func consecutiveLossStress(trades []trade.Record, startingBalance float64) report.ConsecutiveLossStress {
	var maxStreak int
	var maxStreakLoss float64
	var curStreak int
	var curLoss float64

	for _, t := range trades {
		if t.IsWin() {
			curStreak = 0
			curLoss = 0
			continue
		}
		curStreak++
		curLoss += t.PnL
		if curStreak > maxStreak || (curStreak == maxStreak && curLoss < maxStreakLoss) {
			maxStreak = curStreak
			maxStreakLoss = curLoss
		}
	}

	var lossPercent float64
	if startingBalance > 0 && maxStreakLoss < 0 {
		lossPercent = -maxStreakLoss / startingBalance * 100
	}

	return report.ConsecutiveLossStress{
		MaxConsecutiveLosses: maxStreak,
		StreakLoss:           report.Round2(maxStreakLoss),
		LossPercent:          report.Round2(lossPercent),
		ThresholdPercent:     consecutiveLossThresholdPercent,
		Pass:                 lossPercent <= consecutiveLossThresholdPercent,
	}
}
