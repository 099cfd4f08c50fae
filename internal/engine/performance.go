package engine

import (
	"math"

	"github.com/sgkim/tradelens/internal/trade"
)

// annualizationFactor annualizes per-trade return ratios as if trades
// were daily bars. Intentionally not time-aware: the report must match
// the source tool's numbers.
var annualizationFactor = math.Sqrt(252)

// PerformanceMetrics holds the core scalar metrics. Diverging ratios
// carry +Inf; formatting to the display sentinel happens at report
// assembly.
type PerformanceMetrics struct {
	WinRate       float64
	LossRate      float64
	WinningTrades int
	LosingTrades  int

	TotalWinPnL  float64
	TotalLossPnL float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64
	Expectancy   float64

	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64

	TotalReturnPercent float64
	TotalPnL           float64
	Kelly              float64 // fraction; displayed as percent
	RecoveryFactor     float64

	MaxWinStreak  int
	MaxLossStreak int

	AvgRisk     float64
	AvgLeverage float64
	BestTrade   float64
	WorstTrade  float64
}

// ComputePerformance derives the core performance metrics from the
// trade set and its equity series. Pure; no shared state.
func ComputePerformance(trades []trade.Record, eq *EquitySeries) PerformanceMetrics {
	var m PerformanceMetrics
	total := len(trades)

	for _, t := range trades {
		m.TotalPnL += t.PnL
		if t.IsWin() {
			m.WinningTrades++
			m.TotalWinPnL += t.PnL
		} else if t.Result == trade.ResultLoss {
			m.LosingTrades++
			m.TotalLossPnL += t.PnL
		}
	}

	if total > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(total) * 100
		// Any literal other than WIN counts against the win rate
		m.LossRate = 100 - m.WinRate
	}

	if m.WinningTrades > 0 {
		m.AvgWin = m.TotalWinPnL / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = m.TotalLossPnL / float64(m.LosingTrades)
	}

	if m.TotalLossPnL != 0 {
		m.ProfitFactor = math.Abs(m.TotalWinPnL / m.TotalLossPnL)
	} else {
		m.ProfitFactor = math.Inf(1)
	}

	m.Expectancy = m.AvgWin*(m.WinRate/100) + m.AvgLoss*(1-m.WinRate/100)

	m.SharpeRatio, m.SortinoRatio = returnRatios(trades)

	m.TotalReturnPercent = eq.TotalReturnPercent()
	if maxDD := eq.MaxDrawdownPercent(); maxDD > 0 {
		m.CalmarRatio = m.TotalReturnPercent / maxDD
	} else {
		m.CalmarRatio = math.Inf(1)
	}

	// Dollar-space Kelly heuristic, preserved as the source tool
	// computes it, not the classical odds formula.
	if m.WinRate > 0 && m.AvgWin > 0 && m.AvgLoss < 0 {
		m.Kelly = (m.WinRate/100)/math.Abs(m.AvgLoss) - (1-m.WinRate/100)/m.AvgWin
	}

	if maxDDValue := eq.MaxDrawdownValue(); maxDDValue > 0 {
		m.RecoveryFactor = m.TotalPnL / maxDDValue
	} else {
		m.RecoveryFactor = math.Inf(1)
	}

	m.MaxWinStreak, m.MaxLossStreak = streaks(trades)
	m.AvgRisk = avgRisk(trades)
	m.AvgLeverage = avgLeverage(trades)
	m.BestTrade, m.WorstTrade = bestWorst(trades)

	return m
}

// returnRatios computes Sharpe and Sortino over per-trade fractional
// returns. Sharpe uses the sample standard deviation (n-1); Sortino's
// denominator is the RMS of negative returns only, diverging to +Inf
// when no downside exists.
func returnRatios(trades []trade.Record) (sharpe, sortino float64) {
	if len(trades) == 0 {
		return 0, math.Inf(1)
	}

	returns := make([]float64, len(trades))
	var sum float64
	for i, t := range trades {
		returns[i] = t.Return()
		sum += returns[i]
	}
	mean := sum / float64(len(returns))

	if len(returns) > 1 {
		var sumSq float64
		for _, r := range returns {
			diff := r - mean
			sumSq += diff * diff
		}
		if stdDev := math.Sqrt(sumSq / float64(len(returns)-1)); stdDev > 0 {
			sharpe = mean / stdDev * annualizationFactor
		}
	}

	var downsideSq float64
	var downsideCount int
	for _, r := range returns {
		if r < 0 {
			downsideSq += r * r
			downsideCount++
		}
	}

	if downsideCount > 0 {
		downside := math.Sqrt(downsideSq / float64(downsideCount))
		if downside > 0 {
			sortino = mean / downside * annualizationFactor
			return sharpe, sortino
		}
	}
	return sharpe, math.Inf(1)
}

// streaks runs the single forward pass over results. The counter
// resets on result change; any non-WIN literal extends the loss streak.
func streaks(trades []trade.Record) (maxWin, maxLoss int) {
	var curWin, curLoss int
	for _, t := range trades {
		if t.IsWin() {
			curWin++
			curLoss = 0
		} else {
			curLoss++
			curWin = 0
		}
		if curWin > maxWin {
			maxWin = curWin
		}
		if curLoss > maxLoss {
			maxLoss = curLoss
		}
	}
	return maxWin, maxLoss
}

func avgRisk(trades []trade.Record) float64 {
	if len(trades) == 0 {
		return 0
	}
	var sum float64
	for _, t := range trades {
		sum += t.RiskPercentage
	}
	return sum / float64(len(trades))
}

// avgLeverage averages effective leverage over finite values only, so
// a zero balance_before never poisons the mean.
func avgLeverage(trades []trade.Record) float64 {
	var sum float64
	var count int
	for _, t := range trades {
		lev := t.Leverage()
		if math.IsInf(lev, 0) || math.IsNaN(lev) {
			continue
		}
		sum += lev
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func bestWorst(trades []trade.Record) (best, worst float64) {
	if len(trades) == 0 {
		return 0, 0
	}
	best, worst = trades[0].PnL, trades[0].PnL
	for _, t := range trades[1:] {
		if t.PnL > best {
			best = t.PnL
		}
		if t.PnL < worst {
			worst = t.PnL
		}
	}
	return best, worst
}
