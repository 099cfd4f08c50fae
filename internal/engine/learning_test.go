package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgkim/tradelens/internal/trade"
)

// learningFixture builds n dated trades; results and confidences come
// from the supplied generators so early/late thirds can differ.
func learningFixture(n int, result func(i int) string, conf func(i int) float64) []trade.Record {
	trades := make([]trade.Record, n)
	for i := 0; i < n; i++ {
		tr := mkTrade(result(i), 100, 10000)
		if !tr.IsWin() {
			tr.PnL = -100
			tr.BalanceAfter = tr.BalanceBefore - 100
		}
		tr.TradeID = fmt.Sprintf("T%d", i)
		tr.EntryTimeRaw = fmt.Sprintf("2025-01-%02d 10:00:00", i+1)
		if ts, ok := trade.ParseTime(tr.EntryTimeRaw); ok {
			tr.EntryTime, tr.HasEntryTime = ts, true
		}
		tr.BayesianConfidence = conf(i)
		tr.HasBayesianConfidence = true
		trades[i] = tr
	}
	return trades
}

func TestComputeLearningDetectsImprovement(t *testing.T) {
	// 9 trades: early third all losses, late third all wins,
	// confidence climbing
	trades := learningFixture(9,
		func(i int) string {
			if i < 3 {
				return trade.ResultLoss
			}
			return trade.ResultWin
		},
		func(i int) float64 { return 0.5 + float64(i)*0.02 },
	)

	a := ComputeLearning(trades)
	assert.True(t, a.HasBayesianData)
	assert.Equal(t, 0.0, a.EarlyWinRate)
	assert.Equal(t, 100.0, a.LateWinRate)
	assert.Equal(t, 100.0, a.WinRateImprovement)
	assert.True(t, a.LearningDetected)
	assert.Equal(t, "increasing", a.ConfidenceTrend)
}

func TestComputeLearningStable(t *testing.T) {
	trades := learningFixture(9,
		func(i int) string { return trade.ResultWin },
		func(i int) float64 { return 0.6 },
	)

	a := ComputeLearning(trades)
	assert.Equal(t, "stable", a.ConfidenceTrend)
	assert.Equal(t, 0.0, a.WinRateImprovement)
	assert.False(t, a.LearningDetected)
}

func TestComputeLearningDecreasingConfidence(t *testing.T) {
	trades := learningFixture(9,
		func(i int) string { return trade.ResultWin },
		func(i int) float64 { return 0.9 - float64(i)*0.05 },
	)

	a := ComputeLearning(trades)
	assert.Equal(t, "decreasing", a.ConfidenceTrend)
}

func TestComputeLearningWithoutBayesianData(t *testing.T) {
	// plain-confidence trades never flag learning even when win rate
	// jumps
	trades := learningFixture(9,
		func(i int) string {
			if i < 3 {
				return trade.ResultLoss
			}
			return trade.ResultWin
		},
		func(i int) float64 { return 0.5 },
	)
	for i := range trades {
		trades[i].HasBayesianConfidence = false
		trades[i].Confidence = 0.5
	}

	a := ComputeLearning(trades)
	assert.False(t, a.HasBayesianData)
	assert.False(t, a.LearningDetected)
	assert.Equal(t, 100.0, a.WinRateImprovement)
}

func TestComputeLearningCumulativeAdjustmentAlone(t *testing.T) {
	trades := learningFixture(9,
		func(i int) string { return trade.ResultWin },
		func(i int) float64 { return 0.6 },
	)
	for i := range trades {
		trades[i].CombinedBayesianAdjustment = 0.02
		trades[i].HasBayesianAdjustment = true
	}

	a := ComputeLearning(trades)
	// 9 * |0.02| = 0.18 > 0.1
	assert.InDelta(t, 0.18, a.CumulativeAdjustment, 1e-9)
	assert.True(t, a.LearningDetected)
}

func TestComputeLearningTooFewTrades(t *testing.T) {
	trades := learningFixture(2,
		func(i int) string { return trade.ResultWin },
		func(i int) float64 { return 0.6 },
	)

	a := ComputeLearning(trades)
	assert.True(t, a.HasBayesianData)
	assert.False(t, a.LearningDetected)
	assert.Equal(t, "stable", a.ConfidenceTrend)
	assert.Equal(t, 0.0, a.EarlyWinRate)
	assert.Equal(t, 0.0, a.LateWinRate)
}
