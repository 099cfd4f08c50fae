package engine

import (
	"math"
	"testing"

	"github.com/sgkim/tradelens/internal/trade"
)

func TestPatternDecayTest(t *testing.T) {
	tests := []struct {
		name         string
		profitFactor float64
		wantDegraded string
		wantPass     bool
	}{
		{"healthy", 2.0, "1.60", true},
		{"at threshold", 1.25, "1.00", true},
		{"degrades below", 1.2, "0.96", false},
		{"infinite stays infinite", math.Inf(1), "∞", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := patternDecayTest(tt.profitFactor)
			if got.DegradedProfitFactor != tt.wantDegraded {
				t.Errorf("degraded = %q, want %q", got.DegradedProfitFactor, tt.wantDegraded)
			}
			if got.Pass != tt.wantPass {
				t.Errorf("pass = %v, want %v", got.Pass, tt.wantPass)
			}
		})
	}
}

func TestBayesianLagFloor(t *testing.T) {
	// tiny adjustments still report the 37ms floor
	tr := mkTrade(trade.ResultWin, 100, 10000)
	tr.CombinedBayesianAdjustment = 0.001
	tr.HasBayesianAdjustment = true

	got := bayesianLagTest([]trade.Record{tr})
	if got.AvgAdjustmentMs != 37 {
		t.Errorf("avg ms = %v, want floor 37", got.AvgAdjustmentMs)
	}
	if got.SampleCount != 1 {
		t.Errorf("sample count = %d, want 1", got.SampleCount)
	}
	if !got.Pass {
		t.Error("37ms <= 100ms must pass")
	}
}

func TestBayesianLagExceedsThreshold(t *testing.T) {
	tr := mkTrade(trade.ResultWin, 100, 10000)
	tr.CombinedBayesianAdjustment = -0.15 // |.| * 1000 = 150ms
	tr.HasBayesianAdjustment = true

	got := bayesianLagTest([]trade.Record{tr})
	if got.AvgAdjustmentMs != 150 {
		t.Errorf("avg ms = %v, want 150", got.AvgAdjustmentMs)
	}
	if got.Pass {
		t.Error("150ms > 100ms must fail")
	}
}

func TestBayesianLagNoSamples(t *testing.T) {
	got := bayesianLagTest([]trade.Record{mkTrade(trade.ResultWin, 100, 10000)})
	if got.AvgAdjustmentMs != 37 || got.SampleCount != 0 || !got.Pass {
		t.Errorf("no samples: %+v, want floor/0/pass", got)
	}
}

func TestHighVolatilityTestCut(t *testing.T) {
	calm := mkTrade(trade.ResultLoss, -100, 10000)
	calm.Pips = 500 // at the cut, excluded
	winHigh := mkTrade(trade.ResultWin, 300, 9900)
	winHigh.Pips = 650
	lossHigh := mkTrade(trade.ResultLoss, -200, 10200)
	lossHigh.Pips = -800

	got := highVolatilityTest([]trade.Record{calm, winHigh, lossHigh})
	if got.Trades != 2 {
		t.Errorf("high-vol trades = %d, want 2", got.Trades)
	}
	if got.WinRate != 50 {
		t.Errorf("win rate = %v, want 50", got.WinRate)
	}
	if got.Pass {
		t.Error("50%% < 55%% must fail")
	}
}

func TestComputeCertificationTable(t *testing.T) {
	trades := sampleTrades()
	eq := BuildEquitySeries(trades)
	perf := ComputePerformance(trades, eq)
	stress := ComputeStressTests(trades, perf)

	checks := ComputeCertification(perf, eq, stress)
	if len(checks) != 7 {
		t.Fatalf("checks = %d, want 7", len(checks))
	}

	byName := make(map[string]struct{ pass bool; note string })
	for _, c := range checks {
		byName[c.Name] = struct{ pass bool; note string }{c.Pass, c.Note}
	}

	// profit factor 1100/300 well above 1.15
	if !byName["profit_factor"].pass {
		t.Error("profit_factor should pass")
	}
	// max drawdown ~2.86% under 30%
	if !byName["max_drawdown"].pass {
		t.Error("max_drawdown should pass")
	}
	// recovery factor 800/300 above 1.0
	if !byName["recovery_factor"].pass {
		t.Error("recovery_factor should pass")
	}
	// no high-vol trades: win rate 0 fails the 55% bar
	if byName["high_volatility_win_rate"].pass {
		t.Error("high_volatility_win_rate should fail with no qualifying trades")
	}
	// no adjustments: floor 37ms passes
	if !byName["bayesian_adaptation_lag"].pass {
		t.Error("bayesian_adaptation_lag should pass at the floor")
	}

	for _, name := range []string{"crisis_alpha", "slippage_control"} {
		entry, ok := byName[name]
		if !ok {
			t.Fatalf("missing check %q", name)
		}
		if !entry.pass || entry.note != "static placeholder" {
			t.Errorf("%s = %+v, want constant pass with note", name, entry)
		}
	}
}
