package engine

import (
	"math"
	"testing"

	"github.com/sgkim/tradelens/internal/trade"
)

func TestHistoricalVaR(t *testing.T) {
	// 20 returns: index floor(20*0.05)=1 of the ascending sort
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = float64(i - 10) // -10 .. 9
	}

	var95, cvar95 := historicalVaR(returns)
	if var95 != -9 {
		t.Errorf("VaR95 = %v, want -9", var95)
	}
	if cvar95 != -9.5 {
		t.Errorf("CVaR95 = %v, want -9.5 (mean of -10, -9)", cvar95)
	}
}

func TestHistoricalVaRSmallSample(t *testing.T) {
	var95, cvar95 := historicalVaR([]float64{2, -3, 1})
	// floor(3*0.05)=0: worst return
	if var95 != -3 || cvar95 != -3 {
		t.Errorf("VaR/CVaR = %v/%v, want -3/-3", var95, cvar95)
	}

	var95, cvar95 = historicalVaR(nil)
	if var95 != 0 || cvar95 != 0 {
		t.Errorf("empty: VaR/CVaR = %v/%v, want 0/0", var95, cvar95)
	}
}

func TestInformationRatio(t *testing.T) {
	if got := informationRatio([]float64{1, 1, 1}); got != 0 {
		t.Errorf("zero tracking error: got %v, want 0", got)
	}

	got := informationRatio([]float64{2, -2})
	// mean 0 over stddev 2
	if got != 0 {
		t.Errorf("mean-zero returns: got %v, want 0", got)
	}

	got = informationRatio([]float64{3, 1})
	// mean 2, population stddev 1
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestRecoveryPeriods(t *testing.T) {
	eq := &EquitySeries{
		Balances:  []float64{100, 90, 95, 100, 80, 100, 70},
		Drawdowns: []float64{0, 10, 5, 0, 20, 0, 30},
	}

	avg, longest, periods := recoveryPeriods(eq)
	// two closed periods of length 2 and 1; the trailing drawdown stays open
	if periods != 2 {
		t.Errorf("periods = %d, want 2", periods)
	}
	if longest != 2 {
		t.Errorf("longest = %d, want 2", longest)
	}
	if math.Abs(avg-1.5) > 1e-9 {
		t.Errorf("avg = %v, want 1.5", avg)
	}
}

func TestConsecutiveLossStress(t *testing.T) {
	trades := []trade.Record{
		mkTrade(trade.ResultLoss, -500, 10000),
		mkTrade(trade.ResultLoss, -700, 9500),
		mkTrade(trade.ResultWin, 300, 8800),
		mkTrade(trade.ResultLoss, -100, 9100),
	}

	s := consecutiveLossStress(trades, 10000)
	if s.MaxConsecutiveLosses != 2 {
		t.Errorf("max losses = %d, want 2", s.MaxConsecutiveLosses)
	}
	if s.StreakLoss != -1200 {
		t.Errorf("streak loss = %v, want -1200", s.StreakLoss)
	}
	if s.LossPercent != 12 {
		t.Errorf("loss percent = %v, want 12", s.LossPercent)
	}
	if !s.Pass {
		t.Error("12%% vs 20%% threshold should pass")
	}
}

func TestConsecutiveLossStressFail(t *testing.T) {
	trades := []trade.Record{
		mkTrade(trade.ResultLoss, -1500, 10000),
		mkTrade(trade.ResultLoss, -1000, 8500),
	}

	s := consecutiveLossStress(trades, 10000)
	if s.LossPercent != 25 {
		t.Errorf("loss percent = %v, want 25", s.LossPercent)
	}
	if s.Pass {
		t.Error("25%% vs 20%% threshold should fail")
	}
}

func TestConsecutiveLossStressTieKeepsDeeperLoss(t *testing.T) {
	trades := []trade.Record{
		mkTrade(trade.ResultLoss, -100, 10000),
		mkTrade(trade.ResultWin, 50, 9900),
		mkTrade(trade.ResultLoss, -400, 9950),
	}

	s := consecutiveLossStress(trades, 10000)
	if s.MaxConsecutiveLosses != 1 {
		t.Errorf("max losses = %d, want 1", s.MaxConsecutiveLosses)
	}
	if s.StreakLoss != -400 {
		t.Errorf("streak loss = %v, want the deeper -400", s.StreakLoss)
	}
}
