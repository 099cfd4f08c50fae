package engine

import (
	"math"
	"testing"

	"github.com/sgkim/tradelens/internal/trade"
)

func TestComputePerformanceSample(t *testing.T) {
	trades := sampleTrades()
	eq := BuildEquitySeries(trades)
	m := ComputePerformance(trades, eq)

	if math.Abs(m.WinRate-100.0*2/3) > 1e-9 {
		t.Errorf("win rate = %v, want 66.67", m.WinRate)
	}
	if math.Abs(m.WinRate+m.LossRate-100) > 1e-9 {
		t.Errorf("win %v + loss %v != 100", m.WinRate, m.LossRate)
	}
	if m.WinningTrades != 2 || m.LosingTrades != 1 {
		t.Errorf("counts = %d/%d, want 2/1", m.WinningTrades, m.LosingTrades)
	}

	if math.Abs(m.ProfitFactor-1100.0/300) > 1e-9 {
		t.Errorf("profit factor = %v, want %v", m.ProfitFactor, 1100.0/300)
	}
	if m.AvgWin != 550 || m.AvgLoss != -300 {
		t.Errorf("avg win/loss = %v/%v, want 550/-300", m.AvgWin, m.AvgLoss)
	}
	if m.TotalPnL != 800 {
		t.Errorf("total pnl = %v, want 800", m.TotalPnL)
	}
	if m.MaxWinStreak != 1 || m.MaxLossStreak != 1 {
		t.Errorf("streaks = %d/%d, want 1/1", m.MaxWinStreak, m.MaxLossStreak)
	}
	if m.BestTrade != 600 || m.WorstTrade != -300 {
		t.Errorf("best/worst = %v/%v, want 600/-300", m.BestTrade, m.WorstTrade)
	}

	// 10500 -> 10200 drawdown is 300/10500
	wantCalmar := 8.0 / (300.0 / 10500 * 100)
	if math.Abs(m.CalmarRatio-wantCalmar) > 1e-9 {
		t.Errorf("calmar = %v, want %v", m.CalmarRatio, wantCalmar)
	}
	if math.Abs(m.RecoveryFactor-800.0/300) > 1e-9 {
		t.Errorf("recovery = %v, want %v", m.RecoveryFactor, 800.0/300)
	}
}

func TestComputePerformanceInfiniteSentinels(t *testing.T) {
	trades := []trade.Record{
		mkTrade(trade.ResultWin, 500, 10000),
		mkTrade(trade.ResultWin, 200, 10500),
	}
	eq := BuildEquitySeries(trades)
	m := ComputePerformance(trades, eq)

	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("profit factor = %v, want +Inf with no losses", m.ProfitFactor)
	}
	if !math.IsInf(m.SortinoRatio, 1) {
		t.Errorf("sortino = %v, want +Inf with no downside", m.SortinoRatio)
	}
	if !math.IsInf(m.CalmarRatio, 1) {
		t.Errorf("calmar = %v, want +Inf with no drawdown", m.CalmarRatio)
	}
	if !math.IsInf(m.RecoveryFactor, 1) {
		t.Errorf("recovery = %v, want +Inf with no drawdown", m.RecoveryFactor)
	}
}

func TestKellyGating(t *testing.T) {
	// all wins: avgLoss is 0, Kelly must stay 0
	wins := []trade.Record{
		mkTrade(trade.ResultWin, 500, 10000),
		mkTrade(trade.ResultWin, 200, 10500),
	}
	m := ComputePerformance(wins, BuildEquitySeries(wins))
	if m.Kelly != 0 {
		t.Errorf("kelly = %v, want 0 without losses", m.Kelly)
	}

	// mixed: dollar-space heuristic
	mixed := sampleTrades()
	m = ComputePerformance(mixed, BuildEquitySeries(mixed))
	winP := 2.0 / 3
	want := winP/300 - (1-winP)/550
	if math.Abs(m.Kelly-want) > 1e-12 {
		t.Errorf("kelly = %v, want %v", m.Kelly, want)
	}
}

func TestStreaksNonWinExtendsLoss(t *testing.T) {
	trades := []trade.Record{
		mkTrade(trade.ResultWin, 100, 10000),
		mkTrade(trade.ResultLoss, -50, 10100),
		mkTrade("BREAKEVEN", 0, 10050),
		mkTrade(trade.ResultLoss, -50, 10050),
		mkTrade(trade.ResultWin, 100, 10000),
		mkTrade(trade.ResultWin, 100, 10100),
	}

	maxWin, maxLoss := streaks(trades)
	if maxWin != 2 {
		t.Errorf("max win streak = %d, want 2", maxWin)
	}
	if maxLoss != 3 {
		t.Errorf("max loss streak = %d, want 3 (breakeven extends)", maxLoss)
	}
}

func TestAvgLeverageSkipsInfinite(t *testing.T) {
	lev := mkTrade(trade.ResultWin, 100, 10000)
	lev.LeverageRatio = 10

	broken := mkTrade(trade.ResultWin, 100, 0)
	broken.PositionSize = 1
	broken.EntryPrice = 2000

	got := avgLeverage([]trade.Record{lev, broken})
	if got != 10 {
		t.Errorf("avg leverage = %v, want 10 (infinite entry skipped)", got)
	}
}

func TestComputePerformanceEmpty(t *testing.T) {
	m := ComputePerformance(nil, BuildEquitySeries(nil))

	if m.WinRate != 0 || m.TotalPnL != 0 {
		t.Errorf("empty set: winRate=%v totalPnL=%v, want zeros", m.WinRate, m.TotalPnL)
	}
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("profit factor = %v, want +Inf", m.ProfitFactor)
	}
	if m.SharpeRatio != 0 {
		t.Errorf("sharpe = %v, want 0", m.SharpeRatio)
	}
}
