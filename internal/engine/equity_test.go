package engine

import (
	"math"
	"testing"

	"github.com/sgkim/tradelens/internal/trade"
)

func TestBuildEquitySeriesWalk(t *testing.T) {
	eq := BuildEquitySeries(sampleTrades())

	if eq.StartingBalance != 10000 {
		t.Fatalf("starting balance = %v, want 10000", eq.StartingBalance)
	}

	wantBalances := []float64{10500, 10200, 10800}
	for i, want := range wantBalances {
		if eq.Balances[i] != want {
			t.Errorf("balance[%d] = %v, want %v", i, eq.Balances[i], want)
		}
	}

	// peak never declines
	prev := eq.StartingBalance
	for i, p := range eq.Peaks {
		if p < prev {
			t.Errorf("peak[%d] = %v declined below %v", i, p, prev)
		}
		prev = p
	}

	// drawdown after the -300 trade: (10500-10200)/10500
	wantDD := 300.0 / 10500 * 100
	if math.Abs(eq.Drawdowns[1]-wantDD) > 1e-9 {
		t.Errorf("drawdown[1] = %v, want %v", eq.Drawdowns[1], wantDD)
	}
	if math.Abs(eq.MaxDrawdownPercent()-wantDD) > 1e-9 {
		t.Errorf("max drawdown = %v, want %v", eq.MaxDrawdownPercent(), wantDD)
	}
	if eq.MaxDrawdownValue() != 300 {
		t.Errorf("max drawdown value = %v, want 300", eq.MaxDrawdownValue())
	}

	if eq.FinalBalance() != 10800 {
		t.Errorf("final balance = %v, want 10800", eq.FinalBalance())
	}
	if math.Abs(eq.TotalReturnPercent()-8) > 1e-9 {
		t.Errorf("total return = %v, want 8", eq.TotalReturnPercent())
	}
}

func TestBuildEquitySeriesEmpty(t *testing.T) {
	eq := BuildEquitySeries(nil)

	if eq.StartingBalance != trade.DefaultStartingBalance {
		t.Errorf("starting balance = %v, want default", eq.StartingBalance)
	}
	if eq.FinalBalance() != trade.DefaultStartingBalance {
		t.Errorf("final balance = %v, want default", eq.FinalBalance())
	}
	if eq.MaxDrawdownPercent() != 0 {
		t.Errorf("max drawdown = %v, want 0", eq.MaxDrawdownPercent())
	}
	if eq.TotalReturnPercent() != 0 {
		t.Errorf("total return = %v, want 0", eq.TotalReturnPercent())
	}
}

func TestChartDataAlignment(t *testing.T) {
	trades := sampleTrades()
	eq := BuildEquitySeries(trades)
	points := eq.ChartData(trades)

	if len(points) != len(trades) {
		t.Fatalf("points = %d, want %d", len(points), len(trades))
	}
	for i, p := range points {
		if p.Trade != i+1 {
			t.Errorf("point[%d].Trade = %d, want %d", i, p.Trade, i+1)
		}
		if p.Date != trades[i].ExitTimeRaw {
			t.Errorf("point[%d].Date = %q, want exit time %q", i, p.Date, trades[i].ExitTimeRaw)
		}
	}

	// return percent is vs starting balance, rounded
	if points[2].ReturnPercent != 8.00 {
		t.Errorf("final return percent = %v, want 8", points[2].ReturnPercent)
	}
}

func TestChartDataFallsBackToEntryDate(t *testing.T) {
	tr := mkTrade(trade.ResultWin, 100, 10000)
	tr.EntryTimeRaw = "2025-03-01 08:00:00"

	eq := BuildEquitySeries([]trade.Record{tr})
	points := eq.ChartData([]trade.Record{tr})

	if points[0].Date != "2025-03-01 08:00:00" {
		t.Errorf("date = %q, want entry time fallback", points[0].Date)
	}
}
