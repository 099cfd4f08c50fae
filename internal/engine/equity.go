package engine

import (
	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
)

// EquitySeries is the running balance/peak/drawdown state derived from
// the trade sequence in one strict left-to-right scan. Values here are
// unrounded; rounding happens only when the chart points are built.
type EquitySeries struct {
	StartingBalance float64
	Balances        []float64
	Peaks           []float64
	Drawdowns       []float64 // percent decline from peak
	PnL             []float64
}

// BuildEquitySeries walks trades in order, deriving balance, peak and
// drawdown per trade. The peak is seeded with the starting balance.
func BuildEquitySeries(trades []trade.Record) *EquitySeries {
	start := trade.StartingBalance(trades)

	s := &EquitySeries{
		StartingBalance: start,
		Balances:        make([]float64, len(trades)),
		Peaks:           make([]float64, len(trades)),
		Drawdowns:       make([]float64, len(trades)),
		PnL:             make([]float64, len(trades)),
	}

	peak := start
	for i, t := range trades {
		balance := t.BalanceAfter
		if balance > peak {
			peak = balance
		}

		var drawdown float64
		if peak > 0 {
			drawdown = (peak - balance) / peak * 100
		}

		s.Balances[i] = balance
		s.Peaks[i] = peak
		s.Drawdowns[i] = drawdown
		s.PnL[i] = t.PnL
	}

	return s
}

// FinalBalance is the last balance, or the starting balance when the
// series is empty.
func (s *EquitySeries) FinalBalance() float64 {
	if len(s.Balances) == 0 {
		return s.StartingBalance
	}
	return s.Balances[len(s.Balances)-1]
}

// MaxDrawdownPercent is the largest percentage decline from peak.
func (s *EquitySeries) MaxDrawdownPercent() float64 {
	var max float64
	for _, d := range s.Drawdowns {
		if d > max {
			max = d
		}
	}
	return max
}

// MaxDrawdownValue is the largest dollar gap between peak and balance.
func (s *EquitySeries) MaxDrawdownValue() float64 {
	var max float64
	for i := range s.Balances {
		if gap := s.Peaks[i] - s.Balances[i]; gap > max {
			max = gap
		}
	}
	return max
}

// TotalReturnPercent is the final balance against the starting balance.
func (s *EquitySeries) TotalReturnPercent() float64 {
	if s.StartingBalance <= 0 {
		return 0
	}
	return (s.FinalBalance()/s.StartingBalance - 1) * 100
}

// ChartData builds the display equity curve, index-aligned with the
// trade sequence and rounded to 2 decimals.
func (s *EquitySeries) ChartData(trades []trade.Record) []report.EquityPoint {
	points := make([]report.EquityPoint, len(trades))
	for i, t := range trades {
		date := t.ExitTimeRaw
		if date == "" {
			date = t.EntryTimeRaw
		}

		var returnPct float64
		if s.StartingBalance > 0 {
			returnPct = (s.Balances[i]/s.StartingBalance - 1) * 100
		}

		points[i] = report.EquityPoint{
			Trade:         i + 1,
			Date:          date,
			Balance:       report.Round2(s.Balances[i]),
			PeakBalance:   report.Round2(s.Peaks[i]),
			Drawdown:      report.Round2(s.Drawdowns[i]),
			PnL:           report.Round2(s.PnL[i]),
			ReturnPercent: report.Round2(returnPct),
		}
	}
	return points
}
