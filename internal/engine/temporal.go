package engine

import (
	"math"
	"sort"
	"time"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
)

const (
	// regimeThresholdPips splits normal from high-volatility trades in
	// the regime analysis. The stress test uses its own 500-pip cut;
	// the two thresholds are intentionally distinct.
	regimeThresholdPips = 300.0

	// topPatternLimit caps the pattern leaderboard.
	topPatternLimit = 5
)

// ComputeTemporal sums PnL by weekday, hour of day and month. Trades
// whose entry time failed to parse are skipped.
func ComputeTemporal(trades []trade.Record) report.TemporalBreakdown {
	weekdayPnL := make(map[time.Weekday]*report.PnLBucket)
	hourPnL := make(map[int]*report.HourBucket)
	monthPnL := make(map[string]*report.PnLBucket)
	monthKeys := make(map[string]time.Time)

	for _, t := range trades {
		if !t.HasEntryTime {
			continue
		}

		wd := t.EntryTime.Weekday()
		if weekdayPnL[wd] == nil {
			weekdayPnL[wd] = &report.PnLBucket{Label: wd.String()}
		}
		weekdayPnL[wd].PnL += t.PnL
		weekdayPnL[wd].Trades++

		hour := t.EntryTime.Hour()
		if hourPnL[hour] == nil {
			hourPnL[hour] = &report.HourBucket{Hour: hour}
		}
		hourPnL[hour].PnL += t.PnL
		hourPnL[hour].Trades++

		monthLabel := t.EntryTime.Format("Jan 2006")
		if monthPnL[monthLabel] == nil {
			monthPnL[monthLabel] = &report.PnLBucket{Label: monthLabel}
			monthKeys[monthLabel] = time.Date(t.EntryTime.Year(), t.EntryTime.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
		monthPnL[monthLabel].PnL += t.PnL
		monthPnL[monthLabel].Trades++
	}

	var breakdown report.TemporalBreakdown

	// Monday-first weekday order
	for i := 0; i < 7; i++ {
		wd := time.Weekday((i + 1) % 7)
		if b := weekdayPnL[wd]; b != nil {
			b.PnL = report.Round2(b.PnL)
			breakdown.Weekdays = append(breakdown.Weekdays, *b)
		}
	}

	for hour := 0; hour < 24; hour++ {
		if b := hourPnL[hour]; b != nil {
			b.PnL = report.Round2(b.PnL)
			breakdown.Hours = append(breakdown.Hours, *b)
		}
	}

	for _, b := range monthPnL {
		b.PnL = report.Round2(b.PnL)
		breakdown.Months = append(breakdown.Months, *b)
	}
	sort.SliceStable(breakdown.Months, func(i, j int) bool {
		return monthKeys[breakdown.Months[i].Label].Before(monthKeys[breakdown.Months[j].Label])
	})

	return breakdown
}

// groupAccumulator folds one tag group in a single pass.
type groupAccumulator struct {
	name          string
	trades        int
	wins          int
	losses        int
	totalPnL      float64
	totalWinPnL   float64
	totalLossPnL  float64
	confidenceSum float64
}

func (g *groupAccumulator) add(t trade.Record) {
	g.trades++
	g.totalPnL += t.PnL
	g.confidenceSum += t.EffectiveConfidence()
	if t.IsWin() {
		g.wins++
		g.totalWinPnL += t.PnL
	} else if t.Result == trade.ResultLoss {
		g.losses++
		g.totalLossPnL += math.Abs(t.PnL)
	}
}

func (g *groupAccumulator) stats() report.GroupStats {
	s := report.GroupStats{
		Name:     g.name,
		Trades:   g.trades,
		TotalPnL: report.Round2(g.totalPnL),
	}
	if g.trades > 0 {
		s.WinRate = report.Round2(float64(g.wins) / float64(g.trades) * 100)
		s.AvgConfidence = report.Round2(g.confidenceSum / float64(g.trades) * 100)
		s.AvgPnL = report.Round2(g.totalPnL / float64(g.trades))
	}
	return s
}

func (g *groupAccumulator) profitFactor() float64 {
	if g.totalLossPnL > 0 {
		return g.totalWinPnL / g.totalLossPnL
	}
	return math.Inf(1)
}

// foldGroups is the shared single-pass fold from tag to accumulator.
func foldGroups(trades []trade.Record, key func(trade.Record) string) map[string]*groupAccumulator {
	groups := make(map[string]*groupAccumulator)
	for _, t := range trades {
		k := key(t)
		if groups[k] == nil {
			groups[k] = &groupAccumulator{name: k}
		}
		groups[k].add(t)
	}
	return groups
}

// ComputePatternGroups aggregates by pattern tag: top 5 by total PnL,
// descending.
func ComputePatternGroups(trades []trade.Record) []report.GroupStats {
	groups := foldGroups(trades, func(t trade.Record) string { return t.Pattern })

	stats := make([]report.GroupStats, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, g.stats())
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalPnL > stats[j].TotalPnL })

	if len(stats) > topPatternLimit {
		stats = stats[:topPatternLimit]
	}
	return stats
}

// ComputeSignalSources aggregates by signal source, unbounded, sorted
// by total PnL descending, with per-source cumulative PnL curves over
// the chronological trade order.
func ComputeSignalSources(trades []trade.Record) ([]report.SignalSourceStats, report.SourceHighlights) {
	ordered := sortChronological(trades)
	groups := foldGroups(ordered, func(t trade.Record) string { return t.SignalSource })

	cumulatives := make(map[string][]report.CumulativePoint)
	running := make(map[string]float64)
	for i, t := range ordered {
		running[t.SignalSource] += t.PnL
		cumulatives[t.SignalSource] = append(cumulatives[t.SignalSource], report.CumulativePoint{
			TradeNumber:   i + 1,
			Date:          t.EntryTimeRaw,
			CumulativePnL: report.Round2(running[t.SignalSource]),
		})
	}

	stats := make([]report.SignalSourceStats, 0, len(groups))
	for name, g := range groups {
		stats = append(stats, report.SignalSourceStats{
			GroupStats:   g.stats(),
			Wins:         g.wins,
			Losses:       g.losses,
			ProfitFactor: FormatMetric(g.profitFactor()),
			Cumulative:   cumulatives[name],
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalPnL > stats[j].TotalPnL })

	return stats, sourceHighlights(stats)
}

func sourceHighlights(stats []report.SignalSourceStats) report.SourceHighlights {
	var h report.SourceHighlights
	if len(stats) == 0 {
		return h
	}

	best, active, accurate := stats[0], stats[0], stats[0]
	for _, s := range stats[1:] {
		if s.TotalPnL > best.TotalPnL {
			best = s
		}
		if s.Trades > active.Trades {
			active = s
		}
		if s.WinRate > accurate.WinRate {
			accurate = s
		}
	}

	toHighlight := func(s report.SignalSourceStats) report.SourceHighlight {
		return report.SourceHighlight{
			Name:     s.Name,
			TotalPnL: s.TotalPnL,
			Trades:   s.Trades,
			WinRate:  s.WinRate,
			Wins:     s.Wins,
			Losses:   s.Losses,
		}
	}

	h.BestPerforming = toHighlight(best)
	h.MostActive = toHighlight(active)
	h.HighestWinRate = toHighlight(accurate)
	return h
}

// ComputeRegimes partitions trades into normal and high volatility by
// absolute pip movement at the 300-pip regime threshold.
func ComputeRegimes(trades []trade.Record) report.RegimeAnalysis {
	analysis := report.RegimeAnalysis{ThresholdPips: regimeThresholdPips}

	var normal, high groupAccumulator
	for _, t := range trades {
		if math.Abs(t.Pips) > regimeThresholdPips {
			high.add(t)
		} else {
			normal.add(t)
		}
	}

	analysis.Normal = regimeStats(&normal)
	analysis.High = regimeStats(&high)
	return analysis
}

func regimeStats(g *groupAccumulator) report.RegimeStats {
	s := report.RegimeStats{
		Trades:   g.trades,
		TotalPnL: report.Round2(g.totalPnL),
	}
	if g.trades > 0 {
		s.WinRate = report.Round2(float64(g.wins) / float64(g.trades) * 100)
		s.AvgPnL = report.Round2(g.totalPnL / float64(g.trades))
	}
	return s
}

// sortChronological orders trades by parsed entry time, keeping the
// input order for records without a parsable timestamp.
func sortChronological(trades []trade.Record) []trade.Record {
	ordered := make([]trade.Record, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].HasEntryTime || !ordered[j].HasEntryTime {
			return false
		}
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})
	return ordered
}
