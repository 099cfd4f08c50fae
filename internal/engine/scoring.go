package engine

import (
	"math"
	"sort"
	"time"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/internal/trade"
)

const (
	winRateScoreMax     = 35.0
	confidenceScoreMax  = 25.0
	riskAdjScoreMax     = 15.0
	activityScoreMax    = 10.0
	consistencyScoreMax = 15.0

	// log-scaled sub-scores saturate at these reference values
	riskAdjSaturation     = 3.0  // avg win / max loss ratio
	consistencySaturation = 3.0  // profit factor
	activitySaturation    = 50.0 // trade count
	recencyWindowDays     = 30.0
)

// ComputePerformanceScore maps headline performance onto [0, 100].
func ComputePerformanceScore(sharpe, totalReturnPercent, winRate float64) float64 {
	score := clamp(sharpe*20, 0, 40) +
		clamp(totalReturnPercent/2, 0, 30) +
		clamp(winRate/2, 0, 30)
	return clamp(score, 0, 100)
}

// ComputeRiskScore starts from 100 and deducts for drawdown and VaR.
func ComputeRiskScore(maxDrawdownPercent, var95 float64) float64 {
	score := 100.0 -
		clamp(math.Abs(maxDrawdownPercent)*3, 0, 50) -
		clamp(math.Abs(var95)*10, 0, 30)
	if score < 0 {
		return 0
	}
	return score
}

// ComputeAIScore rates each signal source on five sub-scores and blends
// them weighted by trade-count share.
func ComputeAIScore(trades []trade.Record) (float64, []report.SourceScore) {
	if len(trades) == 0 {
		return 0, nil
	}

	bySource := make(map[string][]trade.Record)
	for _, t := range trades {
		bySource[t.SignalSource] = append(bySource[t.SignalSource], t)
	}

	lastEntry := datasetLastEntry(trades)

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Strings(names)

	total := float64(len(trades))
	var blended float64
	scores := make([]report.SourceScore, 0, len(names))
	for _, name := range names {
		group := bySource[name]
		s := scoreSource(name, group, lastEntry)
		s.Weight = float64(len(group)) / total
		blended += s.Total * s.Weight

		s.WinRateScore = report.Round2(s.WinRateScore)
		s.ConfidenceScore = report.Round2(s.ConfidenceScore)
		s.RiskAdjScore = report.Round2(s.RiskAdjScore)
		s.ActivityScore = report.Round2(s.ActivityScore)
		s.ConsistencyScore = report.Round2(s.ConsistencyScore)
		s.Total = report.Round2(s.Total)
		s.Weight = report.Round2(s.Weight)
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Total > scores[j].Total })

	return clamp(blended, 0, 100), scores
}

func scoreSource(name string, group []trade.Record, lastEntry time.Time) report.SourceScore {
	var wins int
	var confSum float64
	var winSum, winCount float64
	var maxLoss float64
	var grossWin, grossLoss float64
	var sourceLast time.Time

	for _, t := range group {
		if t.IsWin() {
			wins++
			winSum += t.PnL
			winCount++
			grossWin += t.PnL
		} else if t.Result == trade.ResultLoss {
			grossLoss += t.PnL
			if abs := math.Abs(t.PnL); abs > maxLoss {
				maxLoss = abs
			}
		}
		confSum += t.EffectiveConfidence()
		if t.HasEntryTime && t.EntryTime.After(sourceLast) {
			sourceLast = t.EntryTime
		}
	}

	n := float64(len(group))
	winRate := float64(wins) / n * 100
	avgConf := confSum / n

	s := report.SourceScore{Name: name}
	s.WinRateScore = winRate / 100 * winRateScoreMax
	s.ConfidenceScore = avgConf * confidenceScoreMax

	// risk-adjusted: average win vs the worst observed loss, log-scaled
	switch {
	case maxLoss > 0 && winCount > 0:
		ratio := (winSum / winCount) / maxLoss
		s.RiskAdjScore = logScaled(ratio, riskAdjSaturation, riskAdjScoreMax)
	case maxLoss == 0 && winCount > 0:
		s.RiskAdjScore = riskAdjScoreMax
	}

	// activity: half volume, half recency against the dataset's last trade
	volume := math.Min(1, math.Log1p(n)/math.Log1p(activitySaturation))
	recency := 0.0
	if !sourceLast.IsZero() && !lastEntry.IsZero() {
		days := lastEntry.Sub(sourceLast).Hours() / 24
		recency = math.Max(0, 1-days/recencyWindowDays)
	}
	s.ActivityScore = (0.5*volume + 0.5*recency) * activityScoreMax

	// consistency: profit factor, log-scaled
	switch {
	case grossLoss == 0 && grossWin > 0:
		s.ConsistencyScore = consistencyScoreMax
	case grossLoss != 0:
		pf := math.Abs(grossWin / grossLoss)
		s.ConsistencyScore = logScaled(pf, consistencySaturation, consistencyScoreMax)
	}

	s.Total = clamp(s.WinRateScore+s.ConfidenceScore+s.RiskAdjScore+s.ActivityScore+s.ConsistencyScore, 0, 100)
	return s
}

func logScaled(value, saturation, max float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(max, math.Log1p(value)/math.Log1p(saturation)*max)
}

func datasetLastEntry(trades []trade.Record) time.Time {
	var last time.Time
	for _, t := range trades {
		if t.HasEntryTime && t.EntryTime.After(last) {
			last = t.EntryTime
		}
	}
	return last
}

// ComputeScores blends performance, risk and AI effectiveness into the
// overall grade. var95 and maxDrawdownPercent are taken unrounded so
// display rounding never feeds back into the composite.
func ComputeScores(perf PerformanceMetrics, var95, maxDrawdownPercent float64, trades []trade.Record) report.CompositeScores {
	perfScore := ComputePerformanceScore(perf.SharpeRatio, perf.TotalReturnPercent, perf.WinRate)
	riskScore := ComputeRiskScore(maxDrawdownPercent, var95)
	aiScore, perSource := ComputeAIScore(trades)

	overall := perfScore*0.4 + riskScore*0.3 + aiScore*0.3

	return report.CompositeScores{
		Performance:     report.Round2(perfScore),
		Risk:            report.Round2(riskScore),
		AIEffectiveness: report.Round2(aiScore),
		Overall:         report.Round2(overall),
		Grade:           gradeFor(overall),
		PerSource:       perSource,
	}
}

func gradeFor(overall float64) string {
	switch {
	case overall >= 90:
		return "A+"
	case overall >= 85:
		return "A"
	case overall >= 80:
		return "A-"
	case overall >= 75:
		return "B+"
	case overall >= 70:
		return "B"
	case overall >= 65:
		return "B-"
	case overall >= 60:
		return "C+"
	default:
		return "C"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
