// Package report defines the analytics report value produced by the
// engine and its Postgres persistence. A report is computed once per
// CSV submission and stored as an opaque JSONB blob; retrieval returns
// it unchanged.
package report

import (
	"math"

	"github.com/sgkim/tradelens/internal/trade"
)

// Report is the root output handed to persistence and later rendered
// by the frontend. All fields are fully determined by the input trade
// sequence.
type Report struct {
	FileName string `json:"fileName"`
	Header   Header `json:"header"`

	ChartData []EquityPoint `json:"chartData"`

	Metrics              Metrics              `json:"metrics"`
	InstitutionalMetrics InstitutionalMetrics `json:"institutionalMetrics"`
	RiskMetrics          RiskMetrics          `json:"riskMetrics"`

	Temporal      TemporalBreakdown   `json:"temporal"`
	Patterns      []GroupStats        `json:"patterns"`
	SignalSources []SignalSourceStats `json:"signalSources"`
	Highlights    SourceHighlights    `json:"signalSourceHighlights"`
	Regimes       RegimeAnalysis      `json:"regimes"`

	StressTests   StressTests          `json:"stressTests"`
	Certification []CertificationCheck `json:"certification"`

	Learning LearningAnalysis `json:"learning"`
	Scores   CompositeScores  `json:"scores"`

	// Normalized trades retained for the detail table
	Trades []trade.Record `json:"trades"`
}

// Header carries the report banner metadata.
type Header struct {
	Asset      string `json:"asset"`
	Strategy   string `json:"strategy"`
	DateStart  string `json:"dateStart"`
	DateEnd    string `json:"dateEnd"`
	TradeCount int    `json:"tradeCount"`
}

// EquityPoint is one point of the equity curve, index-aligned with the
// trade sequence. Display values are rounded to 2 decimals; metric
// computation uses the unrounded series.
type EquityPoint struct {
	Trade         int     `json:"trade"` // 1-based index
	Date          string  `json:"date"`
	Balance       float64 `json:"balance"`
	PeakBalance   float64 `json:"peakBalance"`
	Drawdown      float64 `json:"drawdown"` // percent decline from peak
	PnL           float64 `json:"pnl"`
	ReturnPercent float64 `json:"returnPercent"` // vs starting balance
}

// Metrics is the headline scalar group.
type Metrics struct {
	FinalBalance float64 `json:"finalBalance"`
	TotalReturn  string  `json:"totalReturn"`
	MaxDrawdown  string  `json:"maxDrawdown"`
	TotalTrades  int     `json:"totalTrades"`
}

// InstitutionalMetrics is the extended performance group. Ratio fields
// are pre-formatted strings so the infinity sentinel survives JSON.
type InstitutionalMetrics struct {
	WinRate         string `json:"winRate"`
	ProfitFactor    string `json:"profitFactor"`
	AvgWin          string `json:"avgWin"`
	AvgLoss         string `json:"avgLoss"`
	Expectancy      string `json:"expectancy"`
	SharpeRatio     string `json:"sharpeRatio"`
	SortinoRatio    string `json:"sortinoRatio"`
	CalmarRatio     string `json:"calmarRatio"`
	RecoveryFactor  string `json:"recoveryFactor"`
	MaxWinStreak    int    `json:"maxWinStreak"`
	MaxLossStreak   int    `json:"maxLossStreak"`
	KellyPercentage string `json:"kellyPercentage"`
	AvgRisk         string `json:"avgRisk"`
	AvgLeverage     string `json:"avgLeverage"`
	BestTrade       string `json:"bestTrade"`
	WorstTrade      string `json:"worstTrade"`
	TotalTrades     int    `json:"totalTrades"`
	WinningTrades   int    `json:"winningTrades"`
	LosingTrades    int    `json:"losingTrades"`
	TotalPnL        string `json:"totalPnL"`
}

// RiskMetrics groups the tail-loss and recovery statistics. Values are
// percents over per-trade returns, rounded for display.
type RiskMetrics struct {
	VaR95            float64 `json:"var95"`
	CVaR95           float64 `json:"cvar95"`
	InformationRatio float64 `json:"informationRatio"`

	AvgRecoveryTrades     float64 `json:"avgRecoveryTrades"`
	LongestRecoveryTrades int     `json:"longestRecoveryTrades"`
	RecoveryPeriods       int     `json:"recoveryPeriods"`

	ConsecutiveLossStress ConsecutiveLossStress `json:"consecutiveLossStress"`
}

// ConsecutiveLossStress is the worst loss-streak stress verdict.
type ConsecutiveLossStress struct {
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
	StreakLoss           float64 `json:"streakLoss"`        // dollars
	LossPercent          float64 `json:"lossPercent"`       // vs starting balance
	ThresholdPercent     float64 `json:"thresholdPercent"`  // fixed 20
	Pass                 bool    `json:"pass"`
}

// TemporalBreakdown sums PnL per calendar bucket. Trades with
// unparsable entry times are skipped, not fatal.
type TemporalBreakdown struct {
	Weekdays []PnLBucket  `json:"weekdays"`
	Hours    []HourBucket `json:"hours"`
	Months   []PnLBucket  `json:"months"`
}

// PnLBucket is a labeled PnL aggregate.
type PnLBucket struct {
	Label  string  `json:"label"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// HourBucket aggregates PnL for an hour of day (0-23).
type HourBucket struct {
	Hour   int     `json:"hour"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// GroupStats aggregates trades sharing a tag (pattern groups).
type GroupStats struct {
	Name          string  `json:"name"`
	Trades        int     `json:"trades"`
	TotalPnL      float64 `json:"totalPnL"`
	WinRate       float64 `json:"winRate"`
	AvgConfidence float64 `json:"avgConfidence"` // percent
	AvgPnL        float64 `json:"avgPnL"`
}

// SignalSourceStats extends GroupStats with the per-model comparison
// data the AI view renders.
type SignalSourceStats struct {
	GroupStats
	Wins         int               `json:"wins"`
	Losses       int               `json:"losses"`
	ProfitFactor string            `json:"profitFactor"`
	Cumulative   []CumulativePoint `json:"cumulative"`
}

// CumulativePoint is one step of a source's running PnL curve,
// numbered by overall chronological trade index.
type CumulativePoint struct {
	TradeNumber   int     `json:"tradeNumber"`
	Date          string  `json:"date"`
	CumulativePnL float64 `json:"cumulativePnL"`
}

// SourceHighlight summarizes one signal source for the highlights row.
type SourceHighlight struct {
	Name     string  `json:"name"`
	TotalPnL float64 `json:"totalPnL"`
	Trades   int     `json:"trades"`
	WinRate  float64 `json:"winRate"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
}

// SourceHighlights names the best, busiest and most accurate sources.
type SourceHighlights struct {
	BestPerforming SourceHighlight `json:"bestPerforming"`
	MostActive     SourceHighlight `json:"mostActive"`
	HighestWinRate SourceHighlight `json:"highestWinRate"`
}

// RegimeAnalysis splits trades by absolute pip movement at the regime
// threshold (300). The separate 500-pip cut used by the volatility
// stress test lives in StressTests and is intentionally distinct.
type RegimeAnalysis struct {
	ThresholdPips float64     `json:"thresholdPips"`
	Normal        RegimeStats `json:"normal"`
	High          RegimeStats `json:"high"`
}

// RegimeStats aggregates one volatility regime.
type RegimeStats struct {
	Trades   int     `json:"trades"`
	WinRate  float64 `json:"winRate"`
	TotalPnL float64 `json:"totalPnL"`
	AvgPnL   float64 `json:"avgPnL"`
}

// StressTests holds the scenario simulation verdicts.
type StressTests struct {
	PatternDecay   PatternDecayTest   `json:"patternDecay"`
	BayesianLag    BayesianLagTest    `json:"bayesianLag"`
	HighVolatility HighVolatilityTest `json:"highVolatility"`
}

// PatternDecayTest simulates a 20% profit factor degradation. The
// degraded factor is a formatted string so the infinity sentinel
// survives JSON.
type PatternDecayTest struct {
	DegradedProfitFactor string  `json:"degradedProfitFactor"`
	Threshold            float64 `json:"threshold"` // 1.0
	Pass                 bool    `json:"pass"`
}

// BayesianLagTest is a synthetic adaptation-lag proxy in milliseconds,
// not a measured latency.
type BayesianLagTest struct {
	AvgAdjustmentMs float64 `json:"avgAdjustmentMs"`
	Threshold       float64 `json:"threshold"` // 100
	SampleCount     int     `json:"sampleCount"`
	Pass            bool    `json:"pass"`
}

// HighVolatilityTest restricts win rate to trades beyond the 500-pip
// volatility cut.
type HighVolatilityTest struct {
	ThresholdPips float64 `json:"thresholdPips"` // 500
	Trades        int     `json:"trades"`
	WinRate       float64 `json:"winRate"`
	MinWinRate    float64 `json:"minWinRate"` // 55
	Pass          bool    `json:"pass"`
}

// CertificationCheck is one row of the certification table. Checks are
// independent; none depends on another's outcome. Static placeholder
// checks carry a Note and no computed value.
type CertificationCheck struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"` // formatted; "∞" for diverging ratios
	Threshold  float64 `json:"threshold"`
	Comparison string  `json:"comparison"` // ">=" or "<="
	Pass       bool    `json:"pass"`
	Note       string  `json:"note,omitempty"`
}

// LearningAnalysis compares the first and last chronological thirds of
// the trade history. Confidence values are fractions.
type LearningAnalysis struct {
	HasBayesianData  bool `json:"hasBayesianData"`
	LearningDetected bool `json:"learningDetected"`

	EarlyWinRate       float64 `json:"earlyWinRate"`
	LateWinRate        float64 `json:"lateWinRate"`
	WinRateImprovement float64 `json:"winRateImprovement"`

	EarlyAvgPnL    float64 `json:"earlyAvgPnL"`
	LateAvgPnL     float64 `json:"lateAvgPnL"`
	PnLImprovement float64 `json:"pnlImprovement"`

	EarlyConfidence       float64 `json:"earlyConfidence"`
	LateConfidence        float64 `json:"lateConfidence"`
	ConfidenceImprovement float64 `json:"confidenceImprovement"`

	CumulativeAdjustment float64 `json:"cumulativeAdjustment"`
	ConfidenceTrend      string  `json:"confidenceTrend"` // stable | increasing | decreasing
}

// SourceScore is the AI-effectiveness breakdown for one signal source.
type SourceScore struct {
	Name             string  `json:"name"`
	WinRateScore     float64 `json:"winRateScore"`     // <= 35
	ConfidenceScore  float64 `json:"confidenceScore"`  // <= 25
	RiskAdjScore     float64 `json:"riskAdjScore"`     // <= 15
	ActivityScore    float64 `json:"activityScore"`    // <= 10
	ConsistencyScore float64 `json:"consistencyScore"` // <= 15
	Total            float64 `json:"total"`
	Weight           float64 `json:"weight"` // trade-count share
}

// CompositeScores blends the sub-scores into the overall grade.
type CompositeScores struct {
	Performance     float64       `json:"performance"`
	Risk            float64       `json:"risk"`
	AIEffectiveness float64       `json:"aiEffectiveness"`
	Overall         float64       `json:"overall"`
	Grade           string        `json:"grade"`
	PerSource       []SourceScore `json:"perSource"`
}

// Round2 rounds for display. Metric math stays unrounded; only values
// placed into the report pass through here.
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
