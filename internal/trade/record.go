package trade

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Result literals as they appear in the CSV export. Comparison is by
// exact string; anything that is not exactly "WIN" counts as a loss
// for streak and rate purposes.
const (
	ResultWin  = "WIN"
	ResultLoss = "LOSS"
)

// DefaultStartingBalance seeds the equity curve when the first trade
// carries no usable balance_before.
const DefaultStartingBalance = 10000.0

// Record is one normalized trade. Immutable once built by the ingest
// package. Numeric fields default to 0 on missing or unparsable input;
// tag fields default to "Unknown".
type Record struct {
	TradeID string `json:"trade_id"`

	// Timing. The raw strings are kept for display; HasEntryTime /
	// HasExitTime distinguish parsed timestamps from the zero value.
	EntryTimeRaw    string    `json:"entry_time"`
	ExitTimeRaw     string    `json:"exit_time"`
	EntryTime       time.Time `json:"-"`
	ExitTime        time.Time `json:"-"`
	HasEntryTime    bool      `json:"-"`
	HasExitTime     bool      `json:"-"`
	DurationRaw     string    `json:"duration"`
	DurationMinutes float64   `json:"duration_minutes"`

	// Execution
	Direction  string  `json:"direction"` // BUY / SELL
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`

	// Outcome
	Result string  `json:"result"`
	PnL    float64 `json:"pnl"`
	Pips   float64 `json:"pips"` // |pips| serves as the volatility proxy

	// Risk / sizing
	PositionSize   float64 `json:"position_size"`
	RiskPercentage float64 `json:"risk_percentage"`
	LeverageRatio  float64 `json:"leverage_ratio"`
	BalanceBefore  float64 `json:"balance_before"`
	BalanceAfter   float64 `json:"balance_after"`

	// Confidence / attribution. Confidence values are fractions in
	// [0,1]: anything ingested above 1 is treated as a percent and
	// divided by 100 (the one central scale rule). The Has* flags are
	// set at ingestion since 0 is a legal value.
	Confidence                 float64 `json:"confidence"`
	BayesianConfidence         float64 `json:"bayesian_confidence"`
	HasBayesianConfidence      bool    `json:"has_bayesian_confidence"`
	CombinedBayesianAdjustment float64 `json:"combined_bayesian_adjustment"`
	HasBayesianAdjustment      bool    `json:"has_bayesian_adjustment"`

	Pattern      string `json:"pattern"`
	SignalSource string `json:"signal_source"`

	// Unknown columns, passed through verbatim
	Extra map[string]string `json:"extra,omitempty"`
}

// IsWin reports whether the trade is a win by exact literal match.
func (r *Record) IsWin() bool {
	return r.Result == ResultWin
}

// EffectiveConfidence returns the Bayesian confidence when present,
// else the plain confidence. Fraction scale.
func (r *Record) EffectiveConfidence() float64 {
	if r.HasBayesianConfidence {
		return r.BayesianConfidence
	}
	return r.Confidence
}

// Return is the per-trade fractional return, 0 when balance_before
// is not positive.
func (r *Record) Return() float64 {
	if r.BalanceBefore <= 0 {
		return 0
	}
	return r.PnL / r.BalanceBefore
}

// Leverage is the effective leverage of the trade: the exported
// leverage_ratio when present, else notional over balance_before.
// Returns +Inf when balance_before is 0 so callers can filter with
// math.IsInf.
func (r *Record) Leverage() float64 {
	if r.LeverageRatio > 0 {
		return r.LeverageRatio
	}
	if r.BalanceBefore <= 0 {
		return math.Inf(1)
	}
	return r.PositionSize * r.EntryPrice / r.BalanceBefore
}

// ParseFloat converts a raw field to float64, yielding 0 on any
// failure. It never returns an error: a malformed cell must not abort
// the whole report.
func ParseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeConfidence applies the central confidence scale rule:
// values above 1 are percents and become fractions.
func NormalizeConfidence(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// timeLayouts covers the timestamp shapes seen in strategy exports.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseTime attempts to parse a timestamp field. The boolean result is
// false when no layout matches; callers skip the record from date
// bucketing rather than failing.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDurationMinutes parses the free-text "N days HH:MM:SS" duration
// form (the "N days " prefix is optional) into minutes. Returns 0 on
// any malformed input.
func ParseDurationMinutes(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	var days float64
	if idx := strings.Index(s, "day"); idx >= 0 {
		days = ParseFloat(s[:idx])
		rest := s[idx:]
		if cut := strings.IndexAny(rest, " ,"); cut >= 0 {
			s = strings.TrimSpace(rest[cut+1:])
		} else {
			s = ""
		}
	}

	var hours, minutes, seconds float64
	if s != "" {
		parts := strings.Split(s, ":")
		switch len(parts) {
		case 3:
			hours = ParseFloat(parts[0])
			minutes = ParseFloat(parts[1])
			seconds = ParseFloat(parts[2])
		case 2:
			hours = ParseFloat(parts[0])
			minutes = ParseFloat(parts[1])
		default:
			return days * 24 * 60
		}
	}

	return days*24*60 + hours*60 + minutes + seconds/60
}

// StartingBalance derives the equity seed from the first trade's
// balance_before, falling back to the default when absent or zero.
func StartingBalance(trades []Record) float64 {
	if len(trades) > 0 && trades[0].BalanceBefore > 0 {
		return trades[0].BalanceBefore
	}
	return DefaultStartingBalance
}
