package engine

import (
	"math"
	"strconv"
)

// InfinitySymbol is the display sentinel for ratios whose denominator
// is exactly zero.
const InfinitySymbol = "∞"

// FormatMetric renders a metric value for the report: the infinity
// symbol for non-finite values, a fixed 2-decimal string otherwise.
// Every formatted metric in the report goes through this one function.
func FormatMetric(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return InfinitySymbol
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
