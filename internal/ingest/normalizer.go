// Package ingest turns raw CSV text from a strategy trade export into
// normalized trade records. Parsing is deliberately tolerant: a
// malformed cell defaults instead of failing, and only a structurally
// empty file aborts the request.
package ingest

import (
	"errors"
	"strings"

	"github.com/sgkim/tradelens/internal/trade"
)

// ErrEmptyCSV is returned when the input has fewer than two lines
// (header plus at least one data row). This is the only fatal
// ingestion condition.
var ErrEmptyCSV = errors.New("CSV file is empty or invalid")

// Parse converts raw CSV text into normalized trade records, preserving
// input row order. Rows without a non-empty trade_id are dropped.
func Parse(csvText string) ([]trade.Record, error) {
	headers, rows, err := splitLines(csvText)
	if err != nil {
		return nil, err
	}
	return Normalize(headers, rows), nil
}

// splitLines breaks the CSV body into a header slice and row matrices.
// Fields are comma-delimited with double quotes stripped; this matches
// the export format, which never embeds commas inside quoted fields.
func splitLines(csvText string) ([]string, [][]string, error) {
	text := strings.TrimSpace(strings.ReplaceAll(csvText, "\r\n", "\n"))
	lines := strings.Split(text, "\n")
	if text == "" || len(lines) < 2 {
		return nil, nil, ErrEmptyCSV
	}

	headers := splitFields(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitFields(line))
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyCSV
	}

	return headers, rows, nil
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(p), `"`, "")
	}
	return parts
}

// Normalize maps header/row string matrices onto typed records. Ragged
// rows are tolerated: missing cells read as empty and default per
// field. Unknown columns are retained verbatim in Extra.
func Normalize(headers []string, rows [][]string) []trade.Record {
	records := make([]trade.Record, 0, len(rows))

	for _, row := range rows {
		rec := normalizeRow(headers, row)
		if rec.TradeID == "" {
			continue
		}
		records = append(records, rec)
	}

	return records
}

func normalizeRow(headers []string, row []string) trade.Record {
	rec := trade.Record{
		Pattern:      "Unknown",
		SignalSource: "Unknown",
	}

	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	for i, header := range headers {
		value := cell(i)

		switch header {
		case "trade_id":
			rec.TradeID = value
		case "entry_time":
			rec.EntryTimeRaw = value
			rec.EntryTime, rec.HasEntryTime = trade.ParseTime(value)
		case "exit_time":
			rec.ExitTimeRaw = value
			rec.ExitTime, rec.HasExitTime = trade.ParseTime(value)
		case "duration":
			rec.DurationRaw = value
			rec.DurationMinutes = trade.ParseDurationMinutes(value)
		case "direction":
			rec.Direction = value
		case "entry_price":
			rec.EntryPrice = trade.ParseFloat(value)
		case "exit_price":
			rec.ExitPrice = trade.ParseFloat(value)
		case "stop_loss":
			rec.StopLoss = trade.ParseFloat(value)
		case "take_profit":
			rec.TakeProfit = trade.ParseFloat(value)
		case "result":
			rec.Result = value
		case "pnl":
			rec.PnL = trade.ParseFloat(value)
		case "pips":
			rec.Pips = trade.ParseFloat(value)
		case "position_size":
			rec.PositionSize = trade.ParseFloat(value)
		case "risk_percentage":
			rec.RiskPercentage = trade.ParseFloat(value)
		case "leverage_ratio":
			rec.LeverageRatio = trade.ParseFloat(value)
		case "balance_before":
			rec.BalanceBefore = trade.ParseFloat(value)
		case "balance_after":
			rec.BalanceAfter = trade.ParseFloat(value)
		case "confidence":
			rec.Confidence = trade.NormalizeConfidence(trade.ParseFloat(value))
		case "bayesian_confidence":
			if value != "" {
				rec.BayesianConfidence = trade.NormalizeConfidence(trade.ParseFloat(value))
				rec.HasBayesianConfidence = true
			}
		case "combined_bayesian_adjustment":
			if value != "" {
				rec.CombinedBayesianAdjustment = trade.ParseFloat(value)
				rec.HasBayesianAdjustment = true
			}
		case "pattern":
			if value != "" {
				rec.Pattern = value
			}
		case "signal_source":
			if value != "" {
				rec.SignalSource = value
			}
		default:
			if header != "" {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[header] = value
			}
		}
	}

	return rec
}
