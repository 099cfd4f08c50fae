package ingest

import (
	"errors"
	"testing"
)

const sampleCSV = `trade_id,entry_time,exit_time,duration,direction,entry_price,exit_price,result,pnl,pips,balance_before,balance_after,confidence,pattern,signal_source,custom_tag
T1,2024-03-04 09:30:00,2024-03-04 11:00:00,01:30:00,BUY,2150.5,2165.0,WIN,145.0,145,10000,10145,0.72,Breakout,ModelA,alpha
T2,2024-03-05 10:00:00,2024-03-05 18:00:00,08:00:00,SELL,2160.0,2171.0,LOSS,-110.0,-110,10145,10035,68,Reversal,ModelB,beta
`

func TestParse(t *testing.T) {
	trades, err := Parse(sampleCSV)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}

	first := trades[0]
	if first.TradeID != "T1" {
		t.Errorf("TradeID = %q, want T1", first.TradeID)
	}
	if first.PnL != 145.0 {
		t.Errorf("PnL = %v, want 145", first.PnL)
	}
	if !first.HasEntryTime {
		t.Error("entry_time should have parsed")
	}
	if first.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", first.DurationMinutes)
	}
	if first.Extra["custom_tag"] != "alpha" {
		t.Errorf("unknown column not passed through: %v", first.Extra)
	}

	// row order preserved
	if trades[1].TradeID != "T2" {
		t.Errorf("row order not preserved: %q", trades[1].TradeID)
	}
}

func TestParseConfidenceScaleRule(t *testing.T) {
	trades, err := Parse(sampleCSV)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	// 0.72 stays a fraction; 68 is a percent and becomes 0.68
	if trades[0].Confidence != 0.72 {
		t.Errorf("fraction confidence = %v, want 0.72", trades[0].Confidence)
	}
	if trades[1].Confidence != 0.68 {
		t.Errorf("percent confidence = %v, want 0.68", trades[1].Confidence)
	}
}

func TestParseEmptyInput(t *testing.T) {
	cases := []string{
		"",
		"\n",
		"trade_id,pnl",
		"trade_id,pnl\n",
	}

	for _, input := range cases {
		if _, err := Parse(input); !errors.Is(err, ErrEmptyCSV) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyCSV", input, err)
		}
	}
}

func TestParseDropsRowsWithoutTradeID(t *testing.T) {
	csv := "trade_id,pnl\n,-50\nT9,25\n"

	trades, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if len(trades) != 1 || trades[0].TradeID != "T9" {
		t.Errorf("expected only T9 to survive, got %+v", trades)
	}
}

func TestParseDefaults(t *testing.T) {
	csv := "trade_id,pnl,balance_after,entry_time,pattern,signal_source\nT1,not-a-number,,garbage,,\n"

	trades, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	rec := trades[0]
	if rec.PnL != 0 {
		t.Errorf("malformed pnl should default to 0, got %v", rec.PnL)
	}
	if rec.BalanceAfter != 0 {
		t.Errorf("missing balance_after should default to 0, got %v", rec.BalanceAfter)
	}
	if rec.HasEntryTime {
		t.Error("unparsable entry_time should not be marked parsed")
	}
	if rec.Pattern != "Unknown" || rec.SignalSource != "Unknown" {
		t.Errorf("empty tags should default to Unknown, got %q / %q", rec.Pattern, rec.SignalSource)
	}
	if rec.HasBayesianConfidence || rec.HasBayesianAdjustment {
		t.Error("absent bayesian columns should not be flagged present")
	}
}

func TestParseQuoteStripping(t *testing.T) {
	csv := "\"trade_id\",\"pnl\"\n\"T1\",\"12.5\"\n"

	trades, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if trades[0].TradeID != "T1" || trades[0].PnL != 12.5 {
		t.Errorf("quotes not stripped: %+v", trades[0])
	}
}

func TestParseRaggedRow(t *testing.T) {
	csv := "trade_id,pnl,balance_after\nT1,50\n"

	trades, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if trades[0].BalanceAfter != 0 {
		t.Errorf("short row should default missing cells, got %v", trades[0].BalanceAfter)
	}
}
