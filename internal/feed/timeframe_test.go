package feed

import (
	"testing"
	"time"

	"candlerank/internal/errors"
)

func TestResolveTimeframe(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		fetch    string
		resample bool
	}{
		{"M1", "1m", "1m", false},
		{"m5", "5m", "5m", false},
		{"M15", "15m", "15m", false},
		{"M30", "30m", "30m", false},
		{"H1", "1h", "1h", false},
		{"h1", "1h", "1h", false},
		{"H4", "4h", "1h", true},
		{"D1", "1d", "1d", false},
		{"1m", "1m", "1m", false},
		{"4h", "4h", "1h", true},
		{"4H", "4h", "1h", true},
		{"1d", "1d", "1d", false},
		{"1wk", "1wk", "1wk", false},
		{" 1h ", "1h", "1h", false},
	}

	for _, tt := range tests {
		tf, err := ResolveTimeframe(tt.input)
		if err != nil {
			t.Errorf("ResolveTimeframe(%q) failed: %v", tt.input, err)
			continue
		}
		if tf.Name != tt.name || tf.Fetch != tt.fetch || tf.Resample != tt.resample {
			t.Errorf("ResolveTimeframe(%q) = %+v, want name=%s fetch=%s resample=%v",
				tt.input, tf, tt.name, tt.fetch, tt.resample)
		}
	}
}

func TestResolveTimeframeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "7h", "M2", "daily", "1min"} {
		_, err := ResolveTimeframe(input)
		if err == nil {
			t.Errorf("Expected error for %q", input)
			continue
		}
		if !errors.Is(err, errors.ErrInputValidation) {
			t.Errorf("Expected validation error for %q, got %v", input, err)
		}
	}
}

func TestValidateRange(t *testing.T) {
	valid := []string{"1d", "5d", "60d", "730d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max", "MAX", " 1y "}
	for _, rng := range valid {
		if err := ValidateRange(rng); err != nil {
			t.Errorf("ValidateRange(%q) should pass, got %v", rng, err)
		}
	}

	invalid := []string{"", "0d", "-5d", "7w", "1month", "forever", "4mo", "3y"}
	for _, rng := range invalid {
		if err := ValidateRange(rng); err == nil {
			t.Errorf("ValidateRange(%q) should fail", rng)
		}
	}
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	start, bounded, err := rangeStart("60d", now)
	if err != nil || !bounded {
		t.Fatalf("Unexpected result: bounded=%v err=%v", bounded, err)
	}
	if want := now.AddDate(0, 0, -60); !start.Equal(want) {
		t.Errorf("60d start: expected %v, got %v", want, start)
	}

	start, bounded, err = rangeStart("ytd", now)
	if err != nil || !bounded {
		t.Fatalf("Unexpected result: bounded=%v err=%v", bounded, err)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("ytd start: expected %v, got %v", want, start)
	}

	_, bounded, err = rangeStart("max", now)
	if err != nil {
		t.Fatalf("max should be valid: %v", err)
	}
	if bounded {
		t.Error("max should be unbounded")
	}

	start, _, err = rangeStart("6mo", now)
	if err != nil {
		t.Fatalf("6mo should be valid: %v", err)
	}
	if want := now.AddDate(0, -6, 0); !start.Equal(want) {
		t.Errorf("6mo start: expected %v, got %v", want, start)
	}
}

func TestResolveSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		auto   bool
		want   string
	}{
		{"EURUSD", true, "EURUSD=X"},
		{"eurusd", true, "EURUSD=X"},
		{" gbpjpy ", true, "GBPJPY=X"},
		{"EURUSD=X", true, "EURUSD=X"},
		{"BTC-USD", true, "BTC-USD"},
		{"^GSPC", true, "^GSPC"},
		{"BRK.B", true, "BRK.B"},
		{"AAPL", true, "AAPL"},
		{"GOOGL1", true, "GOOGL1"},
		{"EURUSD", false, "EURUSD"},
		{"aapl", false, "AAPL"},
	}

	for _, tt := range tests {
		got := ResolveSymbol(tt.symbol, tt.auto)
		if got != tt.want {
			t.Errorf("ResolveSymbol(%q, %v) = %q, want %q", tt.symbol, tt.auto, got, tt.want)
		}
	}
}
