package feed

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"candlerank/internal/errors"
)

// Timeframe is a resolved bar interval. Name is the canonical form used
// for display and cache keys; Fetch is the interval actually requested
// from the provider. The two differ only for 4h, which Yahoo does not
// serve natively and which is resampled from 1h bars.
type Timeframe struct {
	Name     string
	Fetch    string
	Resample bool
}

// timeframeAliases maps trading-platform names to native intervals.
var timeframeAliases = map[string]string{
	"M1":  "1m",
	"M5":  "5m",
	"M15": "15m",
	"M30": "30m",
	"H1":  "1h",
	"H4":  "4h",
	"D1":  "1d",
}

// nativeIntervals are the intervals the chart API serves directly.
var nativeIntervals = map[string]bool{
	"1m":  true,
	"2m":  true,
	"5m":  true,
	"15m": true,
	"30m": true,
	"60m": true,
	"90m": true,
	"1h":  true,
	"1d":  true,
	"5d":  true,
	"1wk": true,
	"1mo": true,
	"3mo": true,
}

// ResolveTimeframe converts a human-friendly timeframe name into a
// fetchable interval. Accepts platform aliases (M1, M5, M15, M30, H1,
// H4, D1) and raw interval strings; 4h resolves to a 1h fetch with
// resampling.
func ResolveTimeframe(timeframe string) (Timeframe, error) {
	name := strings.ToLower(strings.TrimSpace(timeframe))
	if mapped, ok := timeframeAliases[strings.ToUpper(name)]; ok {
		name = mapped
	}

	if name == "4h" {
		return Timeframe{Name: "4h", Fetch: "1h", Resample: true}, nil
	}
	if nativeIntervals[name] {
		return Timeframe{Name: name, Fetch: name}, nil
	}

	return Timeframe{}, errors.NewValidationError("timeframe", timeframe,
		"must be one of "+strings.Join(ValidTimeframes(), ", "))
}

// ValidTimeframes lists every accepted timeframe value, sorted.
func ValidTimeframes() []string {
	values := make([]string, 0, len(timeframeAliases)+len(nativeIntervals)+1)
	for alias := range timeframeAliases {
		values = append(values, alias)
	}
	for interval := range nativeIntervals {
		values = append(values, interval)
	}
	values = append(values, "4h")
	sort.Strings(values)
	return values
}

// fixedRanges are the non-numeric range forms the chart API accepts.
var fixedRanges = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
	"10y": true,
	"ytd": true,
	"max": true,
}

// ValidateRange checks a lookback range string (Nd, 1mo, 3mo, 6mo, 1y,
// 2y, 5y, 10y, ytd, max).
func ValidateRange(rng string) error {
	_, _, err := rangeStart(rng, time.Now())
	return err
}

// rangeStart returns the start of the window a range string covers,
// relative to now. The bool is false for "max", which has no start.
func rangeStart(rng string, now time.Time) (time.Time, bool, error) {
	r := strings.ToLower(strings.TrimSpace(rng))

	if days, ok := parseDayRange(r); ok {
		return now.AddDate(0, 0, -days), true, nil
	}

	if !fixedRanges[r] {
		return time.Time{}, false, errors.NewValidationError("range", rng,
			"must be a day count like 60d, or one of 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max")
	}

	switch r {
	case "max":
		return time.Time{}, false, nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), true, nil
	case "1mo", "3mo", "6mo":
		months, _ := strconv.Atoi(strings.TrimSuffix(r, "mo"))
		return now.AddDate(0, -months, 0), true, nil
	default:
		years, _ := strconv.Atoi(strings.TrimSuffix(r, "y"))
		return now.AddDate(-years, 0, 0), true, nil
	}
}

func parseDayRange(r string) (int, bool) {
	if !strings.HasSuffix(r, "d") {
		return 0, false
	}
	days, err := strconv.Atoi(strings.TrimSuffix(r, "d"))
	if err != nil || days < 1 {
		return 0, false
	}
	return days, true
}

// ResolveSymbol normalizes a ticker for the chart API. Plain six-letter
// symbols get the forex =X suffix; symbols already carrying a suffix
// marker pass through unchanged.
func ResolveSymbol(symbol string, autoForexSuffix bool) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !autoForexSuffix {
		return s
	}
	if strings.ContainsAny(s, "=-.^") {
		return s
	}
	if len(s) == 6 && isAlpha(s) {
		return s + "=X"
	}
	return s
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
