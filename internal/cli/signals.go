// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"candlerank/internal/errors"
	"candlerank/internal/models"
	"candlerank/internal/rank"
)

// dateWindow filters signal timestamps to a single day or an inclusive
// day range, compared in the reporting timezone.
type dateWindow struct {
	day  string
	from string
	to   string
	loc  *time.Location
}

func (w dateWindow) active() bool {
	return w.day != "" || w.from != "" || w.to != ""
}

func (w dateWindow) contains(ts time.Time) bool {
	key := ts.In(w.loc).Format("2006-01-02")
	if w.day != "" {
		return key == w.day
	}
	if w.from != "" && key < w.from {
		return false
	}
	if w.to != "" && key > w.to {
		return false
	}
	return true
}

func (w dateWindow) describe() string {
	if w.day != "" {
		return " on " + w.day
	}
	if w.from != "" || w.to != "" {
		from := w.from
		if from == "" {
			from = "beginning"
		}
		to := w.to
		if to == "" {
			to = "end"
		}
		return " from " + from + " to " + to
	}
	return ""
}

func parseDateWindow(day, from, to string, loc *time.Location) (dateWindow, error) {
	if day != "" && (from != "" || to != "") {
		return dateWindow{}, errors.NewValidationError("date", day, "use either --date or --from/--to, not both")
	}
	for flag, v := range map[string]string{"date": day, "from": from, "to": to} {
		if v == "" {
			continue
		}
		if _, err := time.ParseInLocation("2006-01-02", v, loc); err != nil {
			return dateWindow{}, errors.NewValidationError(flag, v, "expected YYYY-MM-DD")
		}
	}
	return dateWindow{day: day, from: from, to: to, loc: loc}, nil
}

func newSignalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals <symbol>",
		Short: "List pattern signals on a series",
		Long: `Scan a price series and list where a candlestick pattern fired.

Pick one pattern with --pattern (CDL prefix optional) or scan the whole
catalog with --all. Results can be narrowed to a single day with --date
or to an inclusive day range with --from/--to.`,
		Example: `  candlerank signals EURUSD --pattern KICKING --timeframe M5 --range 60d
  candlerank signals EURUSD --all --timeframe M5 --range 60d --date 2025-04-01
  candlerank signals GBPUSD --all --from 2025-04-01 --to 2025-04-10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			pattern, _ := cmd.Flags().GetString("pattern")
			all, _ := cmd.Flags().GetBool("all")
			day, _ := cmd.Flags().GetString("date")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			timeframe, _ := cmd.Flags().GetString("timeframe")
			rng, _ := cmd.Flags().GetString("range")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			if pattern == "" && !all {
				err := errors.NewValidationError("pattern", "", "either --pattern or --all is required")
				output.Error("%v", err)
				return err
			}
			if pattern != "" && all {
				err := errors.NewValidationError("pattern", pattern, "use either --pattern or --all, not both")
				output.Error("%v", err)
				return err
			}

			window, err := parseDateWindow(day, from, to, app.Config.Location())
			if err != nil {
				output.Error("%v", err)
				return err
			}

			result, err := app.FeedService(noCache).Get(ctx, args[0], timeframe, rng)
			if err != nil {
				output.Error("Failed to get data: %v", err)
				return err
			}

			if all {
				return displayAllSignals(output, app, result.Symbol, result.Timeframe, rng, result.Candles, window)
			}
			return displaySignals(output, app, pattern, result.Symbol, result.Timeframe, rng, result.Candles, window)
		},
	}

	cmd.Flags().StringP("pattern", "p", "", "Single candlestick pattern, e.g. KICKING")
	cmd.Flags().BoolP("all", "a", false, "Scan all catalog patterns")
	cmd.Flags().String("date", "", "Filter to one day (YYYY-MM-DD)")
	cmd.Flags().String("from", "", "Start day for range filter, inclusive (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End day for range filter, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringP("timeframe", "t", app.Config.Data.Timeframe, "Timeframe (M1, M5, M15, M30, H1, H4, D1 or raw interval)")
	cmd.Flags().StringP("range", "r", app.Config.Data.Range, "History range (e.g. 60d, 6mo, 1y, max)")
	cmd.Flags().Bool("no-cache", false, "Bypass the local cache")

	return cmd
}

func filterSignals(signals []rank.Signal, window dateWindow) []rank.Signal {
	if !window.active() {
		return signals
	}
	filtered := make([]rank.Signal, 0, len(signals))
	for _, sig := range signals {
		if window.contains(sig.Timestamp) {
			filtered = append(filtered, sig)
		}
	}
	return filtered
}

func displaySignals(output *Output, app *App, pattern, symbol, timeframe, rng string, candles []models.Candle, window dateWindow) error {
	signals, err := app.Evaluator.Signals(candles, pattern)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	signals = filterSignals(signals, window)

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"symbol":    symbol,
			"timeframe": timeframe,
			"range":     rng,
			"pattern":   pattern,
			"count":     len(signals),
			"signals":   signalRows(signals, candles),
		})
	}

	if len(signals) == 0 {
		output.Printf("No signals for pattern %s on range %s timeframe %s%s\n",
			pattern, rng, timeframe, window.describe())
		return nil
	}

	output.Bold("Found signals for %s (%s, %s)%s:", pattern, timeframe, rng, window.describe())
	output.Println()
	renderSignalTable(output, timeframe, signals, candles)
	return nil
}

func displayAllSignals(output *Output, app *App, symbol, timeframe, rng string, candles []models.Candle, window dateWindow) error {
	names := app.Evaluator.Catalog().Names()

	if output.IsJSON() {
		all := make(map[string]interface{}, len(names))
		for _, name := range names {
			signals, err := app.Evaluator.Signals(candles, name)
			if err != nil {
				return err
			}
			all[name] = signalRows(filterSignals(signals, window), candles)
		}
		return output.JSON(map[string]interface{}{
			"symbol":    symbol,
			"timeframe": timeframe,
			"range":     rng,
			"patterns":  all,
		})
	}

	output.Info("Scanning all patterns for %s (%s, %s)%s...", symbol, timeframe, rng, window.describe())
	output.Println()

	foundAny := false
	for _, name := range names {
		signals, err := app.Evaluator.Signals(candles, name)
		if err != nil {
			return err
		}
		signals = filterSignals(signals, window)
		if len(signals) == 0 {
			output.Dim("%s: no signals", name)
			continue
		}

		foundAny = true
		output.Bold("%s:", name)
		renderSignalTable(output, timeframe, signals, candles)
		output.Println()
	}

	if !foundAny {
		output.Printf("No signals for any pattern on range %s timeframe %s%s\n",
			rng, timeframe, window.describe())
	}
	return nil
}

type signalRow struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	Close     float64   `json:"close"`
}

func signalRows(signals []rank.Signal, candles []models.Candle) []signalRow {
	rows := make([]signalRow, 0, len(signals))
	for _, sig := range signals {
		row := signalRow{Timestamp: sig.Timestamp, Value: sig.Value}
		if sig.Index >= 0 && sig.Index < len(candles) {
			row.Close = candles[sig.Index].Close
		}
		rows = append(rows, row)
	}
	return rows
}

func renderSignalTable(output *Output, timeframe string, signals []rank.Signal, candles []models.Candle) {
	table := NewTable(output, "Date/Time", "Signal", "Close")
	for _, sig := range signals {
		dateStr := FormatDateTime(sig.Timestamp)
		if timeframe == "1d" {
			dateStr = FormatDate(sig.Timestamp)
		}
		closeStr := "-"
		if sig.Index >= 0 && sig.Index < len(candles) {
			closeStr = FormatPrice(candles[sig.Index].Close)
		}
		table.AddRow(dateStr, output.SignalLabel(sig.Value), closeStr)
	}
	table.Render()
}
