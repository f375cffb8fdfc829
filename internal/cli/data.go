// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"candlerank/internal/feed"
	"candlerank/internal/logging"
	"candlerank/internal/models"
)

// addDataCommands adds market data commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))
}

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data <symbol>",
		Short: "Fetch historical OHLCV data",
		Long: `Fetch historical OHLCV (Open, High, Low, Close, Volume) data for a symbol.

Six-letter forex pairs get the Yahoo '=X' suffix appended automatically.
Data is cached locally for faster subsequent access.`,
		Example: `  candlerank data EURUSD
  candlerank data GBPUSD --timeframe M15 --range 60d
  candlerank data BTC-USD --timeframe 1h --range 30d --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			timeframe, _ := cmd.Flags().GetString("timeframe")
			rng, _ := cmd.Flags().GetString("range")
			limit, _ := cmd.Flags().GetInt("limit")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			result, err := app.FeedService(noCache).Get(ctx, args[0], timeframe, rng)
			if err != nil {
				output.Error("Failed to get data: %v", err)
				return err
			}
			logging.LogFetch(app.Logger, result.Symbol, result.Timeframe, rng, len(result.Candles), result.FromCache)
			if result.CacheErr != nil {
				output.Warning("Cache write failed: %v", result.CacheErr)
			}

			candles := result.Candles
			if limit > 0 && len(candles) > limit {
				candles = candles[len(candles)-limit:]
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    result.Symbol,
					"timeframe": result.Timeframe,
					"range":     rng,
					"count":     len(candles),
					"cached":    result.FromCache,
					"candles":   candles,
				})
			}

			return displayCandles(output, result, candles)
		},
	}

	cmd.Flags().StringP("timeframe", "t", app.Config.Data.Timeframe, "Timeframe (M1, M5, M15, M30, H1, H4, D1 or 1m, 5m, 15m, 30m, 1h, 4h, 1d)")
	cmd.Flags().StringP("range", "r", app.Config.Data.Range, "History range (e.g. 60d, 6mo, 1y, max)")
	cmd.Flags().IntP("limit", "l", 0, "Limit number of candles to display (0 for all)")
	cmd.Flags().Bool("no-cache", false, "Bypass the local cache")

	return cmd
}

func displayCandles(output *Output, result feed.Result, candles []models.Candle) error {
	source := SourceYahoo
	if result.FromCache {
		source = SourceCache
	}

	output.Bold("%s - %s %s", result.Symbol, result.Timeframe, output.SourceTag(source))
	output.Printf("  %d candles\n\n", len(candles))

	table := NewTable(output, "Date/Time", "Open", "High", "Low", "Close", "Volume", "Change")

	for i, c := range candles {
		var change string
		if i > 0 && candles[i-1].Close != 0 {
			pctChange := ((c.Close - candles[i-1].Close) / candles[i-1].Close) * 100
			change = output.FormatReturn(pctChange)
		} else {
			change = "-"
		}

		dateStr := FormatDateTime(c.Timestamp)
		if result.Timeframe == "1d" {
			dateStr = FormatDate(c.Timestamp)
		}

		table.AddRow(
			dateStr,
			FormatPrice(c.Open),
			output.Green(FormatPrice(c.High)),
			output.Red(FormatPrice(c.Low)),
			FormatPrice(c.Close),
			FormatVolume(c.Volume),
			change,
		)
	}

	table.Render()
	return nil
}
