// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"candlerank/internal/errors"
	"candlerank/internal/export"
	"candlerank/internal/logging"
	"candlerank/internal/models"
	"candlerank/internal/rank"
)

// addRankCommands adds ranking and run history commands.
func addRankCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRankCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

// rankParams holds one ranking invocation's resolved inputs.
type rankParams struct {
	symbol    string
	timeframe string
	rng       string
	horizon   int
	noCache   bool
	save      bool
	excluded  []time.Time
}

// executeRank runs one fetch and rank cycle and optionally persists the
// run. On a failed save the returned run carries an empty ID.
func executeRank(ctx context.Context, app *App, p rankParams) (*models.RankRun, []rank.Entry, error) {
	result, err := app.FeedService(p.noCache).Get(ctx, p.symbol, p.timeframe, p.rng)
	if err != nil {
		return nil, nil, err
	}
	logging.LogFetch(app.Logger, result.Symbol, result.Timeframe, p.rng, len(result.Candles), result.FromCache)

	evaluator := app.Evaluator
	if len(p.excluded) > 0 {
		evaluator = rank.NewEvaluator(app.Evaluator.Catalog(), app.Config.Directions, p.excluded)
	}

	entries, err := evaluator.RankAll(result.Candles, p.horizon)
	if err != nil {
		return nil, nil, err
	}

	errored := 0
	for _, e := range entries {
		if e.Err != nil {
			errored++
		}
	}
	logging.LogRank(app.Logger, result.Symbol, p.horizon, len(entries), errored)

	run := &models.RankRun{
		Symbol:    result.Symbol,
		Timeframe: result.Timeframe,
		Range:     p.rng,
		Horizon:   p.horizon,
		Bars:      len(result.Candles),
		CreatedAt: time.Now().UTC(),
		Results:   entryResults(entries),
	}

	if p.save && app.Store != nil {
		if err := app.Store.SaveRankRun(ctx, run); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to save rank run")
			run.ID = ""
		}
	}

	return run, entries, nil
}

// entryResults converts ranked entries into their persisted form.
func entryResults(entries []rank.Entry) []models.RankResult {
	results := make([]models.RankResult, 0, len(entries))
	for _, e := range entries {
		r := models.RankResult{
			Pattern:     e.Pattern,
			Direction:   string(e.Direction),
			Hits:        e.Hits,
			Successes:   e.Successes,
			SuccessRate: e.SuccessRate,
			AvgReturn:   e.AvgReturn,
		}
		if e.Err != nil {
			r.Err = e.Err.Error()
		}
		results = append(results, r)
	}
	return results
}

func newRankCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <symbol>",
		Short: "Rank patterns by forward-return success",
		Long: `Run every catalog pattern over a price series and rank them by how
often price moved the expected way a fixed number of bars later.

For each non-zero signal the forward return is measured horizon bars
ahead. A signal counts as a success when the return sign matches the
pattern's expected direction. Patterns are ordered by success rate,
then hit count; patterns without qualifying signals report no data and
sort last.

Dates listed in an --exclude-dates file (one YYYY-MM-DD per line) are
skipped, which filters out known news days. With --compare the ranking
runs twice, with and without the exclusions, side by side.`,
		Example: `  candlerank rank EURUSD
  candlerank rank EURUSD --timeframe H1 --range 2y --horizon 10
  candlerank rank GBPUSD --top 10 --csv ranking.csv
  candlerank rank EURUSD --exclude-dates nfp_days.txt --compare`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			horizon, _ := cmd.Flags().GetInt("horizon")
			timeframe, _ := cmd.Flags().GetString("timeframe")
			rng, _ := cmd.Flags().GetString("range")
			top, _ := cmd.Flags().GetInt("top")
			csvPath, _ := cmd.Flags().GetString("csv")
			excludeFile, _ := cmd.Flags().GetString("exclude-dates")
			compare, _ := cmd.Flags().GetBool("compare")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			save, _ := cmd.Flags().GetBool("save")
			noSave, _ := cmd.Flags().GetBool("no-save")

			if compare && excludeFile == "" {
				err := errors.NewValidationError("compare", true, "--compare requires --exclude-dates")
				output.Error("%v", err)
				return err
			}

			var excluded []time.Time
			if excludeFile != "" {
				var err error
				excluded, err = rank.LoadDateFile(excludeFile)
				if err != nil {
					output.Error("Failed to load excluded dates: %v", err)
					return err
				}
			}

			params := rankParams{
				symbol:    args[0],
				timeframe: timeframe,
				rng:       rng,
				horizon:   horizon,
				noCache:   noCache,
				save:      save && !noSave,
				excluded:  excluded,
			}

			if compare {
				return runCompare(ctx, output, app, params, top)
			}

			run, entries, err := executeRank(ctx, app, params)
			if err != nil {
				output.Error("Ranking failed: %v", err)
				return err
			}

			if csvPath != "" {
				if err := export.WriteRankingFile(csvPath, entries); err != nil {
					output.Error("CSV export failed: %v", err)
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(run)
			}

			displayRankRun(output, run, top)
			if csvPath != "" {
				output.Success("Results exported to %s", csvPath)
			}
			if run.ID != "" {
				output.Dim("Saved as run %s", ShortID(run.ID))
			}
			return nil
		},
	}

	cmd.Flags().Int("horizon", app.Config.Rank.Horizon, "Forward-return window in bars")
	cmd.Flags().StringP("timeframe", "t", app.Config.Data.Timeframe, "Timeframe (M1, M5, M15, M30, H1, H4, D1 or raw interval)")
	cmd.Flags().StringP("range", "r", app.Config.Data.Range, "History range (e.g. 60d, 6mo, 1y, max)")
	cmd.Flags().Int("top", app.Config.Rank.Top, "Show only the top N patterns (0 for all)")
	cmd.Flags().String("csv", "", "Export the full ranking to a CSV file")
	cmd.Flags().String("exclude-dates", "", "File with dates to skip, one YYYY-MM-DD per line")
	cmd.Flags().Bool("compare", false, "Rank with and without the excluded dates, side by side")
	cmd.Flags().Bool("no-cache", false, "Bypass the local cache")
	cmd.Flags().Bool("save", app.Config.Rank.SaveRuns, "Persist the run to history")
	cmd.Flags().Bool("no-save", false, "Skip persisting the run to history")

	return cmd
}

// runCompare ranks twice, with and without the excluded dates, and
// renders both rankings keyed by the filtered order.
func runCompare(ctx context.Context, output *Output, app *App, params rankParams, top int) error {
	filtered := params
	filtered.save = false

	unfiltered := params
	unfiltered.save = false
	unfiltered.excluded = nil

	baseRun, baseEntries, err := executeRank(ctx, app, unfiltered)
	if err != nil {
		output.Error("Ranking failed: %v", err)
		return err
	}
	_, filteredEntries, err := executeRank(ctx, app, filtered)
	if err != nil {
		output.Error("Ranking failed: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"symbol":    baseRun.Symbol,
			"timeframe": baseRun.Timeframe,
			"range":     params.rng,
			"horizon":   params.horizon,
			"bars":      baseRun.Bars,
			"all_dates": entryResults(baseEntries),
			"filtered":  entryResults(filteredEntries),
		})
	}

	baseByName := make(map[string]rank.Entry, len(baseEntries))
	for _, e := range baseEntries {
		baseByName[e.Pattern] = e
	}

	output.Bold("Pattern ranking: %s (%s, %s)", baseRun.Symbol, baseRun.Timeframe, params.rng)
	output.Printf("  horizon %d bars, %d candles, %d excluded dates\n\n",
		params.horizon, baseRun.Bars, len(params.excluded))

	rows := filteredEntries
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	table := NewTable(output, "#", "Pattern", "Success (filtered)", "Success (all dates)", "Hits (filtered)", "Hits (all)")
	for i, e := range rows {
		base := baseByName[e.Pattern]
		table.AddRow(
			fmt.Sprintf("%d", i+1),
			e.Pattern,
			compareCell(output, e),
			compareCell(output, base),
			fmt.Sprintf("%d", e.Hits),
			fmt.Sprintf("%d", base.Hits),
		)
	}
	table.Render()

	if top > 0 && len(filteredEntries) > top {
		output.Dim("... and %d more", len(filteredEntries)-top)
	}
	return nil
}

func compareCell(output *Output, e rank.Entry) string {
	if e.Err != nil {
		return output.Red("error")
	}
	if !e.HasData() {
		return output.DimText("no data")
	}
	return FormatRate(e.SuccessRate)
}

// displayRankRun renders a completed run as the standard ranking table.
func displayRankRun(output *Output, run *models.RankRun, top int) {
	output.Bold("Pattern ranking: %s (%s, %s)", run.Symbol, run.Timeframe, run.Range)
	output.Printf("  horizon %d bars, %d candles\n\n", run.Horizon, run.Bars)

	results := run.Results
	if top > 0 && len(results) > top {
		results = results[:top]
	}

	table := NewTable(output, "#", "Pattern", "Direction", "Hits", "Success", "Avg Return")
	for i, r := range results {
		var success, avg string
		switch {
		case r.Err != "":
			success = output.Red("error")
			avg = output.DimText(TruncateString(r.Err, 40))
		case !r.HasData():
			success = output.DimText("no data")
			avg = "-"
		default:
			success = fmt.Sprintf("%s (%d/%d)", FormatRate(r.SuccessRate), r.Successes, r.Hits)
			avg = output.FormatReturn(r.AvgReturn * 100)
		}

		table.AddRow(
			fmt.Sprintf("%d", i+1),
			r.Pattern,
			output.Direction(r.Direction),
			fmt.Sprintf("%d", r.Hits),
			success,
			avg,
		)
	}
	table.Render()

	if top > 0 && len(run.Results) > top {
		output.Dim("... and %d more", len(run.Results)-top)
	}
}
