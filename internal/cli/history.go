// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"candlerank/internal/feed"
	"candlerank/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved ranking runs or show one run",
		Long: `List previously saved ranking runs, or show the full table for one
run. The run id may be abbreviated to any unique prefix.`,
		Example: `  candlerank history
  candlerank history --symbol EURUSD --limit 5
  candlerank history 0a1b2c3d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Run history unavailable: store not initialized")
				return fmt.Errorf("store not initialized")
			}

			if len(args) == 1 {
				return showRun(ctx, output, app, args[0])
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")
			return listRuns(ctx, output, app, symbol, limit)
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "Filter runs by symbol")
	cmd.Flags().IntP("limit", "l", 20, "Maximum runs to list")

	return cmd
}

func showRun(ctx context.Context, output *Output, app *App, id string) error {
	run, err := app.Store.RankRun(ctx, id)
	if err != nil {
		output.Error("Failed to load run: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(run)
	}

	output.Dim("Run %s, created %s", run.ID, FormatDateTime(run.CreatedAt))
	output.Println()
	displayRankRun(output, run, 0)
	return nil
}

func listRuns(ctx context.Context, output *Output, app *App, symbol string, limit int) error {
	filter := store.RankRunFilter{Limit: limit}
	if symbol != "" {
		filter.Symbol = feed.ResolveSymbol(symbol, app.Config.Data.AutoForexSuffix)
	}

	runs, err := app.Store.RankRuns(ctx, filter)
	if err != nil {
		output.Error("Failed to list runs: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"count": len(runs),
			"runs":  runs,
		})
	}

	if len(runs) == 0 {
		output.Println("No saved runs")
		output.Dim("Run 'candlerank rank <symbol>' to create one")
		return nil
	}

	output.Bold("Saved Ranking Runs")
	output.Printf("  %d runs\n\n", len(runs))

	table := NewTable(output, "ID", "Created", "Symbol", "Timeframe", "Range", "Horizon", "Bars")
	for _, run := range runs {
		table.AddRow(
			ShortID(run.ID),
			FormatDateTime(run.CreatedAt),
			run.Symbol,
			run.Timeframe,
			run.Range,
			fmt.Sprintf("%d", run.Horizon),
			fmt.Sprintf("%d", run.Bars),
		)
	}
	table.Render()

	output.Println()
	output.Dim("Use 'candlerank history <id>' to show a run's full table")

	return nil
}
