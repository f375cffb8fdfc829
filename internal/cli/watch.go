// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"candlerank/internal/feed"
	"candlerank/internal/models"
	"candlerank/internal/notify"
	"candlerank/internal/watch"
)

// addWatchCommands adds scheduled ranking commands.
func addWatchCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newWatchCmd(app))
}

// noopRankNotifier drops cycle results when no channel is configured.
type noopRankNotifier struct{}

func (noopRankNotifier) SendRank(ctx context.Context, run *models.RankRun, top int) error {
	return nil
}

func (noopRankNotifier) SendError(ctx context.Context, err error, context string) error {
	return nil
}

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <symbol>",
		Short: "Re-run the ranking on a schedule",
		Long: `Run the fetch and rank pipeline on a cron schedule until interrupted.

The schedule uses six-field cron expressions with a leading seconds
field, or descriptors like @hourly. Without --notify each cycle prints
the ranking report to the terminal; with --notify delivery goes through
the configured notification channels, which include a terminal channel
by default. One cycle runs immediately at startup.`,
		Example: `  candlerank watch EURUSD
  candlerank watch EURUSD --cron "0 */15 * * * *" --timeframe M15
  candlerank watch GBPUSD --cron "@hourly" --notify --top 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			cronExpr, _ := cmd.Flags().GetString("cron")
			notifyFlag, _ := cmd.Flags().GetBool("notify")
			horizon, _ := cmd.Flags().GetInt("horizon")
			timeframe, _ := cmd.Flags().GetString("timeframe")
			rng, _ := cmd.Flags().GetString("range")
			top, _ := cmd.Flags().GetInt("top")
			save, _ := cmd.Flags().GetBool("save")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			params := rankParams{
				symbol:    args[0],
				timeframe: timeframe,
				rng:       rng,
				horizon:   horizon,
				save:      save,
			}

			var notifier watch.Notifier = noopRankNotifier{}
			notifyEnabled := false
			if notifyFlag {
				if app.Notifier != nil && app.Notifier.HasChannels() {
					notifier = app.Notifier
					notifyEnabled = true
				} else {
					output.Warning("No notification channels configured, running without notifications")
				}
			}

			runFn := func(runCtx context.Context) (*models.RankRun, error) {
				cycleCtx, cancel := context.WithTimeout(runCtx, 120*time.Second)
				defer cancel()

				run, _, err := executeRank(cycleCtx, app, params)
				if err != nil {
					return nil, err
				}

				if !notifyEnabled {
					output.Println()
					output.Println(notify.FormatRankReport(run, top))
				}
				return run, nil
			}

			w := watch.New(ctx, app.Logger, notifier, runFn, top)
			if err := w.Register(cronExpr); err != nil {
				output.Error("Invalid cron expression: %v", err)
				return err
			}

			symbol := feed.ResolveSymbol(args[0], app.Config.Data.AutoForexSuffix)
			lines := []string{
				fmt.Sprintf("Symbol:    %s", symbol),
				fmt.Sprintf("Timeframe: %s", timeframe),
				fmt.Sprintf("Range:     %s", rng),
				fmt.Sprintf("Horizon:   %d bars", horizon),
				fmt.Sprintf("Schedule:  %s", cronExpr),
				fmt.Sprintf("Notify:    %v", notifyEnabled),
			}
			if app.Store != nil {
				if tf, err := feed.ResolveTimeframe(timeframe); err == nil {
					last, err := app.Store.LastTimestamp(ctx, symbol, tf.Name)
					if err == nil && !last.IsZero() {
						lines = append(lines, fmt.Sprintf("Cached to: %s", FormatDateTime(last)))
					}
				}
			}
			output.Box("Watch Mode", lines)
			output.Dim("Press Ctrl+C to stop")

			w.RunNow()
			w.Start()
			<-ctx.Done()

			output.Println()
			output.Info("Shutting down...")
			w.Stop()
			return nil
		},
	}

	cmd.Flags().String("cron", "0 0 * * * *", "Cron schedule with seconds field")
	cmd.Flags().Bool("notify", false, "Send each cycle's report to notification channels")
	cmd.Flags().Int("horizon", app.Config.Rank.Horizon, "Forward-return window in bars")
	cmd.Flags().StringP("timeframe", "t", app.Config.Data.Timeframe, "Timeframe (M1, M5, M15, M30, H1, H4, D1 or raw interval)")
	cmd.Flags().StringP("range", "r", app.Config.Data.Range, "History range (e.g. 60d, 6mo, 1y, max)")
	cmd.Flags().Int("top", app.Config.Rank.Top, "Limit reports to the top N patterns (0 for all)")
	cmd.Flags().Bool("save", app.Config.Rank.SaveRuns, "Persist each cycle's run to history")

	return cmd
}
