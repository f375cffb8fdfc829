// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCommandsCmd(app))
	rootCmd.AddCommand(newExamplesCmd(app))
	rootCmd.AddCommand(newQuickstartCmd(app))
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		Long:  "Display all available commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Candlerank Commands")
			output.Println()

			categories := []struct {
				name     string
				commands []struct {
					cmd  string
					desc string
				}
			}{
				{
					name: "Market Data",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"data <symbol>", "Fetch historical OHLCV data"},
						{"patterns", "List the pattern catalog"},
						{"signals <symbol>", "List pattern signals on a series"},
					},
				},
				{
					name: "Ranking",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"rank <symbol>", "Rank patterns by forward-return success"},
						{"history [run-id]", "List saved runs / show one run"},
						{"watch <symbol>", "Re-run the ranking on a schedule"},
					},
				},
				{
					name: "Utilities",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"config show/path/validate/edit", "Configuration"},
						{"version", "Version information"},
					},
				},
				{
					name: "Help",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"help <command>", "Detailed help"},
						{"commands", "List all commands"},
						{"examples", "Common workflows"},
						{"quickstart", "New user guide"},
					},
				},
			}

			for _, cat := range categories {
				output.Bold(cat.name)
				for _, c := range cat.commands {
					output.Printf("  %-34s %s\n", output.Cyan(c.cmd), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'candlerank help <command>' for detailed help on any command")

			return nil
		},
	}
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		Long:  "Display examples of common ranking workflows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Inspect a Series",
					commands: []string{
						"candlerank data EURUSD                          # Daily candles, default range",
						"candlerank data EURUSD -t M15 -r 60d            # 15-minute bars over 60 days",
						"candlerank data BTC-USD -t 1h -r 30d -l 20      # Last 20 hourly bars",
					},
				},
				{
					title: "Find Pattern Signals",
					commands: []string{
						"candlerank patterns                             # See what the catalog knows",
						"candlerank signals EURUSD -p KICKING -t M5 -r 60d",
						"candlerank signals EURUSD --all --date 2025-04-01",
						"candlerank signals GBPUSD --all --from 2025-04-01 --to 2025-04-10",
					},
				},
				{
					title: "Rank Patterns",
					commands: []string{
						"candlerank rank EURUSD                          # Full catalog, config defaults",
						"candlerank rank EURUSD -t H1 -r 2y --horizon 10 # Hourly, 10-bar horizon",
						"candlerank rank GBPUSD --top 10 --csv out.csv   # Export the ranking",
					},
				},
				{
					title: "Filter Out News Days",
					commands: []string{
						"candlerank rank EURUSD --exclude-dates nfp.txt  # Skip listed dates",
						"candlerank rank EURUSD --exclude-dates nfp.txt --compare",
					},
				},
				{
					title: "Track Runs Over Time",
					commands: []string{
						"candlerank history                              # Recent saved runs",
						"candlerank history -s EURUSD -l 5               # Last five EURUSD runs",
						"candlerank history 0a1b2c3d                     # One run's full table",
					},
				},
				{
					title: "Watch Mode",
					commands: []string{
						"candlerank watch EURUSD                         # Re-rank hourly",
						"candlerank watch EURUSD --cron \"0 */15 * * * *\" -t M15",
						"candlerank watch GBPUSD --cron @hourly --notify --top 5",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}

func newQuickstartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		Long:  "Step-by-step guide for new users.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Candlerank - Quick Start Guide")
			output.Println()

			steps := []struct {
				step  int
				title string
				desc  string
				cmd   string
			}{
				{
					step:  1,
					title: "Locate the Config",
					desc:  "The first run creates a template config you can edit.",
					cmd:   "candlerank config path  # Shows config directory",
				},
				{
					step:  2,
					title: "Fetch a Series",
					desc:  "Pull daily candles for a forex pair. The '=X' suffix is automatic.",
					cmd:   "candlerank data EURUSD",
				},
				{
					step:  3,
					title: "Browse the Catalog",
					desc:  "See every pattern and its expected direction.",
					cmd:   "candlerank patterns",
				},
				{
					step:  4,
					title: "Rank the Patterns",
					desc:  "Score every pattern by forward-return success.",
					cmd:   "candlerank rank EURUSD --top 10",
				},
				{
					step:  5,
					title: "Dig Into a Pattern",
					desc:  "List exactly where a top pattern fired.",
					cmd:   "candlerank signals EURUSD --pattern ENGULFING",
				},
				{
					step:  6,
					title: "Revisit Past Runs",
					desc:  "Saved runs let you compare rankings over time.",
					cmd:   "candlerank history",
				},
				{
					step:  7,
					title: "Automate It",
					desc:  "Re-rank on a schedule and push reports to Telegram.",
					cmd:   "candlerank watch EURUSD --notify",
				},
			}

			for _, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), s.step, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Configuration Files")
			output.Println()
			output.Printf("  %s - Data, ranking, cache, and notification settings\n", output.Cyan("config.toml"))
			output.Printf("  %s - Telegram bot credentials\n", output.Cyan("credentials.toml"))
			output.Println()

			output.Bold("Getting Help")
			output.Println()
			output.Printf("  %s - List all commands\n", output.Cyan("candlerank commands"))
			output.Printf("  %s - Common workflows\n", output.Cyan("candlerank examples"))
			output.Printf("  %s - Help for any command\n", output.Cyan("candlerank help <command>"))

			return nil
		},
	}
}
