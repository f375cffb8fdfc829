// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the candlestick pattern catalog",
		Long: `List every candlestick pattern the detector catalog knows,
with its window width and expected direction.

Signed patterns carry their direction in the signal itself; bullish and
bearish patterns expect the price to move that way after a hit. The
expected direction can be overridden per pattern in the config file.`,
		Example: `  candlerank patterns
  candlerank patterns --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			catalog := app.Evaluator.Catalog()

			type patternInfo struct {
				Name        string `json:"name"`
				Bars        int    `json:"bars"`
				Direction   string `json:"direction"`
				Description string `json:"description"`
			}

			infos := make([]patternInfo, 0, catalog.Len())
			for _, name := range catalog.Names() {
				p, ok := catalog.Get(name)
				if !ok {
					continue
				}
				infos = append(infos, patternInfo{
					Name:        p.Name,
					Bars:        p.Bars,
					Direction:   string(p.Direction),
					Description: p.Description,
				})
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"count":    len(infos),
					"patterns": infos,
				})
			}

			output.Bold("Pattern Catalog")
			output.Printf("  %d patterns\n\n", len(infos))

			table := NewTable(output, "Pattern", "Bars", "Direction", "Description")
			for _, info := range infos {
				table.AddRow(
					info.Name,
					fmt.Sprintf("%d", info.Bars),
					output.Direction(info.Direction),
					info.Description,
				)
			}
			table.Render()

			output.Println()
			output.Dim("Use 'candlerank signals <symbol> --pattern <name>' to list hits")

			return nil
		},
	}
}
