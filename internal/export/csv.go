// Package export writes ranking reports to CSV.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"candlerank/internal/rank"
)

// rankRow is the CSV shape of one ranking entry.
type rankRow struct {
	Rank        int    `csv:"rank"`
	Pattern     string `csv:"pattern"`
	Direction   string `csv:"direction"`
	Hits        int    `csv:"hits"`
	Successes   int    `csv:"successes"`
	SuccessRate string `csv:"success_rate"`
	AvgReturn   string `csv:"avg_return"`
	Note        string `csv:"note"`
}

// WriteRanking writes ranked entries as CSV. Entries without data get
// empty rate cells and a note instead of a fake 0%.
func WriteRanking(w io.Writer, entries []rank.Entry) error {
	rows := make([]rankRow, 0, len(entries))
	for i, e := range entries {
		row := rankRow{
			Rank:      i + 1,
			Pattern:   e.Pattern,
			Direction: string(e.Direction),
			Hits:      e.Hits,
			Successes: e.Successes,
		}
		switch {
		case e.Err != nil:
			row.Note = e.Err.Error()
		case e.Hits == 0:
			row.Note = "no data"
		default:
			row.SuccessRate = fmt.Sprintf("%.4f", e.SuccessRate)
			row.AvgReturn = fmt.Sprintf("%.6f", e.AvgReturn)
		}
		rows = append(rows, row)
	}

	return gocsv.Marshal(&rows, w)
}

// WriteRankingFile writes ranked entries to a CSV file at path.
func WriteRankingFile(path string, entries []rank.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteRanking(file, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
