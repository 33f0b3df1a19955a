package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matveld/bms/core/cellstatus"
	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/health"
	"github.com/matveld/bms/core/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score <cells.json>",
	Short: "Classify and score cells from a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

// readCells loads a cells document: either an export report or a plain
// mapping of cell id to attributes.
func readCells(path string) (map[string]model.Cell, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report engine.Report
	if err := json.Unmarshal(data, &report); err == nil && len(report.Cells) > 0 {
		return report.CellMap(), nil
	}
	var cells map[string]model.Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("decode cells document: %w", err)
	}
	return cells, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	cells, err := readCells(args[0])
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CELL\tSTATUS\tHEALTH\tVOLTAGE\tTEMP\tCYCLES\tSOC")
	for _, id := range ids {
		c := cells[id]
		c.ID = id
		status := cellstatus.Classify(c)
		r := health.Score(c)
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			id, status, r.Overall, r.Voltage, r.Temperature, r.Cycles, r.SoC)
	}
	return w.Flush()
}
