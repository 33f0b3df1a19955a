package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/pkg/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <cells.json>",
	Short: "Produce an export document from a cells JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout when empty)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cells, err := readCells(args[0])
	if err != nil {
		return err
	}

	eng := engine.New(engine.Options{})
	for _, o := range eng.Import(cells) {
		if o.Action == engine.ImportFailed {
			return fmt.Errorf("import %s: %s", o.CellID, o.Error)
		}
	}
	report := eng.Export()

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "json":
		return export.WriteJSON(w, report)
	case "csv":
		return export.WriteCSV(w, report.Cells)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
}
