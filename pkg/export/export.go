package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/model"
)

// WriteJSON writes the system report to w as indented JSON.
func WriteJSON(w io.Writer, report engine.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

var csvHeader = []string{
	"id", "chemistry", "voltage", "current", "temperature",
	"capacity_ah", "min_voltage", "max_voltage", "soc", "cycle_count",
}

// WriteCSV writes the cells to w in CSV format, one row per cell.
func WriteCSV(w io.Writer, cells []model.Cell) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range cells {
		rec := []string{
			c.ID,
			c.Chemistry.String(),
			formatFloat(c.Voltage),
			formatFloat(c.Current),
			formatFloat(c.Temperature),
			formatFloat(c.CapacityAh),
			formatFloat(c.MinVoltage),
			formatFloat(c.MaxVoltage),
			formatFloat(c.SoC),
			strconv.Itoa(c.CycleCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
