package health

import (
	"math"

	"github.com/matveld/bms/core/model"
)

// Report carries the component health scores of one cell, each 0-100.
type Report struct {
	Overall     float64 `json:"overall"`
	Voltage     float64 `json:"voltage"`
	Temperature float64 `json:"temperature"`
	Cycles      float64 `json:"cycles"`
	SoC         float64 `json:"soc"`
}

// Score computes the composite health of a cell. Pure; no side effects.
//
// Voltage and SoC score full marks inside their comfort bands and decay
// linearly with distance from the band center outside. Temperature decays
// above 35 °C, cycles decay linearly to zero at 1000.
func Score(c model.Cell) Report {
	r := Report{
		Voltage:     bandScore(c.Voltage, 3.0, 4.0, 3.5, 50),
		Temperature: 100,
		Cycles:      clamp(100 - float64(c.CycleCount)/1000*100),
		SoC:         bandScore(c.SoC, 20, 80, 50, 2),
	}
	if c.Temperature > 35 {
		r.Temperature = clamp(100 - (c.Temperature-35)*5)
	}
	r.Overall = (r.Voltage + r.Temperature + r.Cycles + r.SoC) / 4
	return r
}

func bandScore(v, lo, hi, center, slope float64) float64 {
	if v >= lo && v <= hi {
		return 100
	}
	return clamp(100 - math.Abs(v-center)*slope)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
