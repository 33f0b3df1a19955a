package simulator

import "github.com/matveld/bms/core/model"

// SampleCells returns the two demo cells used by `bms serve --seed` and
// the quickstart examples.
func SampleCells() []model.Cell {
	return []model.Cell{
		{
			ID:          "cell_1_lfp",
			Voltage:     3.2,
			Current:     2.5,
			Temperature: 28.5,
			CapacityAh:  8.0,
			MinVoltage:  2.8,
			MaxVoltage:  3.6,
			SoC:         85,
			CycleCount:  150,
			Chemistry:   model.ChemistryLFP,
		},
		{
			ID:          "cell_2_nmc",
			Voltage:     3.7,
			Current:     1.8,
			Temperature: 32.1,
			CapacityAh:  6.66,
			MinVoltage:  3.2,
			MaxVoltage:  4.0,
			SoC:         78,
			CycleCount:  89,
			Chemistry:   model.ChemistryNMC,
		},
	}
}
