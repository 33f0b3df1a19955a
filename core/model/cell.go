package model

import "fmt"

// Cell is a single battery cell tracked by the engine. Attributes are plain
// telemetry and configuration values; the registry owns the canonical copy.
type Cell struct {
	ID          string    `json:"id"`
	Voltage     float64   `json:"voltage"`     // terminal voltage in V
	Current     float64   `json:"current"`     // signed current in A, positive when charging
	Temperature float64   `json:"temperature"` // °C
	CapacityAh  float64   `json:"capacity_ah"` // rated capacity in Ah
	MinVoltage  float64   `json:"min_voltage"`
	MaxVoltage  float64   `json:"max_voltage"`
	SoC         float64   `json:"soc"` // state of charge, 0-100
	CycleCount  int       `json:"cycle_count"`
	Chemistry   Chemistry `json:"chemistry"`
}

// NewCell builds a cell with chemistry-derived voltage bounds and defaults.
// The chemistry is inferred from the id when it is empty.
func NewCell(id string, chem Chemistry) Cell {
	if chem == "" {
		chem = InferChemistry(id)
	}
	p := chem.Profile()
	return Cell{
		ID:          id,
		Voltage:     p.Nominal,
		Temperature: 25.0,
		MinVoltage:  p.Min,
		MaxVoltage:  p.Max,
		SoC:         50,
		Chemistry:   chem,
	}
}

// Validate checks the registration invariants.
func (c Cell) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cell id must not be empty")
	}
	if c.MinVoltage >= c.MaxVoltage {
		return fmt.Errorf("min_voltage %.2f must be below max_voltage %.2f", c.MinVoltage, c.MaxVoltage)
	}
	if c.CapacityAh < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if c.SoC < 0 || c.SoC > 100 {
		return fmt.Errorf("soc %.1f outside [0,100]", c.SoC)
	}
	if c.CycleCount < 0 {
		return fmt.Errorf("cycle count must not be negative")
	}
	return nil
}

// CellPatch is a partial cell update. Nil fields are left untouched.
type CellPatch struct {
	Voltage     *float64   `json:"voltage,omitempty"`
	Current     *float64   `json:"current,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	CapacityAh  *float64   `json:"capacity_ah,omitempty"`
	MinVoltage  *float64   `json:"min_voltage,omitempty"`
	MaxVoltage  *float64   `json:"max_voltage,omitempty"`
	SoC         *float64   `json:"soc,omitempty"`
	CycleCount  *int       `json:"cycle_count,omitempty"`
	Chemistry   *Chemistry `json:"chemistry,omitempty"`
}

// Apply merges the patch into a copy of the cell and returns it.
func (p CellPatch) Apply(c Cell) Cell {
	if p.Voltage != nil {
		c.Voltage = *p.Voltage
	}
	if p.Current != nil {
		c.Current = *p.Current
	}
	if p.Temperature != nil {
		c.Temperature = *p.Temperature
	}
	if p.CapacityAh != nil {
		c.CapacityAh = *p.CapacityAh
	}
	if p.MinVoltage != nil {
		c.MinVoltage = *p.MinVoltage
	}
	if p.MaxVoltage != nil {
		c.MaxVoltage = *p.MaxVoltage
	}
	if p.SoC != nil {
		c.SoC = *p.SoC
	}
	if p.CycleCount != nil {
		c.CycleCount = *p.CycleCount
	}
	if p.Chemistry != nil {
		c.Chemistry = *p.Chemistry
	}
	return c
}

// TouchesBounds reports whether the patch modifies the voltage bounds.
// Updates that leave the bounds alone skip bound re-validation.
func (p CellPatch) TouchesBounds() bool {
	return p.MinVoltage != nil || p.MaxVoltage != nil
}

// Validate checks the fields the patch would change against the cell
// invariants, given the merged result.
func (p CellPatch) Validate(merged Cell) error {
	if p.TouchesBounds() && merged.MinVoltage >= merged.MaxVoltage {
		return fmt.Errorf("min_voltage %.2f must be below max_voltage %.2f", merged.MinVoltage, merged.MaxVoltage)
	}
	if p.CapacityAh != nil && merged.CapacityAh < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if p.SoC != nil && (merged.SoC < 0 || merged.SoC > 100) {
		return fmt.Errorf("soc %.1f outside [0,100]", merged.SoC)
	}
	if p.CycleCount != nil && merged.CycleCount < 0 {
		return fmt.Errorf("cycle count must not be negative")
	}
	return nil
}
