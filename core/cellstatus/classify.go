package cellstatus

import "github.com/matveld/bms/core/model"

// Status is the operational classification of a cell.
type Status string

const (
	StatusGood     Status = "Good"
	StatusWarning  Status = "Warning"
	StatusCritical Status = "Critical"
)

func (s Status) String() string { return string(s) }

// Classify grades a cell. Rules are checked in precedence order, first
// match wins:
//
//  1. Critical: voltage outside [min_voltage, max_voltage] or
//     temperature above 45 °C.
//  2. Warning: temperature above 35 °C or voltage within 0.1 V of the
//     minimum bound.
//  3. Good otherwise.
//
// The function is pure and total; zero-valued fields grade like any other
// reading.
func Classify(c model.Cell) Status {
	if c.Voltage < c.MinVoltage || c.Voltage > c.MaxVoltage || c.Temperature > 45 {
		return StatusCritical
	}
	if c.Temperature > 35 || c.Voltage < c.MinVoltage+0.1 {
		return StatusWarning
	}
	return StatusGood
}

// Counts is a fleet roll-up by status.
type Counts struct {
	Good     int `json:"good"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Count classifies every cell and tallies the result.
func Count(cells []model.Cell) Counts {
	var n Counts
	for _, c := range cells {
		switch Classify(c) {
		case StatusCritical:
			n.Critical++
		case StatusWarning:
			n.Warning++
		default:
			n.Good++
		}
	}
	return n
}

// Parse converts a status label, reporting whether it is known.
func Parse(s string) (Status, bool) {
	switch Status(s) {
	case StatusGood, StatusWarning, StatusCritical:
		return Status(s), true
	}
	return "", false
}
