package kpi

import "time"

// Record aggregates charge throughput for a cell and day.
type Record struct {
	CellID       string
	Date         time.Time
	ChargedAh    float64
	DischargedAh float64
}

// Throughput returns the total amp-hours moved through the cell.
func (r Record) Throughput() float64 {
	return r.ChargedAh + r.DischargedAh
}

// CycleEquivalent returns the full equivalent cycles represented by the
// record for a cell of the given capacity.
func (r Record) CycleEquivalent(capacityAh float64) float64 {
	if capacityAh <= 0 {
		return 0
	}
	return r.Throughput() / (2 * capacityAh)
}
