package kpi

import (
	"math"

	"github.com/matveld/bms/core/history"
)

// FromSamples converts the interval between two consecutive telemetry
// samples into a throughput record, attributing positive current to
// charging and negative current to discharging. A zero record is
// returned when the samples are not in chronological order.
func FromSamples(cellID string, prev, cur history.Sample) Record {
	rec := Record{CellID: cellID, Date: Day(cur.Time)}
	hours := cur.Time.Sub(prev.Time).Hours()
	if hours <= 0 {
		return rec
	}
	ah := math.Abs(cur.Current) * hours
	if cur.Current >= 0 {
		rec.ChargedAh = ah
	} else {
		rec.DischargedAh = ah
	}
	return rec
}

// Backfill processes historical telemetry samples and populates the store.
func Backfill(store Store, cellID string, samples []history.Sample) error {
	for i := 1; i < len(samples); i++ {
		rec := FromSamples(cellID, samples[i-1], samples[i])
		if rec.Throughput() == 0 {
			continue
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}
