package engine

import (
	"strconv"

	"github.com/matveld/bms/core/batch"
	"github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/core/monitoring"
)

// ApplyBatch runs one batch operation over every registered cell and
// returns the number of cells touched.
func (e *Engine) ApplyBatch(op batch.Operation) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.batch.Apply(op)
	if err != nil {
		return 0, err
	}
	e.recordBatchOp(metrics.BatchOpEvent{Operation: string(op), Affected: n, Time: e.now()})
	return n, nil
}

// EmergencyShutdown zeroes current and voltage on every cell. The action
// is reported to the incident monitor.
func (e *Engine) EmergencyShutdown() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.em.Shutdown()
	monitoring.CaptureMessage("emergency shutdown activated", map[string]string{
		"component": component,
		"affected":  strconv.Itoa(n),
	})
	e.recordEmergency(metrics.EmergencyOpEvent{Action: "shutdown", Affected: n, Time: e.now()})
	return n
}

// EmergencyRestart returns every cell to its chemistry-dependent safe
// defaults.
func (e *Engine) EmergencyRestart() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.em.Restart()
	e.recordEmergency(metrics.EmergencyOpEvent{Action: "restart", Affected: n, Time: e.now()})
	return n
}
