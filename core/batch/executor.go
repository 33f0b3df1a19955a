package batch

import (
	"errors"
	"time"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/core/registry"
	"github.com/matveld/bms/internal/eventbus"
)

// Operation enumerates the bulk mutations applied uniformly to every
// registered cell.
type Operation string

const (
	OpBalance          Operation = "balance"
	OpEmergencyStop    Operation = "emergency_stop"
	OpResetTemperature Operation = "reset_temperature"
	OpZeroCurrent      Operation = "zero_current"
)

// ErrUnknownOperation is returned for operation kinds the executor does
// not know.
var ErrUnknownOperation = errors.New("unknown batch operation")

// ParseOperation converts the wire label, reporting whether it is known.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpBalance, OpEmergencyStop, OpResetTemperature, OpZeroCurrent:
		return Operation(s), true
	}
	return "", false
}

// Executor sweeps fixed per-cell mutations across the fleet. Sweeps are
// direct field overwrites, not validated updates; the registry lock makes
// each sweep atomic for concurrent readers.
type Executor struct {
	reg  *registry.Registry
	elog *eventlog.Log
	bus  *eventbus.TypedBus[events.BatchEvent]
}

// New creates an executor. elog and bus may be nil in tests.
func New(reg *registry.Registry, elog *eventlog.Log, bus *eventbus.TypedBus[events.BatchEvent]) *Executor {
	return &Executor{reg: reg, elog: elog, bus: bus}
}

// Apply runs one operation over every cell and returns the number of cells
// touched. Exactly one summary log entry is appended per invocation,
// WARNING for the emergency stop, INFO otherwise.
func (e *Executor) Apply(op Operation) (int, error) {
	var (
		fn  func(*model.Cell)
		sev eventlog.Severity
		msg string
	)
	switch op {
	case OpBalance:
		fn = func(c *model.Cell) { c.Current = 1.0 }
		sev, msg = eventlog.SeverityInfo, "Batch balancing operation started"
	case OpEmergencyStop:
		fn = func(c *model.Cell) { c.Current = 0.0 }
		sev, msg = eventlog.SeverityWarning, "Emergency stop - all cells stopped"
	case OpResetTemperature:
		fn = func(c *model.Cell) { c.Temperature = 25.0 }
		sev, msg = eventlog.SeverityInfo, "All cell temperatures reset to 25°C"
	case OpZeroCurrent:
		fn = func(c *model.Cell) { c.Current = 0.0 }
		sev, msg = eventlog.SeverityInfo, "All cell currents set to zero"
	default:
		return 0, ErrUnknownOperation
	}

	n := e.reg.Sweep(fn)
	if e.elog != nil {
		e.elog.Append(sev, msg)
	}
	if e.bus != nil {
		e.bus.Publish(events.BatchEvent{Operation: string(op), Affected: n, Time: time.Now()})
	}
	return n, nil
}
