package emergency

import (
	"time"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/core/registry"
	"github.com/matveld/bms/internal/eventbus"
)

// Controller implements the last-resort safety actions. Both actions are
// unconditional direct overwrites over the whole fleet and never fail.
type Controller struct {
	reg  *registry.Registry
	elog *eventlog.Log
	bus  *eventbus.TypedBus[events.EmergencyEvent]
}

// New creates a controller. elog and bus may be nil in tests.
func New(reg *registry.Registry, elog *eventlog.Log, bus *eventbus.TypedBus[events.EmergencyEvent]) *Controller {
	return &Controller{reg: reg, elog: elog, bus: bus}
}

// Shutdown zeroes current and voltage on every cell. Unlike the batch
// emergency stop it also drops the voltage, representing a hard fault
// state.
func (c *Controller) Shutdown() int {
	n := c.reg.Sweep(func(cell *model.Cell) {
		cell.Current = 0
		cell.Voltage = 0
	})
	c.append(eventlog.SeverityCritical, "EMERGENCY SHUTDOWN ACTIVATED")
	c.publish("shutdown", n)
	return n
}

// Restart brings every cell back to its chemistry's safe defaults:
// nominal voltage, no current, 25 °C.
func (c *Controller) Restart() int {
	n := c.reg.Sweep(func(cell *model.Cell) {
		cell.Voltage = cell.Chemistry.Profile().Nominal
		cell.Current = 0
		cell.Temperature = 25.0
	})
	c.append(eventlog.SeverityInfo, "System restart completed")
	c.publish("restart", n)
	return n
}

func (c *Controller) append(sev eventlog.Severity, msg string) {
	if c.elog != nil {
		c.elog.Append(sev, msg)
	}
}

func (c *Controller) publish(action string, n int) {
	if c.bus != nil {
		c.bus.Publish(events.EmergencyEvent{Action: action, Affected: n, Time: time.Now()})
	}
}
