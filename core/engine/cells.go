package engine

import (
	"fmt"

	"github.com/matveld/bms/core/cellstatus"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/health"
	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/kpi"
	"github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/core/model"
)

// RegisterCell adds a cell to the registry.
func (e *Engine) RegisterCell(c model.Cell) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.reg.Register(c); err != nil {
		return err
	}
	e.recordFleetSize(e.reg.Len())
	return nil
}

// RemoveCell removes a cell and drops its telemetry history.
func (e *Engine) RemoveCell(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.reg.Remove(id); err != nil {
		return err
	}
	e.hist.Drop(id)
	e.recordFleetSize(e.reg.Len())
	return nil
}

// UpdateCell applies a partial update to a cell.
func (e *Engine) UpdateCell(id string, p model.CellPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Update(id, p)
}

// Cell returns a copy of one cell.
func (e *Engine) Cell(id string) (model.Cell, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.Get(id)
}

// Cells returns all cells in registration order.
func (e *Engine) Cells() []model.Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.List()
}

// ResetCell returns one cell to an idle state: current zeroed and
// temperature back to ambient. Voltage is left untouched.
func (e *Engine) ResetCell(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.reg.Mutate(id, func(c *model.Cell) {
		c.Current = 0
		c.Temperature = 25.0
	})
	if err != nil {
		return err
	}
	e.elog.Append(eventlog.SeverityInfo, fmt.Sprintf("Cell %s reset", id))
	if c, err := e.reg.Get(id); err == nil {
		e.buses.Cell.Publish(events.CellEvent{Kind: events.CellReset, Cell: c, Time: e.now()})
	}
	return nil
}

// RecordTelemetry applies one telemetry sample to a cell, appends it to
// the history and accrues throughput KPI. The high frequency path writes
// no event-log entry. When auto shutdown is enabled and the updated cell
// classifies Critical its current is zeroed immediately.
func (e *Engine) RecordTelemetry(id string, s history.Sample) (model.Cell, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Time.IsZero() {
		s.Time = e.now()
	}

	patch := model.CellPatch{
		Voltage:     &s.Voltage,
		Current:     &s.Current,
		Temperature: &s.Temperature,
		SoC:         &s.SoC,
	}
	if err := e.reg.Update(id, patch); err != nil {
		return model.Cell{}, err
	}

	prev, hasPrev := e.hist.Last(id)
	e.hist.Append(id, s)
	if hasPrev {
		rec := kpi.FromSamples(id, prev, s)
		if rec.Throughput() > 0 {
			if err := e.kpis.Add(rec); err != nil && e.log != nil {
				e.log.Errorf("kpi store: %v", err)
			}
		}
	}

	c, err := e.reg.Get(id)
	if err != nil {
		return model.Cell{}, err
	}
	status := cellstatus.Classify(c)
	e.recordCellState(metrics.CellStateEvent{Cell: c, Status: status.String(), Component: component, Time: s.Time})
	e.recordHealth(metrics.HealthEvent{CellID: id, Report: health.Score(c), Time: s.Time})

	if e.cfg.AutoShutdownOnCritical && status == cellstatus.StatusCritical && c.Current != 0 {
		_ = e.reg.Mutate(id, func(c *model.Cell) { c.Current = 0 })
		e.elog.Append(eventlog.SeverityCritical, fmt.Sprintf("Cell %s critical - current zeroed", id))
		c, _ = e.reg.Get(id)
	}
	return c, nil
}

// SeedHistory backfills n hourly synthetic samples per cell and converts
// them into throughput KPI records. It returns the number of samples
// written.
func (e *Engine) SeedHistory(ids []string, n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	written := e.hist.Seed(ids, n, e.now())
	for _, id := range ids {
		if err := kpi.Backfill(e.kpis, id, e.hist.Samples(id)); err != nil && e.log != nil {
			e.log.Errorf("kpi backfill %s: %v", id, err)
		}
	}
	return written
}
