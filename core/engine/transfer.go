package engine

import (
	"sort"
	"time"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/core/monitoring"
)

// Import actions.
const (
	ImportRegistered = "registered"
	ImportUpdated    = "updated"
	ImportFailed     = "error"
)

// ImportOutcome is the per-cell result of an import.
type ImportOutcome struct {
	CellID string `json:"cell_id"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// Import merges a mapping of cell id to attribute bundle into the
// registry. Unknown ids are registered, known ids fully overwritten.
// Each cell succeeds or fails on its own; ids are processed in sorted
// order so outcomes are deterministic.
func (e *Engine) Import(cells map[string]model.Cell) []ImportOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	outcomes := make([]ImportOutcome, 0, len(ids))
	for _, id := range ids {
		c := cells[id]
		c.ID = id

		var action string
		var err error
		if e.reg.Has(id) {
			action = ImportUpdated
			err = e.reg.Update(id, overwritePatch(c))
		} else {
			action = ImportRegistered
			err = e.reg.Register(c)
		}
		if err != nil {
			monitoring.CaptureException(err, map[string]string{"component": "import", "cell_id": id})
			outcomes = append(outcomes, ImportOutcome{CellID: id, Action: ImportFailed, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, ImportOutcome{CellID: id, Action: action})
	}
	e.recordFleetSize(e.reg.Len())
	return outcomes
}

// overwritePatch turns a full attribute bundle into a patch touching
// every field.
func overwritePatch(c model.Cell) model.CellPatch {
	return model.CellPatch{
		Voltage:     &c.Voltage,
		Current:     &c.Current,
		Temperature: &c.Temperature,
		CapacityAh:  &c.CapacityAh,
		MinVoltage:  &c.MinVoltage,
		MaxVoltage:  &c.MaxVoltage,
		SoC:         &c.SoC,
		CycleCount:  &c.CycleCount,
		Chemistry:   &c.Chemistry,
	}
}

// Report is the serializable system document produced by Export.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	TotalCells  int              `json:"total_cells"`
	Cells       []model.Cell     `json:"cells"`
	Tasks       []model.Task     `json:"tasks"`
	Logs        []eventlog.Entry `json:"recent_logs"`
}

// CellMap keys the exported cells by id, the form Import accepts.
func (r Report) CellMap() map[string]model.Cell {
	m := make(map[string]model.Cell, len(r.Cells))
	for _, c := range r.Cells {
		m[c.ID] = c
	}
	return m
}

// exportLogTail bounds the log entries included in a report.
const exportLogTail = 50

// Export produces the full system report: every cell in registration
// order, every task in creation order and the last 50 log entries.
func (e *Engine) Export() Report {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cells := e.reg.List()
	return Report{
		GeneratedAt: e.now(),
		TotalCells:  len(cells),
		Cells:       cells,
		Tasks:       e.tasks.List(),
		Logs:        e.elog.Recent(exportLogTail),
	}
}
