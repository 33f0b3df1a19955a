package metrics

import (
	"time"

	"github.com/matveld/bms/core/health"
	"github.com/matveld/bms/core/model"
)

// CellStateEvent is a snapshot of a cell together with its classified status.
type CellStateEvent struct {
	Cell      model.Cell
	Status    string
	Component string
	Time      time.Time
}

// FleetSink records cell state snapshots for observability purposes.
type FleetSink interface {
	RecordCellState(ev CellStateEvent) error
}

// TaskLifecycleEvent represents a task entering a new status.
type TaskLifecycleEvent struct {
	TaskID    string
	Type      model.TaskType
	Status    model.TaskStatus
	Priority  model.Priority
	CellCount int
	Time      time.Time
}

// TaskRecorder records task lifecycle transitions.
type TaskRecorder interface {
	RecordTaskLifecycle(ev TaskLifecycleEvent) error
}

// BatchOpEvent captures a batch operation applied across the fleet.
type BatchOpEvent struct {
	Operation string
	Affected  int
	Time      time.Time
}

// BatchRecorder records batch operations.
type BatchRecorder interface {
	RecordBatchOp(ev BatchOpEvent) error
}

// EmergencyOpEvent captures an emergency shutdown or restart.
type EmergencyOpEvent struct {
	Action   string
	Affected int
	Time     time.Time
}

// EmergencyRecorder records emergency actions.
type EmergencyRecorder interface {
	RecordEmergency(ev EmergencyOpEvent) error
}

// HealthEvent carries a computed health report for one cell.
type HealthEvent struct {
	CellID string
	Report health.Report
	Time   time.Time
}

// HealthRecorder records health reports.
type HealthRecorder interface {
	RecordHealth(ev HealthEvent) error
}

// AlertFiredEvent records a maintenance alert raised for a cell.
type AlertFiredEvent struct {
	CellID   string
	Kind     string
	Severity string
	Time     time.Time
}

// AlertRecorder records fired alerts.
type AlertRecorder interface {
	RecordAlert(ev AlertFiredEvent) error
}

// FleetSizeRecorder records the number of registered cells.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink implements FleetSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCellState(CellStateEvent) error         { return nil }
func (NopSink) RecordTaskLifecycle(TaskLifecycleEvent) error { return nil }
func (NopSink) RecordBatchOp(BatchOpEvent) error             { return nil }
func (NopSink) RecordEmergency(EmergencyOpEvent) error       { return nil }
func (NopSink) RecordHealth(HealthEvent) error               { return nil }
func (NopSink) RecordAlert(AlertFiredEvent) error            { return nil }
func (NopSink) RecordFleetSize(int) error                    { return nil }
