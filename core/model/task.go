package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskType enumerates the kinds of work a task schedules against its cells.
type TaskType string

const (
	TaskCharge    TaskType = "charge"    // CC-CV charge
	TaskDischarge TaskType = "discharge" // CC-CD discharge
	TaskIdle      TaskType = "idle"
	TaskBalance   TaskType = "balance"
)

// Valid reports whether the task type is known.
func (t TaskType) Valid() bool {
	switch t {
	case TaskCharge, TaskDischarge, TaskIdle, TaskBalance:
		return true
	}
	return false
}

func (t TaskType) String() string { return string(t) }

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusQueued    TaskStatus = "Queued"
	StatusRunning   TaskStatus = "Running"
	StatusPaused    TaskStatus = "Paused"
	StatusCompleted TaskStatus = "Completed"
	StatusCancelled TaskStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether the status is one of the known states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to target is allowed.
func (s TaskStatus) CanTransition(target TaskStatus) bool {
	switch s {
	case StatusQueued:
		return target == StatusRunning || target == StatusCancelled
	case StatusRunning:
		return target == StatusPaused || target == StatusCompleted || target == StatusCancelled
	case StatusPaused:
		return target == StatusRunning || target == StatusCancelled
	}
	return false
}

// Priority orders queue admission. Higher values win.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority converts the label form back into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "Low":
		return PriorityLow, nil
	case "Medium":
		return PriorityMedium, nil
	case "High":
		return PriorityHigh, nil
	case "Critical":
		return PriorityCritical, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// MarshalJSON renders the priority as its label.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the label form.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TaskParams is the type-specific parameter bundle. Charge and discharge
// tasks use the full electrical set, idle only the duration, balance the
// threshold pair.
type TaskParams struct {
	TargetVoltage      float64 `json:"target_voltage,omitempty"` // V
	Current            float64 `json:"current,omitempty"`        // A
	MaxCapacityAh      float64 `json:"max_capacity_ah,omitempty"`
	MaxTemperature     float64 `json:"max_temperature,omitempty"` // °C
	DurationMinutes    int     `json:"duration_minutes,omitempty"`
	CutoffVoltage      float64 `json:"cutoff_voltage,omitempty"` // V
	BalanceThresholdMv float64 `json:"balance_threshold_mv,omitempty"`
	MaxBalanceCurrent  float64 `json:"max_balance_current,omitempty"` // A
}

// DefaultParams returns the conventional parameter set for a task type.
func DefaultParams(t TaskType) TaskParams {
	switch t {
	case TaskCharge, TaskDischarge:
		return TaskParams{
			TargetVoltage:   3.6,
			Current:         1.0,
			MaxCapacityAh:   10.0,
			MaxTemperature:  45,
			DurationMinutes: 60,
			CutoffVoltage:   2.8,
		}
	case TaskIdle:
		return TaskParams{DurationMinutes: 30}
	case TaskBalance:
		return TaskParams{BalanceThresholdMv: 10, MaxBalanceCurrent: 0.5}
	}
	return TaskParams{}
}

// ValidateFor checks the bundle against the needs of the task type.
func (p TaskParams) ValidateFor(t TaskType) error {
	switch t {
	case TaskCharge, TaskDischarge:
		if p.TargetVoltage <= 0 {
			return fmt.Errorf("%s task needs a positive target voltage", t)
		}
		if p.Current <= 0 {
			return fmt.Errorf("%s task needs a positive current", t)
		}
		if p.DurationMinutes <= 0 {
			return fmt.Errorf("%s task needs a positive duration", t)
		}
	case TaskIdle:
		if p.DurationMinutes <= 0 {
			return fmt.Errorf("idle task needs a positive duration")
		}
	case TaskBalance:
		if p.BalanceThresholdMv <= 0 {
			return fmt.Errorf("balance task needs a positive threshold")
		}
		if p.MaxBalanceCurrent <= 0 {
			return fmt.Errorf("balance task needs a positive balance current")
		}
	default:
		return fmt.Errorf("unknown task type %q", t)
	}
	return nil
}

// TaskRequest is the input to task creation.
type TaskRequest struct {
	Type        TaskType   `json:"type"`
	Cells       []string   `json:"cells"`
	Priority    Priority   `json:"priority"`
	Params      TaskParams `json:"params"`
	Description string     `json:"description,omitempty"`
}

// Task is a unit of scheduled work targeting one or more cells. The queue
// manager owns the canonical copy; ids are unique per queue lifetime.
type Task struct {
	ID          string     `json:"id"`
	Type        TaskType   `json:"type"`
	Cells       []string   `json:"cells"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Created     time.Time  `json:"created"`
	Description string     `json:"description,omitempty"`
	Params      TaskParams `json:"params"`
}

// Clone returns a deep copy so callers cannot mutate queue state.
func (t Task) Clone() Task {
	cp := t
	cp.Cells = append([]string(nil), t.Cells...)
	return cp
}
