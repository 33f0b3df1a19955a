package events

import "time"

// BatchEvent is published after a bulk operation swept the fleet.
type BatchEvent struct {
	Operation string
	Affected  int
	Time      time.Time
}

// EmergencyEvent is published for emergency shutdowns and restarts.
type EmergencyEvent struct {
	Action   string // "shutdown" or "restart"
	Affected int
	Time     time.Time
}

// AlertEvent is published when the health scorer raises a maintenance
// alert during a fleet sweep.
type AlertEvent struct {
	CellID   string
	Kind     string
	Message  string
	Severity string
	Time     time.Time
}
