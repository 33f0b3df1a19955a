package mqtt

import "time"

// Command is a task lifecycle order published to one cell.
type Command struct {
	CommandID string  `json:"command_id"`
	CellID    string  `json:"cell_id"`
	TaskID    string  `json:"task_id"`
	TaskType  string  `json:"task_type"`
	Action    string  `json:"action"`
	Priority  string  `json:"priority"`
	Timestamp int64   `json:"timestamp"`
	TargetV   float64 `json:"target_voltage,omitempty"`
	CurrentA  float64 `json:"current,omitempty"`
}

// Client represents an MQTT client capable of sending task commands to
// cells and waiting for acknowledgments.
type Client interface {
	// PublishCommand sends the command to the cell's command topic and
	// returns the command identifier used for acknowledgment tracking.
	PublishCommand(cmd Command) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
