package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/matveld/bms/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is a command publisher used in tests. It records every
// command per cell and can be told to fail specific cells.
type MockPublisher struct {
	Commands   map[string][]coremqtt.Command
	FailIDs    map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Commands:   make(map[string][]coremqtt.Command),
		FailIDs:    make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// PublishCommand records the command or fails when the cell id is marked.
func (m *MockPublisher) PublishCommand(cmd coremqtt.Command) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[cmd.CellID] {
		return "", fmt.Errorf("publish to %s failed", cmd.CellID)
	}
	if cmd.CommandID == "" {
		cmd.CommandID = fmt.Sprintf("cmd-%s-%d", cmd.CellID, len(m.Commands[cmd.CellID]))
	}
	m.Commands[cmd.CellID] = append(m.Commands[cmd.CellID], cmd)
	m.AckResults[cmd.CommandID] = true
	return cmd.CommandID, nil
}

// WaitForAck reports the configured ack result for the command.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, known := m.AckResults[commandID]
	if !known {
		return false, fmt.Errorf("unknown command")
	}
	return ok, nil
}

// Sent returns the number of commands recorded for a cell.
func (m *MockPublisher) Sent(cellID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Commands[cellID])
}
