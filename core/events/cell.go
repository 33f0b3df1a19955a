package events

import (
	"time"

	"github.com/matveld/bms/core/model"
)

// CellEventKind names the registry mutation behind a CellEvent.
type CellEventKind string

const (
	CellRegistered CellEventKind = "registered"
	CellUpdated    CellEventKind = "updated"
	CellRemoved    CellEventKind = "removed"
	CellReset      CellEventKind = "reset"
)

// CellEvent is published after a registry mutation commits.
type CellEvent struct {
	Kind CellEventKind
	Cell model.Cell
	Time time.Time
}
