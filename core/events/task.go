package events

import (
	"time"

	"github.com/matveld/bms/core/model"
)

// TaskEventKind names the queue operation behind a TaskEvent.
type TaskEventKind string

const (
	TaskCreated      TaskEventKind = "created"
	TaskStarted      TaskEventKind = "started"
	TaskPaused       TaskEventKind = "paused"
	TaskResumed      TaskEventKind = "resumed"
	TaskCompleted    TaskEventKind = "completed"
	TaskCancelled    TaskEventKind = "cancelled"
	TaskStatusForced TaskEventKind = "status_forced"
)

// TaskEvent is published for every task lifecycle change.
type TaskEvent struct {
	Kind TaskEventKind
	Task model.Task
	From model.TaskStatus
	Time time.Time
}
