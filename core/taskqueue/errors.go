package taskqueue

import "errors"

var (
	// ErrEmptyTargetSet is returned when a task names no target cells.
	ErrEmptyTargetSet = errors.New("task needs at least one target cell")
	// ErrUnknownCell is returned when a target cell is not registered.
	ErrUnknownCell = errors.New("unknown target cell")
	// ErrInvalidParams is returned when the parameter bundle does not fit
	// the task type.
	ErrInvalidParams = errors.New("invalid task parameters")
	// ErrNotFound is returned when the task id is unknown.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTransition is returned for a move the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyTerminal is returned when operating on a completed or
	// cancelled task.
	ErrAlreadyTerminal = errors.New("task already terminal")
	// ErrQueueEmpty is returned by StartNext when nothing is queued.
	ErrQueueEmpty = errors.New("no queued task")
)
