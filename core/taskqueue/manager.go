package taskqueue

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/internal/eventbus"
)

// CellDirectory is the registry view the queue needs to validate targets.
type CellDirectory interface {
	Has(id string) bool
}

// Manager owns the live task queue. Tasks are held in creation order; the
// priority only decides which task StartNext admits. Ids come from a
// monotonic counter and are never reused within the manager's lifetime.
type Manager struct {
	mu     sync.Mutex
	tasks  []*model.Task
	nextID int

	cells CellDirectory
	elog  *eventlog.Log
	bus   *eventbus.TypedBus[events.TaskEvent]
	now   func() time.Time
}

// New creates an empty manager. elog and bus may be nil in tests.
func New(cells CellDirectory, elog *eventlog.Log, bus *eventbus.TypedBus[events.TaskEvent]) *Manager {
	return &Manager{nextID: 1, cells: cells, elog: elog, bus: bus, now: time.Now}
}

// Create validates the request and enqueues a new task in status Queued.
// Every target must exist in the registry at creation time.
func (m *Manager) Create(req model.TaskRequest) (model.Task, error) {
	if len(req.Cells) == 0 {
		return model.Task{}, ErrEmptyTargetSet
	}
	for _, id := range req.Cells {
		if !m.cells.Has(id) {
			return model.Task{}, fmt.Errorf("%w: %s", ErrUnknownCell, id)
		}
	}
	if err := req.Params.ValidateFor(req.Type); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	m.mu.Lock()
	task := &model.Task{
		ID:          fmt.Sprintf("task_%d", m.nextID),
		Type:        req.Type,
		Cells:       append([]string(nil), req.Cells...),
		Priority:    req.Priority,
		Status:      model.StatusQueued,
		Created:     m.now(),
		Description: req.Description,
		Params:      req.Params,
	}
	m.nextID++
	m.tasks = append(m.tasks, task)
	cp := task.Clone()
	m.mu.Unlock()

	m.append(eventlog.SeverityInfo, fmt.Sprintf("Task %s created for cells: %s", cp.ID, strings.Join(cp.Cells, ", ")))
	m.publish(events.TaskCreated, cp, "")
	return cp, nil
}

// StartNext admits the highest-priority queued task, FIFO within a tier.
// Targets are re-validated here: a task whose cell has since been removed
// fails with ErrUnknownCell and stays Queued for the operator to cancel.
func (m *Manager) StartNext() (model.Task, error) {
	m.mu.Lock()
	var best *model.Task
	for _, t := range m.tasks {
		if t.Status != model.StatusQueued {
			continue
		}
		if best == nil || t.Priority > best.Priority {
			best = t
		}
	}
	if best == nil {
		m.mu.Unlock()
		return model.Task{}, ErrQueueEmpty
	}
	for _, id := range best.Cells {
		if !m.cells.Has(id) {
			m.mu.Unlock()
			return model.Task{}, fmt.Errorf("task %s: %w: %s", best.ID, ErrUnknownCell, id)
		}
	}
	best.Status = model.StatusRunning
	cp := best.Clone()
	m.mu.Unlock()

	m.append(eventlog.SeverityInfo, fmt.Sprintf("Task %s started", cp.ID))
	m.publish(events.TaskStarted, cp, model.StatusQueued)
	return cp, nil
}

// PauseAllRunning moves every running task to Paused and returns how many
// were affected. The queue state is idempotent under repeated calls; the
// summary entry is appended on every invocation.
func (m *Manager) PauseAllRunning() int {
	m.mu.Lock()
	var paused []model.Task
	for _, t := range m.tasks {
		if t.Status == model.StatusRunning {
			t.Status = model.StatusPaused
			paused = append(paused, t.Clone())
		}
	}
	m.mu.Unlock()

	m.append(eventlog.SeverityWarning, fmt.Sprintf("All running tasks paused (%d affected)", len(paused)))
	for _, t := range paused {
		m.publish(events.TaskPaused, t, model.StatusRunning)
	}
	return len(paused)
}

// SetStatus is the operator override. It obeys the transition table;
// terminal tasks reject every move.
func (m *Manager) SetStatus(id string, target model.TaskStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}

	m.mu.Lock()
	task := m.find(id)
	if task == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	from := task.Status
	if from.IsTerminal() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, id, from)
	}
	if !from.CanTransition(target) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
	}
	task.Status = target
	cp := task.Clone()
	m.mu.Unlock()

	m.publish(eventKindFor(from, target), cp, from)
	return nil
}

// Cancel removes a live task from the queue entirely. Terminal tasks
// cannot be cancelled.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	idx := -1
	for i, t := range m.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	task := m.tasks[idx]
	if task.Status.IsTerminal() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, id, task.Status)
	}
	from := task.Status
	cp := task.Clone()
	cp.Status = model.StatusCancelled
	m.tasks = append(m.tasks[:idx], m.tasks[idx+1:]...)
	m.mu.Unlock()

	m.append(eventlog.SeverityWarning, fmt.Sprintf("Task %s cancelled", id))
	m.publish(events.TaskCancelled, cp, from)
	return nil
}

// ClearCompleted drops completed tasks and returns how many were removed.
// Tasks whose status was set to Cancelled stay listed for history readers.
func (m *Manager) ClearCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tasks[:0]
	removed := 0
	for _, t := range m.tasks {
		if t.Status == model.StatusCompleted {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.tasks = kept
	return removed
}

// List returns copies of all tasks in creation order.
func (m *Manager) List() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		res = append(res, t.Clone())
	}
	return res
}

// Get returns a copy of one task.
func (m *Manager) Get(id string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.find(id); t != nil {
		return t.Clone(), nil
	}
	return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// CountByStatus tallies the live queue.
func (m *Manager) CountByStatus() map[model.TaskStatus]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := map[model.TaskStatus]int{}
	for _, t := range m.tasks {
		res[t.Status]++
	}
	return res
}

func (m *Manager) find(id string) *model.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *Manager) append(sev eventlog.Severity, msg string) {
	if m.elog != nil {
		m.elog.Append(sev, msg)
	}
}

func (m *Manager) publish(kind events.TaskEventKind, t model.Task, from model.TaskStatus) {
	if m.bus != nil {
		m.bus.Publish(events.TaskEvent{Kind: kind, Task: t, From: from, Time: time.Now()})
	}
}

func eventKindFor(from, to model.TaskStatus) events.TaskEventKind {
	switch to {
	case model.StatusRunning:
		if from == model.StatusPaused {
			return events.TaskResumed
		}
		return events.TaskStarted
	case model.StatusPaused:
		return events.TaskPaused
	case model.StatusCompleted:
		return events.TaskCompleted
	case model.StatusCancelled:
		return events.TaskCancelled
	}
	return events.TaskStatusForced
}
