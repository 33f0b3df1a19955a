package engine

import (
	"github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/core/model"
)

func (e *Engine) recordTask(t model.Task) {
	r, ok := e.sink.(metrics.TaskRecorder)
	if !ok {
		return
	}
	_ = r.RecordTaskLifecycle(metrics.TaskLifecycleEvent{
		TaskID:    t.ID,
		Type:      t.Type,
		Status:    t.Status,
		Priority:  t.Priority,
		CellCount: len(t.Cells),
		Time:      e.now(),
	})
}

// CreateTask validates and enqueues a task.
func (e *Engine) CreateTask(req model.TaskRequest) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.Create(req)
	if err != nil {
		return model.Task{}, err
	}
	e.recordTask(t)
	return t, nil
}

// StartNextTask promotes the highest priority queued task to Running.
func (e *Engine) StartNextTask() (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.StartNext()
	if err != nil {
		return model.Task{}, err
	}
	e.recordTask(t)
	return t, nil
}

// PauseAllRunning pauses every running task and returns the count.
func (e *Engine) PauseAllRunning() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.PauseAllRunning()
}

// SetTaskStatus forces a task through a legal lifecycle transition.
func (e *Engine) SetTaskStatus(id string, target model.TaskStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tasks.SetStatus(id, target); err != nil {
		return err
	}
	if t, err := e.tasks.Get(id); err == nil {
		e.recordTask(t)
	}
	return nil
}

// CancelTask cancels a queued, running or paused task.
func (e *Engine) CancelTask(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.tasks.Get(id)
	if err != nil {
		return err
	}
	if err := e.tasks.Cancel(id); err != nil {
		return err
	}
	t.Status = model.StatusCancelled
	e.recordTask(t)
	return nil
}

// ClearCompletedTasks removes completed tasks, returning the count removed.
func (e *Engine) ClearCompletedTasks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.ClearCompleted()
}

// Tasks returns every task in creation order.
func (e *Engine) Tasks() []model.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tasks.List()
}

// Task returns one task by id.
func (e *Engine) Task(id string) (model.Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tasks.Get(id)
}

// TaskCounts tallies tasks by status.
func (e *Engine) TaskCounts() map[model.TaskStatus]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tasks.CountByStatus()
}
