package taskqueue

import (
	"errors"
	"testing"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/model"
)

type dirStub map[string]bool

func (d dirStub) Has(id string) bool { return d[id] }

func newManager(ids ...string) (*Manager, dirStub) {
	dir := dirStub{}
	for _, id := range ids {
		dir[id] = true
	}
	return New(dir, nil, nil), dir
}

func idleReq(cells []string, prio model.Priority) model.TaskRequest {
	return model.TaskRequest{
		Type:     model.TaskIdle,
		Cells:    cells,
		Priority: prio,
		Params:   model.DefaultParams(model.TaskIdle),
	}
}

func TestCreateValidation(t *testing.T) {
	m, _ := newManager("c1")

	_, err := m.Create(idleReq(nil, model.PriorityLow))
	if !errors.Is(err, ErrEmptyTargetSet) {
		t.Fatalf("expected ErrEmptyTargetSet got %v", err)
	}

	_, err = m.Create(idleReq([]string{"ghost"}, model.PriorityLow))
	if !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("expected ErrUnknownCell got %v", err)
	}

	bad := idleReq([]string{"c1"}, model.PriorityLow)
	bad.Params = model.TaskParams{}
	_, err = m.Create(bad)
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams got %v", err)
	}

	if len(m.List()) != 0 {
		t.Fatalf("failed creates must not enqueue")
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	m, _ := newManager("c1")
	t1, err := m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if t1.ID != "task_1" || t1.Status != model.StatusQueued {
		t.Fatalf("unexpected task: %+v", t1)
	}
	if err := m.Cancel("task_1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	t2, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	if t2.ID != "task_2" {
		t.Fatalf("ids must stay monotonic after cancel, got %s", t2.ID)
	}
}

func TestStartNextPriorityOrder(t *testing.T) {
	m, _ := newManager("c1")
	for _, p := range []model.Priority{model.PriorityLow, model.PriorityCritical, model.PriorityMedium} {
		if _, err := m.Create(idleReq([]string{"c1"}, p)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	want := []model.Priority{model.PriorityCritical, model.PriorityMedium, model.PriorityLow}
	for _, p := range want {
		task, err := m.StartNext()
		if err != nil {
			t.Fatalf("start next: %v", err)
		}
		if task.Priority != p {
			t.Fatalf("expected priority %s got %s", p, task.Priority)
		}
		if task.Status != model.StatusRunning {
			t.Fatalf("expected Running got %s", task.Status)
		}
	}
	if _, err := m.StartNext(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty got %v", err)
	}
}

func TestStartNextFIFOWithinTier(t *testing.T) {
	m, _ := newManager("c1")
	first, _ := m.Create(idleReq([]string{"c1"}, model.PriorityHigh))
	second, _ := m.Create(idleReq([]string{"c1"}, model.PriorityHigh))

	got, err := m.StartNext()
	if err != nil {
		t.Fatalf("start next: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected %s first got %s", first.ID, got.ID)
	}
	got, _ = m.StartNext()
	if got.ID != second.ID {
		t.Fatalf("expected %s second got %s", second.ID, got.ID)
	}
}

func TestStartNextRevalidatesTargets(t *testing.T) {
	m, dir := newManager("c1")
	task, _ := m.Create(idleReq([]string{"c1"}, model.PriorityHigh))

	delete(dir, "c1") // cell removed after creation

	_, err := m.StartNext()
	if !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("expected ErrUnknownCell got %v", err)
	}
	got, _ := m.Get(task.ID)
	if got.Status != model.StatusQueued {
		t.Fatalf("failed start must leave the task Queued, got %s", got.Status)
	}
}

func TestPauseAllRunningIdempotent(t *testing.T) {
	elog := eventlog.New(nil, nil)
	dir := dirStub{"c1": true}
	m := New(dir, elog, nil)

	_, _ = m.Create(idleReq([]string{"c1"}, model.PriorityHigh))
	_, _ = m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	_, _ = m.StartNext()
	_, _ = m.StartNext()

	if n := m.PauseAllRunning(); n != 2 {
		t.Fatalf("expected 2 paused got %d", n)
	}
	snapshot := m.List()

	if n := m.PauseAllRunning(); n != 0 {
		t.Fatalf("second pause must affect none, got %d", n)
	}
	again := m.List()
	for i := range snapshot {
		if snapshot[i].Status != again[i].Status {
			t.Fatalf("queue state changed on repeated pause")
		}
	}

	// Both invocations append their summary entry.
	warns := 0
	for _, e := range elog.All() {
		if e.Severity == eventlog.SeverityWarning {
			warns++
		}
	}
	if warns != 2 {
		t.Fatalf("expected 2 warning entries got %d", warns)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	m, _ := newManager("c1")
	task, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))

	if err := m.SetStatus(task.ID, model.StatusPaused); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Queued->Paused must fail, got %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusRunning); err != nil {
		t.Fatalf("Queued->Running: %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusPaused); err != nil {
		t.Fatalf("Running->Paused: %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Paused->Completed must fail, got %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusRunning); err != nil {
		t.Fatalf("Paused->Running: %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusCompleted); err != nil {
		t.Fatalf("Running->Completed: %v", err)
	}
	if err := m.SetStatus(task.ID, model.StatusRunning); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("terminal task must reject moves, got %v", err)
	}
	if err := m.SetStatus("ghost", model.StatusRunning); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if err := m.SetStatus(task.ID, "Parked"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unknown status must fail, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	m, _ := newManager("c1")
	task, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))

	if err := m.Cancel(task.ID); err != nil {
		t.Fatalf("cancel queued: %v", err)
	}
	if len(m.List()) != 0 {
		t.Fatalf("cancel must remove the task from the queue")
	}
	if err := m.Cancel(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	done, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	_, _ = m.StartNext()
	_ = m.SetStatus(done.ID, model.StatusCompleted)
	if err := m.Cancel(done.ID); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal got %v", err)
	}
}

func TestClearCompletedKeepsCancelled(t *testing.T) {
	m, _ := newManager("c1")
	t1, _ := m.Create(idleReq([]string{"c1"}, model.PriorityHigh))
	t2, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	t3, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))

	_, _ = m.StartNext()
	_ = m.SetStatus(t1.ID, model.StatusCompleted)
	_ = m.SetStatus(t2.ID, model.StatusCancelled)

	if n := m.ClearCompleted(); n != 1 {
		t.Fatalf("expected 1 cleared got %d", n)
	}
	left := m.List()
	if len(left) != 2 {
		t.Fatalf("expected 2 tasks left got %d", len(left))
	}
	if left[0].ID != t2.ID || left[0].Status != model.StatusCancelled {
		t.Fatalf("cancelled task must stay listed: %+v", left[0])
	}
	if left[1].ID != t3.ID {
		t.Fatalf("queued task must stay listed: %+v", left[1])
	}
}

func TestListCreationOrder(t *testing.T) {
	m, _ := newManager("c1")
	low, _ := m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	crit, _ := m.Create(idleReq([]string{"c1"}, model.PriorityCritical))

	list := m.List()
	if list[0].ID != low.ID || list[1].ID != crit.ID {
		t.Fatalf("list must keep creation order, got %s %s", list[0].ID, list[1].ID)
	}
}

func TestCountByStatus(t *testing.T) {
	m, _ := newManager("c1")
	_, _ = m.Create(idleReq([]string{"c1"}, model.PriorityHigh))
	_, _ = m.Create(idleReq([]string{"c1"}, model.PriorityLow))
	_, _ = m.StartNext()

	counts := m.CountByStatus()
	if counts[model.StatusRunning] != 1 || counts[model.StatusQueued] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
