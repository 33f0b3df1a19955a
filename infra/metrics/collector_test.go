package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matveld/bms/core/cellstatus"
	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/model"
)

func TestSummaryGaugesUpdate(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, err := NewSummaryGauges(reg)
	if err != nil {
		t.Fatalf("create gauges: %v", err)
	}

	g.Update(engine.Summary{
		TotalCells:   3,
		Status:       cellstatus.Counts{Good: 2, Warning: 1},
		RunningTasks: 1,
		QueuedTasks:  2,
	}, map[string]float64{"cell_1_lfp": 90, "cell_2_nmc": 70})

	if got := testutil.ToFloat64(g.cells.WithLabelValues("Good")); got != 2 {
		t.Errorf("good gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(g.tasks.WithLabelValues("Queued")); got != 2 {
		t.Errorf("queued gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(g.health); got != 80 {
		t.Errorf("health gauge = %v, want 80", got)
	}

	g.Update(engine.Summary{}, nil)
	if got := testutil.ToFloat64(g.health); got != 0 {
		t.Errorf("health gauge after empty fleet = %v, want 0", got)
	}
}

func TestSummaryCollectorRefreshesOnEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, err := NewSummaryGauges(reg)
	if err != nil {
		t.Fatalf("create gauges: %v", err)
	}
	eng := engine.New(engine.Options{})
	if err := eng.RegisterCell(model.NewCell("cell_1_lfp", "")); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartSummaryCollector(ctx, eng, g)

	// the initial refresh happens before the goroutine starts
	if got := testutil.ToFloat64(g.cells.WithLabelValues("Good")); got != 1 {
		t.Fatalf("good gauge after start = %v, want 1", got)
	}

	if err := eng.RegisterCell(model.NewCell("cell_2_nmc", "")); err != nil {
		t.Fatalf("register: %v", err)
	}
	deadline := time.After(time.Second)
	for testutil.ToFloat64(g.cells.WithLabelValues("Good")) != 2 {
		select {
		case <-deadline:
			t.Fatalf("good gauge = %v, want 2", testutil.ToFloat64(g.cells.WithLabelValues("Good")))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type captureMirror struct {
	entries []eventlog.Entry
}

func (c *captureMirror) Append(e eventlog.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

func TestCountingMirror(t *testing.T) {
	reg := prometheus.NewRegistry()
	next := &captureMirror{}
	m, err := NewCountingMirror(next, reg)
	if err != nil {
		t.Fatalf("create mirror: %v", err)
	}

	entries := []eventlog.Entry{
		{Time: time.Now(), Severity: eventlog.SeverityInfo, Message: "Cell cell_1_lfp registered"},
		{Time: time.Now(), Severity: eventlog.SeverityWarning, Message: "Cell cell_1_lfp removed"},
		{Time: time.Now(), Severity: eventlog.SeverityInfo, Message: "Task task_1 started"},
	}
	for _, e := range entries {
		if err := m.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.entries.WithLabelValues(string(eventlog.SeverityInfo))); got != 2 {
		t.Errorf("info counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.entries.WithLabelValues(string(eventlog.SeverityWarning))); got != 1 {
		t.Errorf("warning counter = %v, want 1", got)
	}
	if len(next.entries) != 3 {
		t.Errorf("wrapped mirror got %d entries, want 3", len(next.entries))
	}
}

func TestCountingMirrorNilNext(t *testing.T) {
	m, err := NewCountingMirror(nil, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("create mirror: %v", err)
	}
	if err := m.Append(eventlog.Entry{Severity: eventlog.SeverityCritical, Message: "EMERGENCY SHUTDOWN ACTIVATED"}); err != nil {
		t.Errorf("append with nil next: %v", err)
	}
}
