package test

import (
	"testing"
	"time"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/simulator"
)

// Full register → telemetry → task → batch → emergency pass through the
// engine facade.
func TestEngineLifecycle(t *testing.T) {
	eng := engine.New(engine.Options{})

	for _, c := range simulator.SampleCells() {
		if err := eng.RegisterCell(c); err != nil {
			t.Fatalf("register %s: %v", c.ID, err)
		}
	}
	if got := len(eng.Cells()); got != 2 {
		t.Fatalf("expected 2 cells, got %d", got)
	}

	// Telemetry moves the nmc cell into warning territory.
	if _, err := eng.RecordTelemetry("cell_2_nmc", history.Sample{
		Voltage: 3.7, Current: 1.8, Temperature: 38.0, SoC: 78,
	}); err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	status, err := eng.CellStatus("cell_2_nmc")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.String() != "Warning" {
		t.Errorf("status = %s, want Warning", status)
	}

	// Queue two tasks; the high priority one starts first.
	if _, err := eng.CreateTask(model.TaskRequest{
		Type: model.TaskIdle, Cells: []string{"cell_1_lfp"}, Priority: model.PriorityLow,
	}); err != nil {
		t.Fatalf("create idle: %v", err)
	}
	charge, err := eng.CreateTask(model.TaskRequest{
		Type: model.TaskCharge, Cells: []string{"cell_2_nmc"}, Priority: model.PriorityHigh,
		Params: model.TaskParams{TargetVoltage: 4.0, Current: 2.0},
	})
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	started, err := eng.StartNextTask()
	if err != nil {
		t.Fatalf("start next: %v", err)
	}
	if started.ID != charge.ID {
		t.Errorf("started %s, want %s", started.ID, charge.ID)
	}

	if n := eng.EmergencyShutdown(); n != 2 {
		t.Errorf("shutdown touched %d cells, want 2", n)
	}
	counts := eng.StatusCounts()
	if counts.Critical != 2 {
		t.Errorf("critical count = %d, want 2 after shutdown", counts.Critical)
	}

	if n := eng.EmergencyRestart(); n != 2 {
		t.Errorf("restart touched %d cells, want 2", n)
	}
	counts = eng.StatusCounts()
	if counts.Good != 2 {
		t.Errorf("good count = %d, want 2 after restart", counts.Good)
	}

	summary := eng.Summarize()
	if summary.TotalCells != 2 {
		t.Errorf("summary total = %d", summary.TotalCells)
	}

	logs := eng.RecentLogs(50)
	if len(logs) == 0 {
		t.Fatal("expected log entries")
	}
	last := logs[len(logs)-1]
	if time.Since(last.Time) > time.Minute {
		t.Errorf("stale log timestamp: %v", last.Time)
	}
}
