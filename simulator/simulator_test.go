package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/infra/logger"
)

func newEngineWithSeeds(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(engine.Options{})
	for _, c := range SampleCells() {
		if err := eng.RegisterCell(c); err != nil {
			t.Fatalf("register %s: %v", c.ID, err)
		}
	}
	return eng
}

func TestSampleCells(t *testing.T) {
	cells := SampleCells()
	if len(cells) != 2 {
		t.Fatalf("expected 2 demo cells, got %d", len(cells))
	}
	if cells[0].ID != "cell_1_lfp" || cells[1].ID != "cell_2_nmc" {
		t.Errorf("unexpected ids: %s, %s", cells[0].ID, cells[1].ID)
	}
	if cells[0].MaxVoltage != 3.6 || cells[1].MaxVoltage != 4.0 {
		t.Errorf("unexpected voltage bounds")
	}
}

func TestStepRecordsSamples(t *testing.T) {
	eng := newEngineWithSeeds(t)
	sim := New(eng, time.Second, logger.NopLogger{})

	for i := 0; i < 20; i++ {
		sim.Step()
	}

	for _, c := range eng.Cells() {
		hist := eng.CellHistory(c.ID)
		if len(hist) != 20 {
			t.Fatalf("%s: expected 20 samples, got %d", c.ID, len(hist))
		}
		p := c.Chemistry.Profile()
		for _, s := range hist {
			if s.Voltage < p.Min || s.Voltage > p.Max {
				t.Errorf("%s: voltage %v left envelope [%v, %v]", c.ID, s.Voltage, p.Min, p.Max)
			}
			if s.SoC < 0 || s.SoC > 100 {
				t.Errorf("%s: soc %v out of range", c.ID, s.SoC)
			}
		}
	}
}

func TestStepKeepsCellState(t *testing.T) {
	eng := newEngineWithSeeds(t)
	sim := New(eng, time.Second, logger.NopLogger{})
	sim.Step()

	c, err := eng.Cell("cell_1_lfp")
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if c.CycleCount != 150 {
		t.Errorf("cycle count changed: %d", c.CycleCount)
	}
	if c.CapacityAh != 8.0 {
		t.Errorf("capacity changed: %v", c.CapacityAh)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	eng := newEngineWithSeeds(t)
	sim := New(eng, 5*time.Millisecond, logger.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if len(eng.CellHistory("cell_1_lfp")) == 0 {
		t.Error("expected at least one simulated sample")
	}
}
