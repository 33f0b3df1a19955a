package scenarios

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matveld/bms/core/batch"
	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/model"
)

// RunScenario executes the scenario against a fresh engine and checks the
// expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	eng := engine.New(engine.Options{})

	for _, def := range sc.Cells {
		if err := eng.RegisterCell(def.ToModel()); err != nil {
			t.Fatalf("register %s: %v", def.ID, err)
		}
	}

	for i, step := range sc.Steps {
		if err := apply(eng, step); err != nil {
			t.Fatalf("step %d (%s): %v", i+1, step.Action, err)
		}
	}

	check(t, eng, sc.Expected)
}

func apply(eng *engine.Engine, step Step) error {
	switch step.Action {
	case "telemetry":
		_, err := eng.RecordTelemetry(step.Cell, history.Sample{
			Voltage:     step.Voltage,
			Current:     step.Current,
			Temperature: step.Temperature,
			SoC:         step.SoC,
		})
		return err
	case "update":
		patch := model.CellPatch{}
		if step.Voltage != 0 {
			patch.Voltage = &step.Voltage
		}
		if step.Current != 0 {
			patch.Current = &step.Current
		}
		if step.Temperature != 0 {
			patch.Temperature = &step.Temperature
		}
		if step.SoC != 0 {
			patch.SoC = &step.SoC
		}
		return eng.UpdateCell(step.Cell, patch)
	case "remove":
		return eng.RemoveCell(step.Cell)
	case "create_task":
		req, err := step.Task.ToRequest()
		if err != nil {
			return err
		}
		_, err = eng.CreateTask(req)
		return err
	case "start_next":
		_, err := eng.StartNextTask()
		return err
	case "set_task_status":
		return eng.SetTaskStatus(step.TaskID, model.TaskStatus(step.TaskStatus))
	case "cancel_task":
		return eng.CancelTask(step.TaskID)
	case "pause_all":
		eng.PauseAllRunning()
		return nil
	case "batch":
		op, ok := batch.ParseOperation(step.Op)
		if !ok {
			return fmt.Errorf("unknown batch op %q", step.Op)
		}
		_, err := eng.ApplyBatch(op)
		return err
	case "emergency_shutdown":
		eng.EmergencyShutdown()
		return nil
	case "emergency_restart":
		eng.EmergencyRestart()
		return nil
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

func check(t *testing.T, eng *engine.Engine, exp Expected) {
	t.Helper()

	for id, want := range exp.Statuses {
		got, err := eng.CellStatus(id)
		if err != nil {
			t.Errorf("status of %s: %v", id, err)
			continue
		}
		if got.String() != want {
			t.Errorf("status of %s = %s, want %s", id, got, want)
		}
	}

	for id, r := range exp.Health {
		rep, err := eng.HealthReport(id)
		if err != nil {
			t.Errorf("health of %s: %v", id, err)
			continue
		}
		if rep.Overall < r.Min || rep.Overall > r.Max {
			t.Errorf("health of %s = %.1f, want within [%.1f, %.1f]", id, rep.Overall, r.Min, r.Max)
		}
	}

	for id, want := range exp.Tasks {
		task, err := eng.Task(id)
		if err != nil {
			t.Errorf("task %s: %v", id, err)
			continue
		}
		if string(task.Status) != want {
			t.Errorf("task %s status = %s, want %s", id, task.Status, want)
		}
	}

	if len(exp.LogContains) > 0 {
		entries := eng.RecentLogs(100)
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(e.Message)
			b.WriteByte('\n')
		}
		tail := b.String()
		for _, want := range exp.LogContains {
			if !strings.Contains(tail, want) {
				t.Errorf("log tail missing %q", want)
			}
		}
	}
}
