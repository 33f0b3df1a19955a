// Package scenarios runs YAML-described fleet scenarios against a fresh
// engine. Each scenario registers cells, executes steps and checks
// expectations on status, health, tasks and the event log.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matveld/bms/core/model"
)

type CellDef struct {
	ID          string  `yaml:"id"`
	Chemistry   string  `yaml:"chemistry,omitempty"`
	Voltage     float64 `yaml:"voltage,omitempty"`
	Current     float64 `yaml:"current,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	CapacityAh  float64 `yaml:"capacity_ah,omitempty"`
	SoC         float64 `yaml:"soc,omitempty"`
	CycleCount  int     `yaml:"cycle_count,omitempty"`
}

// ToModel builds the cell with chemistry defaults, then applies the
// fields the scenario sets explicitly.
func (d CellDef) ToModel() model.Cell {
	c := model.NewCell(d.ID, model.Chemistry(d.Chemistry))
	if d.Voltage != 0 {
		c.Voltage = d.Voltage
	}
	if d.Current != 0 {
		c.Current = d.Current
	}
	if d.Temperature != 0 {
		c.Temperature = d.Temperature
	}
	if d.CapacityAh != 0 {
		c.CapacityAh = d.CapacityAh
	}
	if d.SoC != 0 {
		c.SoC = d.SoC
	}
	if d.CycleCount != 0 {
		c.CycleCount = d.CycleCount
	}
	return c
}

type TaskDef struct {
	Type          string   `yaml:"type"`
	Cells         []string `yaml:"cells"`
	Priority      string   `yaml:"priority"`
	TargetVoltage float64  `yaml:"target_voltage,omitempty"`
	Current       float64  `yaml:"current,omitempty"`
	CutoffVoltage float64  `yaml:"cutoff_voltage,omitempty"`
}

func (d TaskDef) ToRequest() (model.TaskRequest, error) {
	prio := model.PriorityMedium
	if d.Priority != "" {
		p, err := model.ParsePriority(d.Priority)
		if err != nil {
			return model.TaskRequest{}, err
		}
		prio = p
	}
	return model.TaskRequest{
		Type:     model.TaskType(d.Type),
		Cells:    d.Cells,
		Priority: prio,
		Params: model.TaskParams{
			TargetVoltage: d.TargetVoltage,
			Current:       d.Current,
			CutoffVoltage: d.CutoffVoltage,
		},
	}, nil
}

// Step is one scenario action. Action selects which of the remaining
// fields apply.
type Step struct {
	// Action is one of: telemetry, update, create_task, start_next,
	// set_task_status, cancel_task, pause_all, batch,
	// emergency_shutdown, emergency_restart, remove.
	Action string `yaml:"action"`

	Cell        string  `yaml:"cell,omitempty"`
	Voltage     float64 `yaml:"voltage,omitempty"`
	Current     float64 `yaml:"current,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	SoC         float64 `yaml:"soc,omitempty"`

	Task       TaskDef `yaml:"task,omitempty"`
	TaskID     string  `yaml:"task_id,omitempty"`
	TaskStatus string  `yaml:"task_status,omitempty"`

	Op string `yaml:"op,omitempty"`
}

type HealthRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type Expected struct {
	Statuses    map[string]string      `yaml:"statuses,omitempty"`
	Health      map[string]HealthRange `yaml:"health,omitempty"`
	Tasks       map[string]string      `yaml:"tasks,omitempty"`
	LogContains []string               `yaml:"log_contains,omitempty"`
}

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Cells       []CellDef `yaml:"cells"`
	Steps       []Step    `yaml:"steps"`
	Expected    Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sc, nil
}
