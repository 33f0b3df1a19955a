// Package engine ties the cell registry, task queue, event log, telemetry
// history and KPI accrual together behind one facade. Commands take the
// write lock, queries the read lock, so a snapshot never observes a
// half-applied batch or emergency action.
package engine

import (
	"sync"
	"time"

	"github.com/matveld/bms/core/batch"
	"github.com/matveld/bms/core/emergency"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/kpi"
	"github.com/matveld/bms/core/logger"
	"github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/core/registry"
	"github.com/matveld/bms/core/taskqueue"
	"github.com/matveld/bms/internal/eventbus"
)

const component = "engine"

// Config holds the engine tunables.
type Config struct {
	HistoryCapacity        int  `json:"history_capacity"`
	AutoShutdownOnCritical bool `json:"auto_shutdown_on_critical"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.HistoryCapacity == 0 {
		c.HistoryCapacity = history.DefaultCapacity
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return nil
}

// Buses groups the typed event buses shared with collectors and connectors.
type Buses struct {
	Cell      *eventbus.TypedBus[events.CellEvent]
	Task      *eventbus.TypedBus[events.TaskEvent]
	Batch     *eventbus.TypedBus[events.BatchEvent]
	Emergency *eventbus.TypedBus[events.EmergencyEvent]
	Alert     *eventbus.TypedBus[events.AlertEvent]
}

// NewBuses returns a fresh set of event buses.
func NewBuses() *Buses {
	return &Buses{
		Cell:      eventbus.NewTyped[events.CellEvent](),
		Task:      eventbus.NewTyped[events.TaskEvent](),
		Batch:     eventbus.NewTyped[events.BatchEvent](),
		Emergency: eventbus.NewTyped[events.EmergencyEvent](),
		Alert:     eventbus.NewTyped[events.AlertEvent](),
	}
}

// Close closes every bus.
func (b *Buses) Close() {
	b.Cell.Close()
	b.Task.Close()
	b.Batch.Close()
	b.Emergency.Close()
	b.Alert.Close()
}

// Options configures a new Engine. The zero value is usable: missing
// collaborators fall back to in-memory or no-op implementations.
type Options struct {
	Config Config
	Mirror eventlog.Mirror
	KPIs   kpi.Store
	Sink   metrics.FleetSink
	Logger logger.Logger
	Buses  *Buses
	Now    func() time.Time
}

// Engine is the cell monitoring and task orchestration facade.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	reg   *registry.Registry
	tasks *taskqueue.Manager
	batch *batch.Executor
	em    *emergency.Controller
	elog  *eventlog.Log
	hist  *history.Recorder
	kpis  kpi.Store
	sink  metrics.FleetSink
	log   logger.Logger
	buses *Buses
	now   func() time.Time
}

// New assembles an engine from the provided options.
func New(opts Options) *Engine {
	opts.Config.SetDefaults()
	if opts.KPIs == nil {
		opts.KPIs = kpi.NewMemoryStore()
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	if opts.Buses == nil {
		opts.Buses = NewBuses()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	elog := eventlog.New(opts.Mirror, opts.Logger)
	reg := registry.New(elog, opts.Buses.Cell)
	return &Engine{
		cfg:   opts.Config,
		reg:   reg,
		tasks: taskqueue.New(reg, elog, opts.Buses.Task),
		batch: batch.New(reg, elog, opts.Buses.Batch),
		em:    emergency.New(reg, elog, opts.Buses.Emergency),
		elog:  elog,
		hist:  history.NewRecorder(opts.Config.HistoryCapacity),
		kpis:  opts.KPIs,
		sink:  opts.Sink,
		log:   opts.Logger,
		buses: opts.Buses,
		now:   opts.Now,
	}
}

// Buses exposes the engine's event buses for collectors and connectors.
func (e *Engine) Buses() *Buses { return e.buses }

// Optional sink capabilities are asserted per call, the same way MultiSink
// forwards them to capable member sinks.

func (e *Engine) recordCellState(ev metrics.CellStateEvent) {
	_ = e.sink.RecordCellState(ev)
}

func (e *Engine) recordHealth(ev metrics.HealthEvent) {
	if r, ok := e.sink.(metrics.HealthRecorder); ok {
		_ = r.RecordHealth(ev)
	}
}

func (e *Engine) recordBatchOp(ev metrics.BatchOpEvent) {
	if r, ok := e.sink.(metrics.BatchRecorder); ok {
		_ = r.RecordBatchOp(ev)
	}
}

func (e *Engine) recordEmergency(ev metrics.EmergencyOpEvent) {
	if r, ok := e.sink.(metrics.EmergencyRecorder); ok {
		_ = r.RecordEmergency(ev)
	}
}

func (e *Engine) recordAlert(ev metrics.AlertFiredEvent) {
	if r, ok := e.sink.(metrics.AlertRecorder); ok {
		_ = r.RecordAlert(ev)
	}
}

func (e *Engine) recordFleetSize(n int) {
	if r, ok := e.sink.(metrics.FleetSizeRecorder); ok {
		_ = r.RecordFleetSize(n)
	}
}
