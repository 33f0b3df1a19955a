package metrics

import (
	"context"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/eventlog"
	"github.com/prometheus/client_golang/prometheus"
)

// SummaryGauges exposes fleet roll-up gauges refreshed from engine
// snapshots rather than counted per event.
type SummaryGauges struct {
	cells  *prometheus.GaugeVec
	tasks  *prometheus.GaugeVec
	health prometheus.Gauge
}

// NewSummaryGauges registers the fleet summary gauges.
func NewSummaryGauges(reg prometheus.Registerer) (*SummaryGauges, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cells, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_cells_by_status",
		Help: "Registered cells per classified status",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	tasks, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_tasks",
		Help: "Tasks per lifecycle status",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	health, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_health_average",
		Help: "Mean overall health score across the fleet",
	}))
	if err != nil {
		return nil, err
	}
	return &SummaryGauges{cells: cells, tasks: tasks, health: health}, nil
}

// Update refreshes the gauges from one engine snapshot.
func (g *SummaryGauges) Update(s engine.Summary, reports map[string]float64) {
	g.cells.WithLabelValues("Good").Set(float64(s.Status.Good))
	g.cells.WithLabelValues("Warning").Set(float64(s.Status.Warning))
	g.cells.WithLabelValues("Critical").Set(float64(s.Status.Critical))
	g.tasks.WithLabelValues("Running").Set(float64(s.RunningTasks))
	g.tasks.WithLabelValues("Queued").Set(float64(s.QueuedTasks))

	if len(reports) > 0 {
		var sum float64
		for _, overall := range reports {
			sum += overall
		}
		g.health.Set(sum / float64(len(reports)))
	} else {
		g.health.Set(0)
	}
}

func overallScores(eng *engine.Engine) map[string]float64 {
	reports := eng.HealthReports()
	out := make(map[string]float64, len(reports))
	for id, r := range reports {
		out[id] = r.Overall
	}
	return out
}

// StartSummaryCollector subscribes to the engine's event buses and
// refreshes the summary gauges whenever the fleet or the queue changes.
// It stops when the context is canceled.
func StartSummaryCollector(ctx context.Context, eng *engine.Engine, g *SummaryGauges) {
	if eng == nil || g == nil {
		return
	}
	buses := eng.Buses()
	cellSub := buses.Cell.SubscribeBuffered(16)
	taskSub := buses.Task.SubscribeBuffered(16)
	batchSub := buses.Batch.SubscribeBuffered(16)
	emSub := buses.Emergency.SubscribeBuffered(16)

	refresh := func() { g.Update(eng.Summarize(), overallScores(eng)) }
	refresh()

	go func() {
		defer buses.Cell.Unsubscribe(cellSub)
		defer buses.Task.Unsubscribe(taskSub)
		defer buses.Batch.Unsubscribe(batchSub)
		defer buses.Emergency.Unsubscribe(emSub)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-cellSub:
				if !ok {
					return
				}
				refresh()
			case _, ok := <-taskSub:
				if !ok {
					return
				}
				refresh()
			case _, ok := <-batchSub:
				if !ok {
					return
				}
				refresh()
			case _, ok := <-emSub:
				if !ok {
					return
				}
				refresh()
			}
		}
	}()
}

// CountingMirror counts appended event-log entries by severity and
// forwards them to the wrapped mirror when one is present.
type CountingMirror struct {
	next    eventlog.Mirror
	entries *prometheus.CounterVec
}

// NewCountingMirror registers the counter and wraps next. next may be nil.
func NewCountingMirror(next eventlog.Mirror, reg prometheus.Registerer) (*CountingMirror, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	entries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "log_entries_total",
		Help: "Event log entries appended, by severity",
	}, []string{"severity"}))
	if err != nil {
		return nil, err
	}
	return &CountingMirror{next: next, entries: entries}, nil
}

// Append counts the entry and forwards it.
func (m *CountingMirror) Append(e eventlog.Entry) error {
	m.entries.WithLabelValues(string(e.Severity)).Inc()
	if m.next != nil {
		return m.next.Append(e)
	}
	return nil
}
