package engine

import (
	"time"

	"github.com/matveld/bms/core/cellstatus"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/health"
	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/kpi"
	"github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/core/model"
)

// CellStatus classifies one registered cell.
func (e *Engine) CellStatus(id string) (cellstatus.Status, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, err := e.reg.Get(id)
	if err != nil {
		return "", err
	}
	return cellstatus.Classify(c), nil
}

// StatusCounts tallies the fleet by classified status.
func (e *Engine) StatusCounts() cellstatus.Counts {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cellstatus.Count(e.reg.List())
}

// HealthReport scores one registered cell.
func (e *Engine) HealthReport(id string) (health.Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, err := e.reg.Get(id)
	if err != nil {
		return health.Report{}, err
	}
	return health.Score(c), nil
}

// HealthReports scores every registered cell, keyed by id.
func (e *Engine) HealthReports() map[string]health.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]health.Report)
	for _, c := range e.reg.List() {
		out[c.ID] = health.Score(c)
	}
	return out
}

// MaintenanceAlerts derives the fleet's maintenance alerts in registration
// order. The query is pure; RaiseAlerts publishes them.
func (e *Engine) MaintenanceAlerts() []health.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fleetAlerts()
}

func (e *Engine) fleetAlerts() []health.Alert {
	var alerts []health.Alert
	for _, c := range e.reg.List() {
		alerts = append(alerts, health.Alerts(c.ID, health.Score(c))...)
	}
	return alerts
}

// RaiseAlerts computes the fleet alerts, publishes each on the alert bus
// and records them in the metrics sink. Callers run it periodically.
func (e *Engine) RaiseAlerts() []health.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	alerts := e.fleetAlerts()
	now := e.now()
	for _, a := range alerts {
		e.buses.Alert.Publish(events.AlertEvent{
			CellID:   a.CellID,
			Kind:     a.Kind,
			Message:  a.Message,
			Severity: a.Severity,
			Time:     now,
		})
		e.recordAlert(metrics.AlertFiredEvent{CellID: a.CellID, Kind: a.Kind, Severity: a.Severity, Time: now})
	}
	return alerts
}

// RecentLogs returns the last n event log entries, oldest first.
func (e *Engine) RecentLogs(n int) []eventlog.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elog.Recent(n)
}

// CellStats summarizes the telemetry history of one cell per metric.
func (e *Engine) CellStats(id string) (map[string]history.Summary, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.Stats(id)
}

// CorrelationMatrix is the JSON friendly form of a correlation analysis.
type CorrelationMatrix struct {
	Metrics []string    `json:"metrics"`
	Matrix  [][]float64 `json:"matrix"`
}

// CellCorrelation computes the Pearson correlation between the telemetry
// metrics of one cell.
func (e *Engine) CellCorrelation(id string) (CorrelationMatrix, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, names, err := e.hist.Correlation(id)
	if err != nil {
		return CorrelationMatrix{}, err
	}
	n, _ := m.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return CorrelationMatrix{Metrics: names, Matrix: rows}, nil
}

// CellHistory returns the retained telemetry samples of one cell.
func (e *Engine) CellHistory(id string) []history.Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.Samples(id)
}

// FleetAverages returns the fleet-wide mean of each telemetry metric.
func (e *Engine) FleetAverages() map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.FleetAverages()
}

// Throughput returns the per-day charge throughput records of one cell
// between start and end inclusive.
func (e *Engine) Throughput(id string, start, end time.Time) ([]kpi.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.kpis.Query(id, start, end)
}

// Summary is the fleet overview used by dashboards.
type Summary struct {
	TotalCells      int               `json:"total_cells"`
	Status          cellstatus.Counts `json:"status"`
	ActiveCells     int               `json:"active_cells"`
	TotalCapacityAh float64           `json:"total_capacity_ah"`
	AverageSoC      float64           `json:"average_soc"`
	TotalCycles     int               `json:"total_cycles"`
	RunningTasks    int               `json:"running_tasks"`
	QueuedTasks     int               `json:"queued_tasks"`
}

// Summarize rolls the fleet up into a Summary.
func (e *Engine) Summarize() Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cells := e.reg.List()
	s := Summary{
		TotalCells: len(cells),
		Status:     cellstatus.Count(cells),
	}
	for _, c := range cells {
		if c.Current != 0 {
			s.ActiveCells++
		}
		s.TotalCapacityAh += c.CapacityAh
		s.AverageSoC += c.SoC
		s.TotalCycles += c.CycleCount
	}
	if len(cells) > 0 {
		s.AverageSoC /= float64(len(cells))
	}
	counts := e.tasks.CountByStatus()
	s.RunningTasks = counts[model.StatusRunning]
	s.QueuedTasks = counts[model.StatusQueued]
	return s
}

// CellDetail pairs a cell with its derived status and health.
type CellDetail struct {
	Cell   model.Cell        `json:"cell"`
	Status cellstatus.Status `json:"status"`
	Health health.Report     `json:"health"`
}

// Snapshot returns every cell with status and health attached, in
// registration order.
func (e *Engine) Snapshot() []CellDetail {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cells := e.reg.List()
	out := make([]CellDetail, len(cells))
	for i, c := range cells {
		out[i] = CellDetail{Cell: c, Status: cellstatus.Classify(c), Health: health.Score(c)}
	}
	return out
}
