package metrics

import (
	coremetrics "github.com/matveld/bms/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records fleet events in Prometheus metrics.
type PromSink struct {
	states      *prometheus.CounterVec
	voltage     *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	soc         *prometheus.GaugeVec
	health      *prometheus.GaugeVec
	tasks       *prometheus.CounterVec
	batches     *prometheus.CounterVec
	emergencies *prometheus.CounterVec
	alerts      *prometheus.CounterVec
	fleet       prometheus.Gauge
}

// NewPromSink registers fleet metrics on the default Prometheus registerer.
// The exposition server is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error

	s.states, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cell_state_events_total",
		Help: "Total number of recorded cell state snapshots",
	}, []string{"cell_id", "status"}))
	if err != nil {
		return nil, err
	}
	s.voltage, err = registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cell_voltage_volts",
		Help: "Last reported terminal voltage per cell",
	}, []string{"cell_id"}))
	if err != nil {
		return nil, err
	}
	s.temperature, err = registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cell_temperature_celsius",
		Help: "Last reported temperature per cell",
	}, []string{"cell_id"}))
	if err != nil {
		return nil, err
	}
	s.soc, err = registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cell_soc_percent",
		Help: "Last reported state of charge per cell",
	}, []string{"cell_id"}))
	if err != nil {
		return nil, err
	}
	s.health, err = registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cell_health_overall",
		Help: "Last computed overall health score per cell",
	}, []string{"cell_id"}))
	if err != nil {
		return nil, err
	}
	s.tasks, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_transitions_total",
		Help: "Total number of task lifecycle transitions",
	}, []string{"type", "status"}))
	if err != nil {
		return nil, err
	}
	s.batches, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_operations_total",
		Help: "Total number of batch operations applied",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	s.emergencies, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emergency_actions_total",
		Help: "Total number of emergency shutdowns and restarts",
	}, []string{"action"}))
	if err != nil {
		return nil, err
	}
	s.alerts, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_alerts_total",
		Help: "Total number of maintenance alerts fired",
	}, []string{"kind", "severity"}))
	if err != nil {
		return nil, err
	}
	s.fleet, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_cells_total",
		Help: "Number of registered cells",
	}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func registerGaugeVec(reg prometheus.Registerer, g *prometheus.GaugeVec) (*prometheus.GaugeVec, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec), nil
		}
		return nil, err
	}
	return g, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge), nil
		}
		return nil, err
	}
	return g, nil
}

// RecordCellState updates the live gauges and the state counter.
func (s *PromSink) RecordCellState(ev coremetrics.CellStateEvent) error {
	c := ev.Cell
	s.states.WithLabelValues(c.ID, ev.Status).Inc()
	s.voltage.WithLabelValues(c.ID).Set(c.Voltage)
	s.temperature.WithLabelValues(c.ID).Set(c.Temperature)
	s.soc.WithLabelValues(c.ID).Set(c.SoC)
	return nil
}

// RecordHealth sets the overall health gauge for the cell.
func (s *PromSink) RecordHealth(ev coremetrics.HealthEvent) error {
	s.health.WithLabelValues(ev.CellID).Set(ev.Report.Overall)
	return nil
}

// RecordTaskLifecycle counts the transition.
func (s *PromSink) RecordTaskLifecycle(ev coremetrics.TaskLifecycleEvent) error {
	s.tasks.WithLabelValues(ev.Type.String(), string(ev.Status)).Inc()
	return nil
}

// RecordBatchOp counts the batch operation.
func (s *PromSink) RecordBatchOp(ev coremetrics.BatchOpEvent) error {
	s.batches.WithLabelValues(ev.Operation).Inc()
	return nil
}

// RecordEmergency counts the emergency action.
func (s *PromSink) RecordEmergency(ev coremetrics.EmergencyOpEvent) error {
	s.emergencies.WithLabelValues(ev.Action).Inc()
	return nil
}

// RecordAlert counts the fired alert.
func (s *PromSink) RecordAlert(ev coremetrics.AlertFiredEvent) error {
	s.alerts.WithLabelValues(ev.Kind, ev.Severity).Inc()
	return nil
}

// RecordFleetSize sets the gauge to the number of registered cells.
func (s *PromSink) RecordFleetSize(size int) error {
	if s.fleet != nil {
		s.fleet.Set(float64(size))
	}
	return nil
}
