package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/matveld/bms/core/metrics"
	"github.com/matveld/bms/infra/logger"
)

// InfluxSink writes fleet events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.FleetSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close shuts the underlying client down.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordCellState writes the snapshot as one point.
func (s *InfluxSink) RecordCellState(ev coremetrics.CellStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := ev.Cell
	p := write.NewPointWithMeasurement("cell_state").
		AddTag("cell_id", c.ID).
		AddTag("status", ev.Status).
		AddTag("chemistry", c.Chemistry.String())
	if ev.Component != "" {
		p.AddTag("component", ev.Component)
	}
	p = p.AddField("voltage", round3(c.Voltage)).
		AddField("current", round3(c.Current)).
		AddField("temperature", round3(c.Temperature)).
		AddField("soc", round3(c.SoC)).
		AddField("cycle_count", c.CycleCount).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordHealth writes the component scores of one report.
func (s *InfluxSink) RecordHealth(ev coremetrics.HealthEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := ev.Report
	p := write.NewPointWithMeasurement("cell_health").
		AddTag("cell_id", ev.CellID).
		AddField("overall", round3(r.Overall)).
		AddField("voltage", round3(r.Voltage)).
		AddField("temperature", round3(r.Temperature)).
		AddField("cycles", round3(r.Cycles)).
		AddField("soc", round3(r.SoC)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTaskLifecycle writes a task transition event.
func (s *InfluxSink) RecordTaskLifecycle(ev coremetrics.TaskLifecycleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("task_event").
		AddTag("task_id", ev.TaskID).
		AddTag("type", ev.Type.String()).
		AddTag("status", string(ev.Status)).
		AddTag("priority", ev.Priority.String()).
		AddField("cell_count", ev.CellCount).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBatchOp writes a batch operation event.
func (s *InfluxSink) RecordBatchOp(ev coremetrics.BatchOpEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("batch_operation").
		AddTag("operation", ev.Operation).
		AddField("affected", ev.Affected).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEmergency writes an emergency action event.
func (s *InfluxSink) RecordEmergency(ev coremetrics.EmergencyOpEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("emergency_action").
		AddTag("action", ev.Action).
		AddField("affected", ev.Affected).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAlert writes a fired maintenance alert.
func (s *InfluxSink) RecordAlert(ev coremetrics.AlertFiredEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("maintenance_alert").
		AddTag("cell_id", ev.CellID).
		AddTag("kind", ev.Kind).
		AddTag("severity", ev.Severity).
		AddField("fired", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetSize writes the registered cell count.
func (s *InfluxSink) RecordFleetSize(size int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_size").
		AddField("cells", size).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
