package mqtt

import (
	"encoding/json"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/infra/logger"
)

// TelemetrySink is the engine slice the ingest needs.
type TelemetrySink interface {
	RecordTelemetry(id string, s history.Sample) (model.Cell, error)
}

// Ingest subscribes to the per-cell telemetry topic and feeds decoded
// samples into the engine.
type Ingest struct {
	cli  *PahoClient
	sink TelemetrySink
	log  logger.Logger

	received prometheus.Counter
	rejected prometheus.Counter
}

// NewIngest builds the telemetry ingest. Counters register against reg;
// pass nil for the default registerer.
func NewIngest(cli *PahoClient, sink TelemetrySink, log logger.Logger, reg prometheus.Registerer) *Ingest {
	if log == nil {
		log = logger.NopLogger{}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	in := &Ingest{
		cli:  cli,
		sink: sink,
		log:  log,
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_messages_received_total",
			Help: "Telemetry messages accepted from the broker",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_messages_rejected_total",
			Help: "Telemetry messages dropped for decode or registry errors",
		}),
	}
	for _, c := range []prometheus.Counter{in.received, in.rejected} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are.ExistingCollector
			} else {
				log.Errorf("register ingest counter: %v", err)
			}
		}
	}
	return in
}

// Start subscribes to the telemetry topic.
func (in *Ingest) Start() error {
	return in.cli.Subscribe(in.cli.cfg.TelemetryTopic, "telemetry", in.onMessage)
}

func (in *Ingest) onMessage(_ paho.Client, msg paho.Message) {
	cellID := cellIDFromTopic(msg.Topic())
	if cellID == "" {
		in.rejected.Inc()
		in.log.Warnf("telemetry on unexpected topic %s", msg.Topic())
		return
	}
	var s history.Sample
	if err := json.Unmarshal(msg.Payload(), &s); err != nil {
		in.rejected.Inc()
		in.log.Errorf("telemetry decode %s: %v", cellID, err)
		return
	}
	if _, err := in.sink.RecordTelemetry(cellID, s); err != nil {
		in.rejected.Inc()
		in.log.Warnf("telemetry for %s rejected: %v", cellID, err)
		return
	}
	in.received.Inc()
}

// cellIDFromTopic extracts the cell id from "cells/<id>/telemetry".
func cellIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
