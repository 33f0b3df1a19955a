// Package infra holds the technical adapters of the monitoring service:
// the MQTT transport, the Prometheus and InfluxDB metric sinks, the JSONL
// event-log mirror, the SQLite KPI store and the Sentry monitor. These
// packages depend only on the interfaces defined under core.
package infra
