package metrics

// Package metrics defines interfaces and implementations for collecting
// fleet observability data. Sinks like PromSink and InfluxSink record
// events such as cell state snapshots, task transitions or fired alerts
// and can be combined with NewMultiSink. The factory helpers return a
// MultiSink automatically when multiple sinks are configured.
