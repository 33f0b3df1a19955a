package metrics

import (
	"github.com/matveld/bms/core/factory"
	coremetrics "github.com/matveld/bms/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in fleet sinks.
func init() {
	_ = coremetrics.RegisterFleetSink("nop", func(map[string]any) (coremetrics.FleetSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterFleetSink("prometheus", func(map[string]any) (coremetrics.FleetSink, error) {
		// The exposition address lives in the api section; the sink only
		// needs the registerer.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterFleetSink("influx", func(conf map[string]any) (coremetrics.FleetSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
