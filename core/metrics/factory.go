package metrics

import "github.com/matveld/bms/core/factory"

var sinkRegistry = factory.NewRegistry[FleetSink]()

// RegisterFleetSink adds a fleet sink factory identified by name.
func RegisterFleetSink(name string, f factory.Factory[FleetSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewFleetSink creates a FleetSink from the provided configuration.
func NewFleetSink(cfgs []factory.ModuleConfig) (FleetSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]FleetSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
