package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []FleetSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...FleetSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCellState forwards the snapshot to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordCellState(ev CellStateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCellState(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTaskLifecycle forwards task transitions to capable sinks.
func (m *MultiSink) RecordTaskLifecycle(ev TaskLifecycleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TaskRecorder); ok {
			if err := rec.RecordTaskLifecycle(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBatchOp forwards batch operations to capable sinks.
func (m *MultiSink) RecordBatchOp(ev BatchOpEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BatchRecorder); ok {
			if err := rec.RecordBatchOp(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEmergency forwards emergency actions to capable sinks.
func (m *MultiSink) RecordEmergency(ev EmergencyOpEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EmergencyRecorder); ok {
			if err := rec.RecordEmergency(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordHealth forwards health reports to capable sinks.
func (m *MultiSink) RecordHealth(ev HealthEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(HealthRecorder); ok {
			if err := rec.RecordHealth(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAlert forwards fired alerts to capable sinks.
func (m *MultiSink) RecordAlert(ev AlertFiredEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AlertRecorder); ok {
			if err := rec.RecordAlert(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards the fleet size to capable sinks.
func (m *MultiSink) RecordFleetSize(size int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetSizeRecorder); ok {
			if err := rec.RecordFleetSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
