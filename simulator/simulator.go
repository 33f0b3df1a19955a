// Package simulator generates telemetry for a fleet of cells. It drives
// the engine the same way the MQTT ingest does, which makes it usable
// both for demos and for integration tests without a broker.
package simulator

import (
	"context"
	"math/rand"
	"time"

	"github.com/matveld/bms/core/history"
	"github.com/matveld/bms/core/logger"
	"github.com/matveld/bms/core/model"
)

// Recorder is the slice of the engine the simulator needs.
type Recorder interface {
	Cells() []model.Cell
	RecordTelemetry(id string, s history.Sample) (model.Cell, error)
}

// Simulator produces a chemistry-aware random walk per registered cell.
type Simulator struct {
	rec      Recorder
	interval time.Duration
	rng      *rand.Rand
	log      logger.Logger
	now      func() time.Time
}

// New returns a simulator ticking at the given interval. Intervals at or
// below zero fall back to 5s.
func New(rec Recorder, interval time.Duration, log logger.Logger) *Simulator {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Simulator{
		rec:      rec,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
		now:      time.Now,
	}
}

// Run emits one telemetry round per tick until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Infof("simulator started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Infof("simulator stopped")
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step records one random-walk sample for every registered cell.
func (s *Simulator) Step() {
	for _, c := range s.rec.Cells() {
		sample := s.next(c)
		if _, err := s.rec.RecordTelemetry(c.ID, sample); err != nil {
			s.log.Warnf("simulator: telemetry for %s rejected: %v", c.ID, err)
		}
	}
}

// next derives the following sample from the cell's current state. The
// walk stays inside the chemistry's voltage envelope; current flips
// direction near the SoC limits so cells cycle instead of pinning.
func (s *Simulator) next(c model.Cell) history.Sample {
	p := c.Chemistry.Profile()

	current := c.Current + (s.rng.Float64()-0.5)*0.4
	if c.SoC >= 95 && current > 0 {
		current = -current
	}
	if c.SoC <= 10 && current < 0 {
		current = -current
	}

	voltage := c.Voltage + (s.rng.Float64()-0.5)*0.04
	if current > 0 {
		voltage += 0.01
	} else if current < 0 {
		voltage -= 0.01
	}
	voltage = clamp(voltage, p.Min, p.Max)

	// Temperature follows load and relaxes toward ambient.
	temp := c.Temperature + (s.rng.Float64()-0.5)*0.6 + abs(current)*0.05
	temp -= (temp - 25.0) * 0.02
	temp = clamp(temp, 15, 80)

	hours := s.interval.Hours()
	soc := c.SoC
	if c.CapacityAh > 0 {
		soc += current * hours / c.CapacityAh * 100
	}
	soc = clamp(soc, 0, 100)

	return history.Sample{
		Time:        s.now(),
		Voltage:     voltage,
		Current:     current,
		Temperature: temp,
		SoC:         soc,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
