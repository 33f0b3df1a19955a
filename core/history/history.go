package history

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultCapacity bounds the number of samples retained per cell.
const DefaultCapacity = 1000

// Metrics lists the tracked telemetry metrics in the order used by
// Stats and Correlation outputs.
var Metrics = []string{"voltage", "current", "temperature", "soc"}

// ErrNoSamples indicates that no telemetry has been recorded for a cell.
var ErrNoSamples = errors.New("no samples recorded")

// ErrTooFewSamples indicates that a computation needs more samples than
// are available.
var ErrTooFewSamples = errors.New("too few samples")

// Sample is a single telemetry reading for one cell.
type Sample struct {
	Time        time.Time `json:"timestamp"`
	Voltage     float64   `json:"voltage"`
	Current     float64   `json:"current"`
	Temperature float64   `json:"temperature"`
	SoC         float64   `json:"soc"`
}

func (s Sample) metric(i int) float64 {
	switch i {
	case 0:
		return s.Voltage
	case 1:
		return s.Current
	case 2:
		return s.Temperature
	default:
		return s.SoC
	}
}

// Summary aggregates one metric over the retained samples of a cell.
type Summary struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Recorder keeps a bounded in-memory telemetry history per cell and
// computes per-metric statistics over it.
type Recorder struct {
	mu      sync.RWMutex
	samples map[string][]Sample
	cap     int
}

// NewRecorder returns a Recorder retaining up to capacity samples per
// cell. A non-positive capacity falls back to DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{samples: make(map[string][]Sample), cap: capacity}
}

// Append records one sample for the given cell, evicting the oldest
// sample once the per-cell capacity is reached.
func (r *Recorder) Append(cellID string, s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := append(r.samples[cellID], s)
	if len(buf) > r.cap {
		buf = buf[len(buf)-r.cap:]
	}
	r.samples[cellID] = buf
}

// Samples returns a copy of the retained samples for a cell, oldest
// first.
func (r *Recorder) Samples(cellID string) []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.samples[cellID]
	out := make([]Sample, len(buf))
	copy(out, buf)
	return out
}

// Len returns the number of retained samples for a cell.
func (r *Recorder) Len(cellID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples[cellID])
}

// Last returns the most recent sample for a cell, if any.
func (r *Recorder) Last(cellID string) (Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.samples[cellID]
	if len(buf) == 0 {
		return Sample{}, false
	}
	return buf[len(buf)-1], true
}

// Cells returns the ids of all cells with recorded telemetry, sorted.
func (r *Recorder) Cells() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.samples))
	for id := range r.samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Drop discards the history of a cell.
func (r *Recorder) Drop(cellID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.samples, cellID)
}

// Stats computes mean, standard deviation, min and max for each metric
// of a cell, keyed by metric name.
func (r *Recorder) Stats(cellID string) (map[string]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.samples[cellID]
	if len(buf) == 0 {
		return nil, ErrNoSamples
	}

	out := make(map[string]Summary, len(Metrics))
	vals := make([]float64, len(buf))
	for m, name := range Metrics {
		for i, s := range buf {
			vals[i] = s.metric(m)
		}
		sum := Summary{
			Mean:  stat.Mean(vals, nil),
			Min:   vals[0],
			Max:   vals[0],
			Count: len(vals),
		}
		if len(vals) > 1 {
			sum.Std = stat.StdDev(vals, nil)
		}
		for _, v := range vals {
			sum.Min = math.Min(sum.Min, v)
			sum.Max = math.Max(sum.Max, v)
		}
		out[name] = sum
	}
	return out, nil
}

// Correlation computes the Pearson correlation matrix between the
// metrics of a cell. The returned names give the row and column order.
// At least two samples are required.
func (r *Recorder) Correlation(cellID string) (*mat.SymDense, []string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.samples[cellID]
	if len(buf) == 0 {
		return nil, nil, ErrNoSamples
	}
	if len(buf) < 2 {
		return nil, nil, ErrTooFewSamples
	}

	x := mat.NewDense(len(buf), len(Metrics), nil)
	for i, s := range buf {
		for m := range Metrics {
			x.Set(i, m, s.metric(m))
		}
	}

	corr := mat.NewSymDense(len(Metrics), nil)
	stat.CorrelationMatrix(corr, x, nil)

	names := make([]string, len(Metrics))
	copy(names, Metrics)
	return corr, names, nil
}

// FleetAverages computes the mean of each metric over the retained
// samples of every cell combined.
func (r *Recorder) FleetAverages() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64, len(Metrics))
	var total int
	sums := make([]float64, len(Metrics))
	for _, buf := range r.samples {
		total += len(buf)
		for _, s := range buf {
			for m := range Metrics {
				sums[m] += s.metric(m)
			}
		}
	}
	if total == 0 {
		return out
	}
	for m, name := range Metrics {
		out[name] = sums[m] / float64(total)
	}
	return out
}

// Seed backfills n hourly synthetic samples per cell ending at now,
// drawing each metric from a uniform range plausible for bench cells.
// It returns the number of samples written.
func (r *Recorder) Seed(cellIDs []string, n int, now time.Time) int {
	if n <= 0 {
		return 0
	}
	var written int
	for _, id := range cellIDs {
		for i := n - 1; i >= 0; i-- {
			r.Append(id, Sample{
				Time:        now.Add(-time.Duration(i) * time.Hour),
				Voltage:     3.0 + rand.Float64(),
				Current:     5 * rand.Float64(),
				Temperature: 20 + 20*rand.Float64(),
				SoC:         20 + 70*rand.Float64(),
			})
			written++
		}
	}
	return written
}
