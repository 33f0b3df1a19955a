package history

import (
	"errors"
	"math"
	"testing"
	"time"
)

func sampleAt(t time.Time, v, c, temp, soc float64) Sample {
	return Sample{Time: t, Voltage: v, Current: c, Temperature: temp, SoC: soc}
}

func TestAppendEvictsOldest(t *testing.T) {
	r := NewRecorder(3)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r.Append("cell_1", sampleAt(base.Add(time.Duration(i)*time.Hour), 3.5, 1, 25, 50))
	}

	got := r.Samples("cell_1")
	if len(got) != 3 {
		t.Fatalf("expected 3 retained samples, got %d", len(got))
	}
	if !got[0].Time.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected oldest retained sample at +2h, got %v", got[0].Time)
	}
	if !got[2].Time.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("expected newest sample at +4h, got %v", got[2].Time)
	}
}

func TestSamplesReturnsCopy(t *testing.T) {
	r := NewRecorder(0)
	r.Append("cell_1", sampleAt(time.Now(), 3.5, 1, 25, 50))

	got := r.Samples("cell_1")
	got[0].Voltage = 99

	if r.Samples("cell_1")[0].Voltage != 3.5 {
		t.Error("mutating returned slice changed stored samples")
	}
}

func TestStats(t *testing.T) {
	r := NewRecorder(0)
	base := time.Now()
	r.Append("cell_1", sampleAt(base, 3.0, 1, 20, 40))
	r.Append("cell_1", sampleAt(base.Add(time.Hour), 4.0, 3, 30, 60))

	stats, err := r.Stats("cell_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := stats["voltage"]
	if v.Mean != 3.5 {
		t.Errorf("expected voltage mean 3.5, got %v", v.Mean)
	}
	if v.Min != 3.0 || v.Max != 4.0 {
		t.Errorf("expected voltage min/max 3.0/4.0, got %v/%v", v.Min, v.Max)
	}
	if v.Count != 2 {
		t.Errorf("expected count 2, got %d", v.Count)
	}
	// Sample standard deviation of {3, 4}.
	if math.Abs(v.Std-math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("expected voltage std %v, got %v", math.Sqrt(0.5), v.Std)
	}

	if got := stats["soc"].Mean; got != 50 {
		t.Errorf("expected soc mean 50, got %v", got)
	}
}

func TestStatsNoSamples(t *testing.T) {
	r := NewRecorder(0)
	if _, err := r.Stats("ghost"); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestStatsSingleSampleZeroStd(t *testing.T) {
	r := NewRecorder(0)
	r.Append("cell_1", sampleAt(time.Now(), 3.5, 1, 25, 50))

	stats, err := r.Stats("cell_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["voltage"].Std != 0 {
		t.Errorf("expected zero std for a single sample, got %v", stats["voltage"].Std)
	}
}

func TestCorrelation(t *testing.T) {
	r := NewRecorder(0)
	base := time.Now()
	// Voltage and SoC rise together, temperature falls as voltage rises.
	r.Append("cell_1", sampleAt(base, 3.0, 1, 30, 20))
	r.Append("cell_1", sampleAt(base.Add(time.Hour), 3.5, 2, 25, 50))
	r.Append("cell_1", sampleAt(base.Add(2*time.Hour), 4.0, 3, 20, 80))

	corr, names, err := r.Correlation("cell_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 4 || names[0] != "voltage" || names[3] != "soc" {
		t.Fatalf("unexpected metric names: %v", names)
	}

	iv, isoc, itemp := 0, 3, 2
	if got := corr.At(iv, iv); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected self correlation 1, got %v", got)
	}
	if got := corr.At(iv, isoc); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected voltage/soc correlation 1, got %v", got)
	}
	if got := corr.At(iv, itemp); math.Abs(got+1) > 1e-9 {
		t.Errorf("expected voltage/temperature correlation -1, got %v", got)
	}
}

func TestCorrelationTooFewSamples(t *testing.T) {
	r := NewRecorder(0)
	r.Append("cell_1", sampleAt(time.Now(), 3.5, 1, 25, 50))

	if _, _, err := r.Correlation("cell_1"); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
	if _, _, err := r.Correlation("ghost"); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestFleetAverages(t *testing.T) {
	r := NewRecorder(0)
	base := time.Now()
	r.Append("cell_1", sampleAt(base, 3.0, 1, 20, 40))
	r.Append("cell_2", sampleAt(base, 4.0, 3, 30, 60))

	avg := r.FleetAverages()
	if avg["voltage"] != 3.5 {
		t.Errorf("expected fleet voltage 3.5, got %v", avg["voltage"])
	}
	if avg["soc"] != 50 {
		t.Errorf("expected fleet soc 50, got %v", avg["soc"])
	}

	if got := NewRecorder(0).FleetAverages(); len(got) != 0 {
		t.Errorf("expected empty averages with no samples, got %v", got)
	}
}

func TestSeed(t *testing.T) {
	r := NewRecorder(0)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	n := r.Seed([]string{"cell_1", "cell_2"}, 100, now)
	if n != 200 {
		t.Fatalf("expected 200 seeded samples, got %d", n)
	}

	samples := r.Samples("cell_1")
	if len(samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(samples))
	}
	if !samples[99].Time.Equal(now) {
		t.Errorf("expected newest sample at now, got %v", samples[99].Time)
	}
	if !samples[0].Time.Equal(now.Add(-99 * time.Hour)) {
		t.Errorf("expected oldest sample 99h back, got %v", samples[0].Time)
	}
	for _, s := range samples {
		if s.Voltage < 3.0 || s.Voltage > 4.0 {
			t.Fatalf("voltage %v out of seed range", s.Voltage)
		}
		if s.Current < 0 || s.Current > 5 {
			t.Fatalf("current %v out of seed range", s.Current)
		}
		if s.Temperature < 20 || s.Temperature > 40 {
			t.Fatalf("temperature %v out of seed range", s.Temperature)
		}
		if s.SoC < 20 || s.SoC > 90 {
			t.Fatalf("soc %v out of seed range", s.SoC)
		}
	}
}

func TestDrop(t *testing.T) {
	r := NewRecorder(0)
	r.Append("cell_1", sampleAt(time.Now(), 3.5, 1, 25, 50))
	r.Drop("cell_1")

	if r.Len("cell_1") != 0 {
		t.Error("expected no samples after Drop")
	}
	if got := r.Cells(); len(got) != 0 {
		t.Errorf("expected no cells after Drop, got %v", got)
	}
}
