package kpi

import (
	"path/filepath"
	"testing"
	"time"

	core "github.com/matveld/bms/core/kpi"
)

func TestSQLiteStore_AddQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	d := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	if err := s.Add(core.Record{CellID: "cell_1", Date: d, ChargedAh: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(core.Record{CellID: "cell_1", Date: d.Add(3 * time.Hour), ChargedAh: 1, DischargedAh: 4}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(core.Record{CellID: "cell_2", Date: d, DischargedAh: 7}); err != nil {
		t.Fatalf("add3: %v", err)
	}

	recs, err := s.Query("cell_1", d, d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 aggregated record, got %d", len(recs))
	}
	if recs[0].ChargedAh != 3 || recs[0].DischargedAh != 4 {
		t.Fatalf("expected 3/4 Ah, got %f/%f", recs[0].ChargedAh, recs[0].DischargedAh)
	}
	if !recs[0].Date.Equal(core.Day(d)) {
		t.Fatalf("expected day-aligned date, got %v", recs[0].Date)
	}
}

func TestSQLiteStore_QueryRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := s.Add(core.Record{CellID: "cell_1", Date: d.AddDate(0, 0, i), ChargedAh: float64(i + 1)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	recs, err := s.Query("cell_1", d.AddDate(0, 0, 1), d.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ChargedAh != 2 || recs[1].ChargedAh != 3 {
		t.Fatalf("unexpected records %+v", recs)
	}

	if recs, err := s.Query("ghost", d, d.AddDate(0, 0, 7)); err != nil || len(recs) != 0 {
		t.Fatalf("expected empty result, got %v %v", recs, err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Add(core.Record{CellID: "cell_1", Date: d, ChargedAh: 5}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	recs, err := s2.Query("cell_1", d, d)
	if err != nil || len(recs) != 1 || recs[0].ChargedAh != 5 {
		t.Fatalf("expected persisted record, got %v %v", recs, err)
	}
}
