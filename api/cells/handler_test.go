package cells

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/model"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(engine.Options{})
	cells := []model.Cell{
		{ID: "cell_1_lfp", Voltage: 3.2, Temperature: 28.5, CapacityAh: 8, MinVoltage: 2.8, MaxVoltage: 3.6, SoC: 85, Chemistry: model.ChemistryLFP},
		{ID: "cell_2_nmc", Voltage: 3.7, Temperature: 41, CapacityAh: 6.66, MinVoltage: 3.2, MaxVoltage: 4.0, SoC: 78, Chemistry: model.ChemistryNMC},
	}
	for _, c := range cells {
		if err := eng.RegisterCell(c); err != nil {
			t.Fatalf("register %s: %v", c.ID, err)
		}
	}
	return eng
}

func TestHandler_List(t *testing.T) {
	h := NewHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cells", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []engine.CellDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].Cell.ID != "cell_1_lfp" {
		t.Fatalf("unexpected output %#v", out)
	}
	if out[0].Status != "Good" || out[1].Status != "Warning" {
		t.Errorf("statuses not attached: %s %s", out[0].Status, out[1].Status)
	}
	if out[0].Health.Overall <= 0 {
		t.Errorf("health not attached: %+v", out[0].Health)
	}
}

func TestHandler_StatusFilter(t *testing.T) {
	h := NewHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cells?status=Warning", nil))
	var out []engine.CellDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Cell.ID != "cell_2_nmc" {
		t.Fatalf("unexpected filter result %#v", out)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cells?status=bogus", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rr.Code)
	}
}

func TestHandler_SingleCell(t *testing.T) {
	h := NewHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cells?id=cell_1_lfp", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out engine.CellDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Cell.ID != "cell_1_lfp" || out.Status != "Good" {
		t.Fatalf("unexpected detail %#v", out)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cells?id=nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rr.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/cells", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestSummaryHandler(t *testing.T) {
	h := NewSummaryHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/summary", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out engine.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalCells != 2 || out.Status.Good != 1 || out.Status.Warning != 1 {
		t.Fatalf("unexpected summary %+v", out)
	}
}
