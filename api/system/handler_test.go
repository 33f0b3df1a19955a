package system

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/model"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(engine.Options{})
	if err := eng.RegisterCell(model.Cell{ID: "cell_1", Voltage: 3.2, MinVoltage: 2.8, MaxVoltage: 3.6, SoC: 50}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := eng.RemoveCell("cell_1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := eng.RegisterCell(model.Cell{ID: "cell_2", Voltage: 3.4, MinVoltage: 2.8, MaxVoltage: 3.6, SoC: 60}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return eng
}

func TestLogsHandler(t *testing.T) {
	h := NewLogsHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []eventlog.Entry
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// register + remove + register
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[0].Time.After(out[2].Time) {
		t.Errorf("entries not in chronological order")
	}
}

func TestLogsHandler_SeverityFilter(t *testing.T) {
	h := NewLogsHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs?severity=WARNING", nil))
	var out []eventlog.Entry
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || !strings.Contains(out[0].Message, "cell_1") {
		t.Fatalf("unexpected filter result %#v", out)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs?severity=DEBUG", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown severity, got %d", rr.Code)
	}
}

func TestLogsHandler_Limit(t *testing.T) {
	h := NewLogsHandler(testEngine(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs?limit=1", nil))
	var out []eventlog.Entry
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs?limit=zero", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestExportHandler_JSON(t *testing.T) {
	h := NewExportHandler(testEngine(t), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out engine.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalCells != 1 || out.Cells[0].ID != "cell_2" {
		t.Fatalf("unexpected report %+v", out)
	}
}

func TestExportHandler_CSVAndFormat(t *testing.T) {
	h := NewExportHandler(testEngine(t), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/export?format=csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Body.String(), "id,chemistry,") {
		t.Errorf("csv header missing: %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/export?format=xml", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rr.Code)
	}
}

func TestExportHandler_Token(t *testing.T) {
	h := NewExportHandler(testEngine(t), "secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/export", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/export", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}
