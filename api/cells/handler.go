package cells

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matveld/bms/core/cellstatus"
	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/registry"
)

// NewHandler returns an HTTP handler exposing the fleet snapshot via
// GET /api/cells. Optional query parameters: id selects a single cell,
// status filters by classified status.
func NewHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if id := r.URL.Query().Get("id"); id != "" {
			c, err := eng.Cell(id)
			if err != nil {
				if errors.Is(err, registry.ErrNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			status, _ := eng.CellStatus(id)
			report, _ := eng.HealthReport(id)
			writeJSON(w, engine.CellDetail{Cell: c, Status: status, Health: report})
			return
		}

		details := eng.Snapshot()
		if s := r.URL.Query().Get("status"); s != "" {
			want, ok := cellstatus.Parse(s)
			if !ok {
				http.Error(w, "unknown status "+s, http.StatusBadRequest)
				return
			}
			filtered := details[:0]
			for _, d := range details {
				if d.Status == want {
					filtered = append(filtered, d)
				}
			}
			details = filtered
		}
		writeJSON(w, details)
	})
}

// NewSummaryHandler returns the fleet overview via GET /api/summary.
func NewSummaryHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, eng.Summarize())
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
