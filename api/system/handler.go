// Package system exposes the event log and the export document over HTTP.
package system

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/pkg/export"
)

const defaultLogLimit = 50

// NewLogsHandler returns the event log tail via GET /api/logs. Query
// parameters: limit (default 50), severity (INFO, WARNING or CRITICAL).
func NewLogsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := defaultLogLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		var sev eventlog.Severity
		if s := r.URL.Query().Get("severity"); s != "" {
			sev = eventlog.Severity(s)
			if !sev.Valid() {
				http.Error(w, "unknown severity "+s, http.StatusBadRequest)
				return
			}
		}

		entries := eng.RecentLogs(limit)
		if sev != "" {
			filtered := entries[:0]
			for _, e := range entries {
				if e.Severity == sev {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewExportHandler returns the full system report via GET /api/export.
// format=csv renders the cell table instead of the JSON document. Requests
// must carry "Bearer <token>" when token is non-empty.
func NewExportHandler(eng *engine.Engine, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			if r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		report := eng.Export()
		switch r.URL.Query().Get("format") {
		case "", "json":
			w.Header().Set("Content-Type", "application/json")
			if err := export.WriteJSON(w, report); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			if err := export.WriteCSV(w, report.Cells); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		default:
			http.Error(w, "unknown format", http.StatusBadRequest)
		}
	})
}
