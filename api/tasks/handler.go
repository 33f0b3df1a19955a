package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/model"
)

// NewHandler returns an HTTP handler exposing the task queue via
// GET /api/tasks. Optional query parameters: status and priority filter
// the listing; unknown values are rejected with 400.
func NewHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		list := eng.Tasks()
		if s := r.URL.Query().Get("status"); s != "" {
			status := model.TaskStatus(s)
			if !status.Valid() {
				http.Error(w, "unknown status "+s, http.StatusBadRequest)
				return
			}
			list = filter(list, func(t model.Task) bool { return t.Status == status })
		}
		if s := r.URL.Query().Get("priority"); s != "" {
			prio, err := model.ParsePriority(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			list = filter(list, func(t model.Task) bool { return t.Priority == prio })
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(list); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func filter(list []model.Task, keep func(model.Task) bool) []model.Task {
	out := list[:0]
	for _, t := range list {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
