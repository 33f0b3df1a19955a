package health

import "fmt"

// Alert kinds raised by Alerts.
const (
	AlertMaintenance = "maintenance"
	AlertWatch       = "watch"
	AlertReplacement = "replacement"
	AlertCooling     = "cooling"
)

// Alert is an advisory maintenance recommendation. Alerts never mutate
// engine state.
type Alert struct {
	CellID   string `json:"cell_id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "high" or "advisory"
}

// Alerts derives maintenance recommendations from a health report.
// An overall score below 70 asks for maintenance, below 85 for closer
// monitoring. Worn cycles and cooling trouble alert independently of the
// overall score.
func Alerts(cellID string, r Report) []Alert {
	var alerts []Alert
	if r.Overall < 70 {
		alerts = append(alerts, Alert{
			CellID:   cellID,
			Kind:     AlertMaintenance,
			Message:  fmt.Sprintf("%s: overall health below 70%% - schedule maintenance", cellID),
			Severity: "high",
		})
	} else if r.Overall < 85 {
		alerts = append(alerts, Alert{
			CellID:   cellID,
			Kind:     AlertWatch,
			Message:  fmt.Sprintf("%s: overall health below 85%% - monitor closely", cellID),
			Severity: "advisory",
		})
	}
	if r.Cycles < 50 {
		alerts = append(alerts, Alert{
			CellID:   cellID,
			Kind:     AlertReplacement,
			Message:  fmt.Sprintf("%s: high cycle count - consider replacement", cellID),
			Severity: "advisory",
		})
	}
	if r.Temperature < 80 {
		alerts = append(alerts, Alert{
			CellID:   cellID,
			Kind:     AlertCooling,
			Message:  fmt.Sprintf("%s: temperature concerns - check cooling system", cellID),
			Severity: "advisory",
		})
	}
	return alerts
}
