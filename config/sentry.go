package config

// SentryConfig defines settings for the Sentry incident monitor. An empty
// DSN keeps the no-op monitor.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}
