package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matveld/bms/auth"
	"github.com/matveld/bms/connectors/factory"
	corefactory "github.com/matveld/bms/core/factory"
	"github.com/matveld/bms/infra/mqtt"
)

// Defaulter fills unset section fields before validation.
type Defaulter interface {
	SetDefaults()
}

// Validator checks a section after defaults were applied.
type Validator interface {
	Validate() error
}

// Config is the full service configuration.
type Config struct {
	Engine    EngineConfig    `json:"engine"`
	API       APIConfig       `json:"api"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Metrics   MetricsConfig   `json:"metrics"`
	KPI       KPIConfig       `json:"kpi"`
	Sentry    SentryConfig    `json:"sentry"`
	Simulator SimulatorConfig `json:"simulator"`
	Alerts    AlertsConfig    `json:"alerts"`
}

// EngineConfig tunes the orchestration engine and its event log mirror.
type EngineConfig struct {
	// JournalPath mirrors the event log to a JSONL file; empty disables
	// the mirror.
	JournalPath            string `json:"journal_path"`
	HistoryCapacity        int    `json:"history_capacity"`
	AutoShutdownOnCritical bool   `json:"auto_shutdown_on_critical"`
}

func (c *EngineConfig) SetDefaults() {}

func (c EngineConfig) Validate() error {
	if c.HistoryCapacity < 0 {
		return fmt.Errorf("history_capacity must not be negative")
	}
	return nil
}

// APIConfig configures the read-only HTTP API.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// Token guards the export endpoint when set.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c APIConfig) Validate() error { return nil }

// MetricsConfig selects the fleet metrics sinks and the Prometheus
// exposition address.
type MetricsConfig struct {
	PrometheusAddr string                 `json:"prometheus_addr"`
	Sinks          []corefactory.ModuleConfig `json:"sinks"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

func (c MetricsConfig) Validate() error {
	for _, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics sink without a type")
		}
	}
	return nil
}

// KPIConfig configures throughput KPI persistence. An empty path keeps the
// records in memory.
type KPIConfig struct {
	SQLitePath string `json:"sqlite_path"`
}

func (c *KPIConfig) SetDefaults() {}

func (c KPIConfig) Validate() error { return nil }

// SimulatorConfig drives the built-in telemetry simulator.
type SimulatorConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

func (c *SimulatorConfig) SetDefaults() {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 5
	}
}

func (c SimulatorConfig) Validate() error { return nil }

// AlertsConfig configures maintenance alert forwarding. An empty endpoint
// disables it.
type AlertsConfig struct {
	Endpoint        string    `json:"endpoint"`
	Client          string    `json:"client"`
	IntervalSeconds int       `json:"interval_seconds"`
	Auth            auth.Conf `json:"auth"`
}

func (c *AlertsConfig) SetDefaults() {
	if c.Client == "" {
		c.Client = factory.IDMaintenance
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 60
	}
}

func (c AlertsConfig) Validate() error {
	if c.Endpoint != "" && c.Auth.AuthURL == "" {
		return fmt.Errorf("alerts endpoint requires auth.auth_url")
	}
	return nil
}

// Load reads the configuration file (json or yaml by extension), applies
// BMS_ environment overrides, then section defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: BMS_API__ADDR=:9999 sets api.addr.
	if err := k.Load(env.Provider("BMS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bms_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	for _, section := range cfg.sections() {
		if d, ok := section.(Defaulter); ok {
			d.SetDefaults()
		}
	}
	for _, section := range cfg.sections() {
		v, ok := section.(Validator)
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) sections() []any {
	return []any{&c.Engine, &c.API, &c.MQTT, &c.Metrics, &c.KPI, &c.Sentry, &c.Simulator, &c.Alerts}
}
