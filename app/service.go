// Package app wires configuration, engine, transports and sinks into a
// runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matveld/bms/api/cells"
	"github.com/matveld/bms/api/system"
	"github.com/matveld/bms/api/tasks"
	"github.com/matveld/bms/auth"
	"github.com/matveld/bms/config"
	"github.com/matveld/bms/connectors"
	"github.com/matveld/bms/connectors/clients/maintenance"
	connfactory "github.com/matveld/bms/connectors/factory"
	"github.com/matveld/bms/core/engine"
	"github.com/matveld/bms/core/eventlog"
	coremetrics "github.com/matveld/bms/core/metrics"
	coremon "github.com/matveld/bms/core/monitoring"
	"github.com/matveld/bms/infra/journal"
	"github.com/matveld/bms/infra/kpi"
	"github.com/matveld/bms/infra/logger"
	"github.com/matveld/bms/infra/metrics"
	"github.com/matveld/bms/infra/monitoring"
	"github.com/matveld/bms/infra/mqtt"
	"github.com/matveld/bms/simulator"
)

// Service owns the engine and every transport built from the configuration.
type Service struct {
	Engine *engine.Engine

	cfg     *config.Config
	log     logger.Logger
	monitor coremon.Monitor
	gauges  *metrics.SummaryGauges

	journal *journal.JSONLJournal
	kpis    *kpi.SQLiteStore
	alerts  connectors.AlertClient
	cred    *auth.ClientCred
	mqtt    *mqtt.PahoClient
	ingest  *mqtt.Ingest
	bridge  *mqtt.CommandBridge
	sim     *simulator.Simulator
	httpSrv *http.Server
}

// New creates a Service from the configuration. Components disabled in
// the configuration are left nil and skipped by Run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(monitor)

	svc := &Service{cfg: cfg, log: logg, monitor: monitor}

	var mirror eventlog.Mirror
	if cfg.Engine.JournalPath != "" {
		j, err := journal.NewJSONL(cfg.Engine.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		svc.journal = j
		counting, err := metrics.NewCountingMirror(j, prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("journal metrics: %w", err)
		}
		mirror = counting
	}

	opts := engine.Options{
		Config: engine.Config{
			HistoryCapacity:        cfg.Engine.HistoryCapacity,
			AutoShutdownOnCritical: cfg.Engine.AutoShutdownOnCritical,
		},
		Mirror: mirror,
		Logger: logger.New("engine"),
	}
	if cfg.KPI.SQLitePath != "" {
		store, err := kpi.NewSQLiteStore(cfg.KPI.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("kpi store: %w", err)
		}
		svc.kpis = store
		opts.KPIs = store
	}
	sink, err := coremetrics.NewFleetSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	opts.Sink = sink

	svc.Engine = engine.New(opts)

	svc.gauges, err = metrics.NewSummaryGauges(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("summary gauges: %w", err)
	}

	if cfg.API.Enabled {
		svc.httpSrv = &http.Server{Addr: cfg.API.Addr, Handler: svc.mux()}
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
		svc.ingest = mqtt.NewIngest(client, svc.Engine, logger.New("mqtt-ingest"), prometheus.DefaultRegisterer)
		svc.bridge = mqtt.NewCommandBridge(svc.Engine.Buses().Task, client, logger.New("mqtt-bridge"))
	}

	if cfg.Simulator.Enabled {
		interval := time.Duration(cfg.Simulator.IntervalSeconds) * time.Second
		svc.sim = simulator.New(svc.Engine, interval, logger.New("simulator"))
	}

	if cfg.Alerts.Endpoint != "" {
		client, err := connfactory.NewAlertClient(cfg.Alerts.Client)
		if err != nil {
			return nil, fmt.Errorf("alert client: %w", err)
		}
		svc.alerts = client
		svc.cred = auth.NewClientCred(cfg.Alerts.Auth)
	}

	return svc, nil
}

// forwardAlerts periodically pushes the fleet's maintenance alerts to the
// configured endpoint.
func (s *Service) forwardAlerts(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.cfg.Alerts.IntervalSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			alerts := s.Engine.RaiseAlerts()
			if len(alerts) == 0 {
				continue
			}
			err := s.alerts.Forward(s.cred, alerts, maintenance.WithEndpoint(s.cfg.Alerts.Endpoint))
			if err != nil {
				s.log.Errorf("forward alerts: %v", err)
				s.monitor.CaptureException(err, map[string]string{"component": "alerts"})
			}
		}
	}
}

// mux routes the HTTP API.
func (s *Service) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/cells", cells.NewHandler(s.Engine))
	mux.Handle("/api/summary", cells.NewSummaryHandler(s.Engine))
	mux.Handle("/api/tasks", tasks.NewHandler(s.Engine))
	mux.Handle("/api/logs", system.NewLogsHandler(s.Engine))
	mux.Handle("/api/export", system.NewExportHandler(s.Engine, s.cfg.API.Token))
	return mux
}

// EnableSimulator forces the telemetry simulator on regardless of the
// configuration. Must be called before Run.
func (s *Service) EnableSimulator() {
	if s.sim == nil {
		interval := time.Duration(s.cfg.Simulator.IntervalSeconds) * time.Second
		s.sim = simulator.New(s.Engine, interval, logger.New("simulator"))
	}
}

// Run starts the configured servers and loops and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go metrics.StartSummaryCollector(ctx, s.Engine, s.gauges)
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()

	if s.httpSrv != nil {
		go func() {
			s.log.Infof("api listening on %s", s.httpSrv.Addr)
			if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.log.Errorf("api server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"component": "api"})
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
				s.log.Errorf("api shutdown: %v", err)
			}
		}()
	}

	if s.ingest != nil {
		if err := s.ingest.Start(); err != nil {
			return fmt.Errorf("mqtt ingest: %w", err)
		}
	}
	if s.bridge != nil {
		go s.bridge.Run(ctx)
	}
	if s.sim != nil {
		go s.sim.Run(ctx)
	}
	if s.alerts != nil {
		go s.forwardAlerts(ctx)
	}

	<-ctx.Done()
	return nil
}

// Close releases the resources held by the service.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.Engine != nil {
		s.Engine.Buses().Close()
	}
	var firstErr error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.kpis != nil {
		if err := s.kpis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.monitor.Flush(2 * time.Second)
	return firstErr
}
