package app

import (
	"context"
	"errors"
	"fmt"

	"sheet_display/internal/checkpoint"
	"sheet_display/internal/config"
	"sheet_display/internal/metrics"
	"sheet_display/internal/monitor"
	"sheet_display/internal/notify"
	"sheet_display/internal/provision"
	"sheet_display/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Checker is the assembled application: the monitor loop plus its optional
// health server.
type Checker struct {
	Config      *config.Config
	Backend     *Backend
	Store       checkpoint.Store
	Monitor     *monitor.Monitor
	Server      *server.Server
	Alerts      *notify.Client
	Provisioner *provision.Provisioner
}

func NewChecker(cfg *config.Config, backend *Backend, store checkpoint.Store, mon *monitor.Monitor, srv *server.Server, alerts *notify.Client, p *provision.Provisioner) *Checker {
	return &Checker{
		Config:      cfg,
		Backend:     backend,
		Store:       store,
		Monitor:     mon,
		Server:      srv,
		Alerts:      alerts,
		Provisioner: p,
	}
}

// Run runs the monitor and the server until ctx is cancelled or one of them
// fails.
func (c *Checker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Monitor.Run(gctx)
	})
	if c.Server != nil {
		g.Go(func() error {
			return c.Server.Run(gctx)
		})
	}

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func NewMetrics(reg *prometheus.Registry) metrics.Provider {
	return metrics.NewPrometheusProvider(reg)
}

// OpenStore opens the checkpoint store. The cleanup closes it.
func OpenStore(cfg *config.Config) (checkpoint.Store, func(), error) {
	store, err := checkpoint.Open(cfg.Checkpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close checkpoint store")
		}
	}, nil
}

func NewAlerts(cfg *config.Config) *notify.Client {
	if cfg.Notify.Enabled {
		log.Info().Str("topic", cfg.Notify.Topic).Msg("Notifications enabled")
	}
	return notify.NewClient(cfg.Notify)
}

func NewMonitor(cfg *config.Config, backend *Backend, store checkpoint.Store, m metrics.Provider, alerts *notify.Client) *monitor.Monitor {
	return monitor.New(monitor.Config{
		DirectoryID:     cfg.DirectoryID,
		CheckInterval:   cfg.CheckInterval,
		FailureBackoff:  cfg.FailureBackoff,
		DirectoryRetry:  cfg.Resilience.DirectoryRead,
		CheckpointRetry: cfg.Resilience.CheckpointSave,
	}, backend.API, store,
		monitor.WithMetrics(m),
		monitor.WithNotifier(SystemdNotifier{}),
		monitor.WithAlerter(alerts),
	)
}

// NewServer returns nil when the server is disabled.
func NewServer(cfg *config.Config, mon *monitor.Monitor, reg *prometheus.Registry) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return server.New(cfg.Server.Address, mon, reg)
}

func NewProvisioner(cfg *config.Config, backend *Backend, alerts *notify.Client) *provision.Provisioner {
	return provision.New(backend.Copier, backend.API, cfg.TemplateID, cfg.DirectoryID, alerts)
}
