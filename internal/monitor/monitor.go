// Package monitor runs the reconciliation loop that keeps the Setting sheet of
// every registered dashboard in line with its data sheets.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sheet_display/internal/checkpoint"
	"sheet_display/internal/directory"
	"sheet_display/internal/document"
	"sheet_display/internal/metrics"
	"sheet_display/internal/retry"
	"sheet_display/internal/schema"
	"sheet_display/internal/settings"
	"sheet_display/internal/sheets"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCheckInterval  = 10 * time.Second
	DefaultFailureBackoff = 60 * time.Second
)

var ErrPanic = errors.New("reconciliation pass panicked")

type Config struct {
	DirectoryID     string
	CheckInterval   time.Duration
	FailureBackoff  time.Duration
	DirectoryRetry  retry.Config
	CheckpointRetry retry.Config
}

// Notifier is told when the loop is up and after every pass.
type Notifier interface {
	Ready() error
	Alive() error
}

// Alerter receives operator-facing events.
type Alerter interface {
	NewSheets(ctx context.Context, spreadsheetID string, sheets []string)
	SystemicFailure(ctx context.Context, err error)
}

// PassResult counts what one pass did with the spreadsheets of the directory.
type PassResult struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Total          int           `json:"total"`
	Skipped        int           `json:"skipped"`
	Reconciled     int           `json:"reconciled"`
	MissingSetting int           `json:"missing_setting"`
	Failed         int           `json:"failed"`
	RateLimited    int           `json:"rate_limited"`
}

// Status is a snapshot of the monitor for health reporting.
type Status struct {
	State       State       `json:"state"`
	StartedAt   time.Time   `json:"started_at"`
	LastPassAt  time.Time   `json:"last_pass_at"`
	LastPass    *PassResult `json:"last_pass,omitempty"`
	LastError   string      `json:"last_error,omitempty"`
	Checkpoints int         `json:"checkpoints"`
}

type Monitor struct {
	cfg      Config
	api      document.API
	store    checkpoint.Store
	metrics  metrics.Provider
	notifier Notifier
	alerter  Alerter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	checkpoints checkpoint.Checkpoints
	loaded      bool
	dirty       bool

	mu     sync.RWMutex
	status Status
}

type Option func(*Monitor)

func WithMetrics(m metrics.Provider) Option {
	return func(mon *Monitor) { mon.metrics = m }
}

func WithNotifier(n Notifier) Option {
	return func(mon *Monitor) { mon.notifier = n }
}

func WithAlerter(a Alerter) Option {
	return func(mon *Monitor) { mon.alerter = a }
}

// WithClock replaces the wall clock and the sleep between passes.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(mon *Monitor) {
		mon.now = now
		mon.sleep = sleep
	}
}

func New(cfg Config, api document.API, store checkpoint.Store, opts ...Option) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.FailureBackoff <= 0 {
		cfg.FailureBackoff = DefaultFailureBackoff
	}
	if cfg.DirectoryRetry.ShouldRetry == nil {
		cfg.DirectoryRetry.ShouldRetry = func(err error) bool { return !sheets.IsPermanent(err) }
	}
	m := &Monitor{
		cfg:         cfg,
		api:         api,
		store:       store,
		metrics:     metrics.Noop{},
		now:         time.Now,
		sleep:       sleepContext,
		checkpoints: checkpoint.Checkpoints{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.status = Status{State: Idle, StartedAt: m.now()}
	return m
}

// Status returns a copy of the current status.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.status
	if s.LastPass != nil {
		last := *s.LastPass
		s.LastPass = &last
	}
	return s
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	m.status.State = s
	m.mu.Unlock()
}

// Load reads the persisted checkpoints. It is called by Run and may be called
// before RunPass.
func (m *Monitor) Load(ctx context.Context) error {
	loaded, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoints: %w", err)
	}
	m.checkpoints = loaded
	m.loaded = true
	log.Info().Int("checkpoints", len(loaded)).Msg("Loaded checkpoints")
	return nil
}

// Run loads the checkpoints and runs passes until ctx is cancelled. Systemic
// failures are followed by FailureBackoff, every other pass by CheckInterval.
func (m *Monitor) Run(ctx context.Context) error {
	log.Info().
		Str("directory_id", m.cfg.DirectoryID).
		Dur("check_interval", m.cfg.CheckInterval).
		Msg("Starting continuous monitoring")

	m.notifyReady()

	for {
		delay, state := m.cfg.CheckInterval, Sleep
		if err := m.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Monitoring stopped")
				return ctx.Err()
			}
			m.fail(ctx, err)
			delay, state = m.cfg.FailureBackoff, Backoff
		}

		m.notifyAlive()

		m.setState(state)
		if err := m.sleep(ctx, delay); err != nil {
			log.Info().Msg("Monitoring stopped")
			return err
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) error {
	if !m.loaded {
		if err := m.Load(ctx); err != nil {
			return err
		}
	}
	_, err := m.RunPass(ctx)
	return err
}

func (m *Monitor) fail(ctx context.Context, err error) {
	m.mu.Lock()
	m.status.LastError = err.Error()
	m.mu.Unlock()

	log.Error().Err(err).Dur("retry_in", m.cfg.FailureBackoff).Msg("An error occurred during monitoring")
	if m.alerter != nil {
		m.alerter.SystemicFailure(ctx, err)
	}
}

// RunPass runs one reconciliation pass over the directory. The returned error
// is non-nil only for systemic failures; per-spreadsheet failures are counted
// in the result.
func (m *Monitor) RunPass(ctx context.Context) (result PassResult, err error) {
	passID := uuid.NewString()
	logger := log.With().Str("pass_id", passID).Logger()
	ctx = logger.WithContext(ctx)

	start := m.now()
	result = PassResult{ID: passID, StartedAt: start}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic in reconciliation pass")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		result.Duration = m.now().Sub(start)
		m.metrics.ObservePass(result.Duration, err != nil)
		m.finishPass(result, err)
	}()

	m.setState(FetchDirectory)
	ids, err := retry.WithRetry(ctx, m.cfg.DirectoryRetry, func(ctx context.Context) ([]string, error) {
		return directory.ListSpreadsheetIDs(ctx, m.api, m.cfg.DirectoryID)
	})
	if err != nil {
		return result, fmt.Errorf("failed to fetch spreadsheet directory: %w", err)
	}
	result.Total = len(ids)
	m.metrics.SetDirectorySize(len(ids))

	m.setState(Reconcile)
	now := m.now()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !m.checkpoints.Due(id, now, m.cfg.CheckInterval) {
			result.Skipped++
			continue
		}
		m.reconcileOne(ctx, id, &result)
	}

	m.metrics.IncSpreadsheets(metrics.OutcomeSkipped, result.Skipped)
	m.metrics.IncSpreadsheets(metrics.OutcomeReconciled, result.Reconciled)
	m.metrics.IncSpreadsheets(metrics.OutcomeMissingSetting, result.MissingSetting)
	m.metrics.IncSpreadsheets(metrics.OutcomeFailed, result.Failed)
	m.metrics.IncSpreadsheets(metrics.OutcomeRateLimited, result.RateLimited)

	if m.dirty {
		m.setState(Checkpoint)
		if err := m.save(ctx); err != nil {
			return result, err
		}
	} else {
		logger.Info().Msg("No changes detected. Waiting for the next check...")
	}

	logger.Info().
		Int("total", result.Total).
		Int("skipped", result.Skipped).
		Int("reconciled", result.Reconciled).
		Int("missing_setting", result.MissingSetting).
		Int("failed", result.Failed).
		Int("rate_limited", result.RateLimited).
		Msg("Reconciliation pass complete")
	return result, nil
}

func (m *Monitor) reconcileOne(ctx context.Context, id string, result *PassResult) {
	logger := zerolog.Ctx(ctx).With().Str("spreadsheet_id", id).Logger()

	change, err := m.extractAndApply(ctx, id)
	switch {
	case err != nil && sheets.IsRateLimited(err):
		result.RateLimited++
		logger.Warn().Err(err).Msg("Quota exceeded, retrying next pass")
	case err != nil:
		result.Failed++
		logger.Error().Err(err).Msg("Failed to reconcile spreadsheet")
	case !change.Written:
		result.MissingSetting++
	default:
		result.Reconciled++
		m.checkpoints[id] = m.now().Unix()
		m.dirty = true
		if m.alerter != nil && len(change.Added) > 0 {
			m.alerter.NewSheets(ctx, id, change.Added)
		}
	}
}

func (m *Monitor) extractAndApply(ctx context.Context, id string) (settings.Change, error) {
	s, err := schema.Extract(ctx, m.api, id)
	if err != nil {
		return settings.Change{}, fmt.Errorf("failed to extract schema: %w", err)
	}
	return settings.Apply(ctx, m.api, id, s)
}

func (m *Monitor) save(ctx context.Context) error {
	start := m.now()
	snapshot := m.checkpoints.Clone()
	err := retry.Do(ctx, m.cfg.CheckpointRetry, func(ctx context.Context) error {
		return m.store.Save(ctx, snapshot)
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoints: %w", err)
	}
	m.dirty = false
	m.metrics.ObserveCheckpointSave(m.now().Sub(start))
	log.Debug().Int("checkpoints", len(snapshot)).Msg("Saved checkpoints")
	return nil
}

func (m *Monitor) finishPass(result PassResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.LastPassAt = m.now()
	m.status.LastPass = &result
	m.status.Checkpoints = len(m.checkpoints)
	if err != nil {
		m.status.LastError = err.Error()
	} else {
		m.status.LastError = ""
	}
}

func (m *Monitor) notifyReady() {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Ready(); err != nil {
		log.Warn().Err(err).Msg("Failed to send readiness notification")
	}
}

func (m *Monitor) notifyAlive() {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Alive(); err != nil {
		log.Warn().Err(err).Msg("Failed to send watchdog notification")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
