// Package metrics exposes checker activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Spreadsheet outcomes of one pass.
const (
	OutcomeReconciled     = "reconciled"
	OutcomeSkipped        = "skipped"
	OutcomeMissingSetting = "missing_setting"
	OutcomeFailed         = "failed"
	OutcomeRateLimited    = "rate_limited"
)

type Provider interface {
	ObservePass(duration time.Duration, systemic bool)
	IncSpreadsheets(outcome string, count int)
	SetDirectorySize(count int)
	ObserveCheckpointSave(duration time.Duration)
	IncAPICalls(endpoint string, ok bool)
	ObserveAPICall(endpoint string, duration time.Duration)
}

type PrometheusProvider struct {
	passDuration    *prometheus.HistogramVec
	passesTotal     *prometheus.CounterVec
	spreadsheets    *prometheus.CounterVec
	directorySize   prometheus.Gauge
	lastPass        prometheus.Gauge
	checkpointSaves prometheus.Histogram
	apiCalls        *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
}

// NewPrometheusProvider registers the checker metrics on reg.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	factory := promauto.With(reg)
	return &PrometheusProvider{
		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sheet_checker_pass_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"result"}),

		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sheet_checker_passes_total",
			Help: "Total number of reconciliation passes",
		}, []string{"result"}),

		spreadsheets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sheet_checker_spreadsheets_total",
			Help: "Spreadsheets processed per outcome",
		}, []string{"outcome"}),

		directorySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sheet_checker_directory_spreadsheets",
			Help: "Number of spreadsheets listed in the directory",
		}),

		lastPass: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sheet_checker_last_successful_pass_timestamp_seconds",
			Help: "Unix time of the last pass that completed without a systemic failure",
		}),

		checkpointSaves: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheet_checker_checkpoint_save_duration_seconds",
			Help:    "Duration of checkpoint saves in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		apiCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sheet_checker_api_calls_total",
			Help: "Remote document API calls",
		}, []string{"endpoint", "status"}),

		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sheet_checker_api_call_duration_seconds",
			Help:    "Remote document API call duration in seconds, throttling included",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *PrometheusProvider) ObservePass(duration time.Duration, systemic bool) {
	result := "ok"
	if systemic {
		result = "systemic_failure"
	} else {
		m.lastPass.SetToCurrentTime()
	}
	m.passDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.passesTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusProvider) IncSpreadsheets(outcome string, count int) {
	if count <= 0 {
		return
	}
	m.spreadsheets.WithLabelValues(outcome).Add(float64(count))
}

func (m *PrometheusProvider) SetDirectorySize(count int) {
	m.directorySize.Set(float64(count))
}

func (m *PrometheusProvider) ObserveCheckpointSave(duration time.Duration) {
	m.checkpointSaves.Observe(duration.Seconds())
}

func (m *PrometheusProvider) IncAPICalls(endpoint string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.apiCalls.WithLabelValues(endpoint, status).Inc()
}

func (m *PrometheusProvider) ObserveAPICall(endpoint string, duration time.Duration) {
	m.apiDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObservePass(_ time.Duration, _ bool)      {}
func (Noop) IncSpreadsheets(_ string, _ int)          {}
func (Noop) SetDirectorySize(_ int)                   {}
func (Noop) ObserveCheckpointSave(_ time.Duration)    {}
func (Noop) IncAPICalls(_ string, _ bool)             {}
func (Noop) ObserveAPICall(_ string, _ time.Duration) {}
