package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sheet_display/internal/monitor"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStatus monitor.Status

func (s staticStatus) Status() monitor.Status { return monitor.Status(s) }

func TestHealthReportsMonitorState(t *testing.T) {
	last := &monitor.PassResult{ID: "pass-1", Total: 3, Reconciled: 2, Skipped: 1}
	srv := New(":0", staticStatus{
		State:       monitor.Sleep,
		LastPassAt:  time.Unix(1_700_000_000, 0),
		LastPass:    last,
		Checkpoints: 3,
	}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sleep", body["state"])
	assert.Equal(t, float64(3), body["checkpoints"])
	assert.Contains(t, body, "last_pass_at")

	lastPass, ok := body["last_pass"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pass-1", lastPass["id"])
	assert.Equal(t, float64(2), lastPass["reconciled"])
}

func TestHealthDegradedAfterSystemicFailure(t *testing.T) {
	srv := New(":0", staticStatus{State: monitor.Backoff, LastError: "directory unavailable"}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "directory unavailable", body["last_error"])
	assert.NotContains(t, body, "last_pass_at")
}

func TestHealthRejectsOtherMethods(t *testing.T) {
	srv := New(":0", staticStatus{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "sheet_checker_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := New(":0", staticStatus{}, reg)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sheet_checker_test_total 1")

	rec = httptest.NewRecorder()
	New(":0", staticStatus{}, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", staticStatus{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
