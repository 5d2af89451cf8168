package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	docstest "sheet_display/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Provider = Noop{}
var _ Provider = (*PrometheusProvider)(nil)

func TestNoopDoesNotPanic(t *testing.T) {
	var m Provider = Noop{}
	m.ObservePass(time.Second, false)
	m.IncSpreadsheets(OutcomeReconciled, 2)
	m.SetDirectorySize(3)
	m.ObserveCheckpointSave(time.Millisecond)
	m.IncAPICalls("read", true)
	m.ObserveAPICall("read", time.Millisecond)
}

func TestPrometheusProviderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusProvider(reg)

	m.ObservePass(2*time.Second, false)
	m.ObservePass(time.Second, true)
	m.IncSpreadsheets(OutcomeReconciled, 3)
	m.IncSpreadsheets(OutcomeFailed, 0)
	m.SetDirectorySize(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.passesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passesTotal.WithLabelValues("systemic_failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.spreadsheets.WithLabelValues(OutcomeReconciled)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.spreadsheets.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.directorySize))
	assert.Greater(t, testutil.ToFloat64(m.lastPass), 0.0)
}

func TestPrometheusProviderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusProvider(reg)
	assert.Panics(t, func() { NewPrometheusProvider(reg) })
}

func TestInstrumentCountsCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusProvider(reg)

	docs := docstest.NewDocuments()
	docs.AddSheet("X", "Data", []string{"a"})
	docs.FailOn("UpdateRange", "X", errors.New("quota"))
	api := Instrument(docs, m)

	ctx := context.Background()
	_, err := api.ListSheets(ctx, "X")
	require.NoError(t, err)
	_, err = api.ReadRange(ctx, "X", "Data!1:1")
	require.NoError(t, err)
	assert.Error(t, api.UpdateRange(ctx, "X", "Data!A1", [][]interface{}{{"b"}}))
	require.NoError(t, api.AppendRows(ctx, "X", "Data!A:A", [][]interface{}{{"c"}}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("metadata", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("read", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("write", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("append", "ok")))
}
