package metrics

import (
	"context"
	"time"

	"sheet_display/internal/document"
)

type instrumented struct {
	api document.API
	m   Provider
}

// Instrument records the count, outcome and latency of every call of api.
func Instrument(api document.API, m Provider) document.API {
	return &instrumented{api: api, m: m}
}

func (i *instrumented) observe(endpoint string, start time.Time, err error) {
	i.m.ObserveAPICall(endpoint, time.Since(start))
	i.m.IncAPICalls(endpoint, err == nil)
}

func (i *instrumented) ListSheets(ctx context.Context, spreadsheetID string) ([]string, error) {
	start := time.Now()
	sheets, err := i.api.ListSheets(ctx, spreadsheetID)
	i.observe(document.EndpointMetadata, start, err)
	return sheets, err
}

func (i *instrumented) ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	start := time.Now()
	values, err := i.api.ReadRange(ctx, spreadsheetID, a1Range)
	i.observe(document.EndpointRead, start, err)
	return values, err
}

func (i *instrumented) UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}) error {
	start := time.Now()
	err := i.api.UpdateRange(ctx, spreadsheetID, a1Range, values)
	i.observe(document.EndpointWrite, start, err)
	return err
}

func (i *instrumented) AppendRows(ctx context.Context, spreadsheetID, a1Range string, rows [][]interface{}) error {
	start := time.Now()
	err := i.api.AppendRows(ctx, spreadsheetID, a1Range, rows)
	i.observe(document.EndpointAppend, start, err)
	return err
}
