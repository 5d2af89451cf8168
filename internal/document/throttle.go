package document

import (
	"context"
	"time"

	"sheet_display/internal/ratelimit"

	"golang.org/x/time/rate"
)

// Endpoint names used for per-endpoint throttling.
const (
	EndpointMetadata = "metadata"
	EndpointRead     = "read"
	EndpointWrite    = "write"
	EndpointAppend   = "append"
)

// Quota configures the outbound call budget.
type Quota struct {
	MaxCalls        int           `mapstructure:"max_calls" validate:"required|min:1"`
	Period          time.Duration `mapstructure:"period" validate:"required|min:1"`
	GlobalPerSecond float64       `mapstructure:"global_per_second" validate:"min:0"`
}

// Limiters holds one limiter per endpoint.
type Limiters map[string]ratelimit.Limiter

// NewLimiters builds a sliding window per endpoint. When GlobalPerSecond is set, a
// shared token bucket is chained in front of every endpoint window.
func NewLimiters(q Quota) Limiters {
	var global ratelimit.Limiter
	if q.GlobalPerSecond > 0 {
		burst := int(q.GlobalPerSecond)
		if burst < 1 {
			burst = 1
		}
		global = rate.NewLimiter(rate.Limit(q.GlobalPerSecond), burst)
	}

	limiters := Limiters{}
	for _, name := range []string{EndpointMetadata, EndpointRead, EndpointWrite, EndpointAppend} {
		window := ratelimit.NewSlidingWindow(name, q.MaxCalls, q.Period)
		if global != nil {
			limiters[name] = ratelimit.Chain{global, window}
		} else {
			limiters[name] = window
		}
	}
	return limiters
}

type throttled struct {
	api      API
	limiters Limiters
}

// Throttle wraps every call of api with the limiter of its endpoint.
func Throttle(api API, limiters Limiters) API {
	return &throttled{api: api, limiters: limiters}
}

func (t *throttled) wait(ctx context.Context, endpoint string) error {
	l, ok := t.limiters[endpoint]
	if !ok || l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func (t *throttled) ListSheets(ctx context.Context, spreadsheetID string) ([]string, error) {
	if err := t.wait(ctx, EndpointMetadata); err != nil {
		return nil, err
	}
	return t.api.ListSheets(ctx, spreadsheetID)
}

func (t *throttled) ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	if err := t.wait(ctx, EndpointRead); err != nil {
		return nil, err
	}
	return t.api.ReadRange(ctx, spreadsheetID, a1Range)
}

func (t *throttled) UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}) error {
	if err := t.wait(ctx, EndpointWrite); err != nil {
		return err
	}
	return t.api.UpdateRange(ctx, spreadsheetID, a1Range, values)
}

func (t *throttled) AppendRows(ctx context.Context, spreadsheetID, a1Range string, rows [][]interface{}) error {
	if err := t.wait(ctx, EndpointAppend); err != nil {
		return err
	}
	return t.api.AppendRows(ctx, spreadsheetID, a1Range, rows)
}
