package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		Enabled:    true,
		URL:        url,
		Topic:      "dashboards",
		Priority:   "high",
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestSendPostsToTopic(t *testing.T) {
	var gotPath, gotTitle, gotPriority, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL + "/"))
	require.NoError(t, c.Send(context.Background(), "hello", "world"))

	assert.Equal(t, "/dashboards", gotPath)
	assert.Equal(t, "hello", gotTitle)
	assert.Equal(t, "high", gotPriority)
	assert.Equal(t, "world", gotBody)

	sent, failed := c.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	require.NoError(t, c.Send(context.Background(), "", "msg"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.Send(context.Background(), "", "msg")

	var notifErr *NotificationError
	require.ErrorAs(t, err, &notifErr)
	assert.Equal(t, "auth", notifErr.Type)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCircuitBreakerOpensAndCoolsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	now := time.Unix(0, 0)
	c := NewClient(testConfig(srv.URL))
	c.now = func() time.Time { return now }

	for i := 0; i < circuitThreshold; i++ {
		assert.Error(t, c.Send(context.Background(), "", "msg"))
	}

	err := c.Send(context.Background(), "", "msg")
	var notifErr *NotificationError
	require.ErrorAs(t, err, &notifErr)
	assert.Equal(t, "circuit_open", notifErr.Type)

	now = now.Add(circuitCooldown + time.Second)
	assert.False(t, c.isCircuitOpen())
}

func TestDisabledClientSendsNothing(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:1", Topic: "x"})
	assert.NoError(t, c.Send(context.Background(), "", "msg"))

	var nilClient *Client
	assert.NoError(t, nilClient.Send(context.Background(), "", "msg"))
}

func TestFormatNewSheets(t *testing.T) {
	assert.Equal(t, "1 new sheet in X\n- Data", formatNewSheets("X", []string{"Data"}))

	many := make([]string, 12)
	for i := range many {
		many[i] = "S"
	}
	msg := formatNewSheets("X", many)
	assert.Contains(t, msg, "12 new sheets in X")
	assert.Contains(t, msg, "... and 2 more")
}
