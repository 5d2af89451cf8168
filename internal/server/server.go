// Package server exposes the health and metrics endpoints of the checker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sheet_display/internal/monitor"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// StatusSource provides the monitor snapshot reported by /health.
type StatusSource interface {
	Status() monitor.Status
}

type healthResponse struct {
	Status        string              `json:"status"`
	Uptime        string              `json:"uptime"`
	UptimeSeconds float64             `json:"uptime_seconds"`
	State         monitor.State       `json:"state"`
	LastPassAt    *time.Time          `json:"last_pass_at,omitempty"`
	LastPass      *monitor.PassResult `json:"last_pass,omitempty"`
	LastError     string              `json:"last_error,omitempty"`
	Checkpoints   int                 `json:"checkpoints"`
}

type Server struct {
	httpServer *http.Server
	source     StatusSource
	startTime  time.Time
}

// New builds the server. A nil gatherer disables /metrics.
func New(addr string, source StatusSource, gatherer prometheus.Gatherer) *Server {
	s := &Server{source: source, startTime: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.Health)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.httpServer.Addr).Msg("Listening for health and metrics requests")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("Health server stopped")
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.source.Status()
	uptime := time.Since(s.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		State:         status.State,
		LastPass:      status.LastPass,
		LastError:     status.LastError,
		Checkpoints:   status.Checkpoints,
	}
	if !status.LastPassAt.IsZero() {
		resp.LastPassAt = &status.LastPassAt
	}
	if status.LastError != "" {
		resp.Status = "degraded"
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}
