// Package server provides the HTTP endpoints watch mode exposes: health
// probes, the last run's status, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/efebarandurmaz/archlint/internal/check"
)

// HealthStatus represents the health state of the watcher.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// RunStatus describes the most recent check run.
type RunStatus struct {
	At         time.Time `json:"at"`
	Files      int       `json:"files"`
	Skipped    int       `json:"skipped"`
	Violations int       `json:"violations"`
	Cycles     int       `json:"cycles"`
	Passed     bool      `json:"passed"`
	Error      string    `json:"error,omitempty"`
}

// HealthResponse is the response from the status endpoints.
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version,omitempty"`
	LastRun   *RunStatus   `json:"last_run,omitempty"`
}

// StatusServer tracks watch-mode runs and serves them over HTTP.
type StatusServer struct {
	mu      sync.RWMutex
	version string
	last    *RunStatus
	metrics http.Handler
	now     func() time.Time
}

// NewStatusServer creates a status server. metrics may be nil.
func NewStatusServer(version string, metrics http.Handler) *StatusServer {
	return &StatusServer{version: version, metrics: metrics, now: time.Now}
}

// RecordRun stores the outcome of a completed run.
func (s *StatusServer) RecordRun(res *check.Result) {
	st := &RunStatus{
		At:         s.now().UTC(),
		Files:      res.Report.Summary.Files,
		Skipped:    res.Report.Summary.Skipped,
		Violations: res.Report.Summary.Violations,
		Cycles:     len(res.Cycles),
		Passed:     res.Gates.Passed(),
	}
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
}

// RecordError stores a run that could not start, such as one with a broken
// rule document.
func (s *StatusServer) RecordError(err error) {
	st := &RunStatus{At: s.now().UTC(), Error: err.Error()}
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
}

// Handler returns an http.Handler for the status endpoints.
func (s *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleLive)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/status", s.handleStatus)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *StatusServer) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *StatusServer) lastRun() *RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

// handleLive reports that the process is up.
func (s *StatusServer) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: HealthStatusHealthy, Timestamp: s.now().UTC()})
}

// handleReady succeeds once the first run has finished.
func (s *StatusServer) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: HealthStatusHealthy, Timestamp: s.now().UTC()}
	if s.lastRun() == nil {
		resp.Status = HealthStatusUnhealthy
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus reports the last run. A failing check is degraded; a run
// that could not start is unhealthy.
func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	last := s.lastRun()
	resp := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: s.now().UTC(),
		Version:   s.version,
		LastRun:   last,
	}
	code := http.StatusOK
	switch {
	case last == nil:
		resp.Status = HealthStatusDegraded
	case last.Error != "":
		resp.Status = HealthStatusUnhealthy
		code = http.StatusServiceUnavailable
	case !last.Passed:
		resp.Status = HealthStatusDegraded
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
