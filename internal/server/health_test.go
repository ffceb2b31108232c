package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/efebarandurmaz/archlint/internal/check"
	"github.com/efebarandurmaz/archlint/internal/lint"
	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/qualitygate"
)

func result(violations int) *check.Result {
	var results []lint.AnalysisResult
	for range violations {
		results = append(results, lint.AnalysisResult{FilePath: "a.ts", Violations: []lint.Violation{{Line: 1}}})
	}
	report := lint.NewReport(results, 0)
	return &check.Result{
		Report: report,
		Gates:  qualitygate.BuildPipeline(qualitygate.Options{}).Run(&qualitygate.EvalContext{Report: report}),
	}
}

func get(t *testing.T, h http.Handler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp HealthResponse
	if path != "/metrics" {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid JSON: %v", path, err)
		}
	}
	return rec.Code, resp
}

func TestStatusServer_Lifecycle(t *testing.T) {
	s := NewStatusServer("1.0.0", nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	h := s.Handler()

	if code, resp := get(t, h, "/healthz"); code != http.StatusOK || resp.Status != HealthStatusHealthy {
		t.Errorf("healthz: %d %s", code, resp.Status)
	}
	if code, _ := get(t, h, "/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("expected not ready before first run, got %d", code)
	}

	s.RecordRun(result(0))
	if code, _ := get(t, h, "/readyz"); code != http.StatusOK {
		t.Errorf("expected ready after first run, got %d", code)
	}
	code, resp := get(t, h, "/status")
	if code != http.StatusOK || resp.Status != HealthStatusHealthy || resp.LastRun == nil || !resp.LastRun.Passed {
		t.Errorf("unexpected status after clean run: %d %+v", code, resp)
	}
	if resp.Version != "1.0.0" || !resp.LastRun.At.Equal(s.now()) {
		t.Errorf("unexpected version or time: %+v", resp)
	}
}

func TestStatusServer_StatusStates(t *testing.T) {
	tests := []struct {
		name   string
		record func(s *StatusServer)
		code   int
		status HealthStatus
	}{
		{"no run yet", func(*StatusServer) {}, http.StatusOK, HealthStatusDegraded},
		{"violations", func(s *StatusServer) { s.RecordRun(result(2)) }, http.StatusOK, HealthStatusDegraded},
		{"run error", func(s *StatusServer) { s.RecordError(errors.New("invalid rules")) }, http.StatusServiceUnavailable, HealthStatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatusServer("", nil)
			tt.record(s)
			code, resp := get(t, s.Handler(), "/status")
			if code != tt.code || resp.Status != tt.status {
				t.Errorf("got %d %s, want %d %s", code, resp.Status, tt.code, tt.status)
			}
		})
	}
}

func TestStatusServer_Metrics(t *testing.T) {
	m := observability.NewLintMetrics()
	m.RecordRun(time.Second, 3)
	s := NewStatusServer("", m.Handler())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "archlint_runs_total 1") {
		t.Errorf("unexpected metrics response %d:\n%s", rec.Code, rec.Body.String())
	}
}
