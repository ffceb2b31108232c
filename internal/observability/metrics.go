package observability

import (
	"io"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"
)

// MetricsRegistry holds all registered metrics and writes them in the
// Prometheus text exposition format.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name  string
	help  string
	mu    sync.Mutex
	value float64
}

// Gauge is a metric that can go up or down.
type Gauge struct {
	name  string
	help  string
	mu    sync.Mutex
	value float64
}

// Histogram tracks the distribution of observed values.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	mu      sync.Mutex
	counts  []uint64
	sum     float64
	count   uint64
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		gauges:   make(map[string]*Gauge),
		histos:   make(map[string]*Histogram),
	}
}

// NewCounter creates and registers a counter.
func (r *MetricsRegistry) NewCounter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{name: name, help: help}
	r.counters[name] = c
	return c
}

// NewGauge creates and registers a gauge.
func (r *MetricsRegistry) NewGauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &Gauge{name: name, help: help}
	r.gauges[name] = g
	return g
}

// NewHistogram creates and registers a histogram. Nil buckets select
// DefaultBuckets.
func (r *MetricsRegistry) NewHistogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	h := &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
	r.histos[name] = h
	return h
}

// DefaultBuckets returns latency buckets in seconds sized for single-file
// analysis.
func DefaultBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
}

func (c *Counter) Inc() { c.Add(1) }

// Add adds v to the counter.
func (c *Counter) Add(v float64) {
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i]++
		}
	}
}

// ObserveDuration records the seconds elapsed since start.
func (h *Histogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Handler serves the registry for Prometheus scraping.
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WritePrometheus(w)
	})
}

// WritePrometheus writes every metric, sorted by name within each type.
func (r *MetricsRegistry) WritePrometheus(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		writeMetric(w, c.name, "counter", c.help, c.Value())
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		writeMetric(w, g.name, "gauge", g.help, g.Value())
	}
	for _, name := range sortedKeys(r.histos) {
		writeHistogram(w, r.histos[name])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func writeMetric(w io.Writer, name, metricType, help string, value float64) {
	io.WriteString(w, "# HELP "+name+" "+help+"\n")
	io.WriteString(w, "# TYPE "+name+" "+metricType+"\n")
	io.WriteString(w, name+" "+formatFloat(value)+"\n")
}

func writeHistogram(w io.Writer, h *Histogram) {
	h.mu.Lock()
	defer h.mu.Unlock()

	io.WriteString(w, "# HELP "+h.name+" "+h.help+"\n")
	io.WriteString(w, "# TYPE "+h.name+" histogram\n")
	for i, bound := range h.buckets {
		io.WriteString(w, h.name+`_bucket{le="`+formatFloat(bound)+`"} `+strconv.FormatUint(h.counts[i], 10)+"\n")
	}
	io.WriteString(w, h.name+`_bucket{le="+Inf"} `+strconv.FormatUint(h.count, 10)+"\n")
	io.WriteString(w, h.name+"_sum "+formatFloat(h.sum)+"\n")
	io.WriteString(w, h.name+"_count "+strconv.FormatUint(h.count, 10)+"\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// LintMetrics are the counters a long-running process (watch mode, the
// worker) exposes about the runs it has performed.
type LintMetrics struct {
	Registry *MetricsRegistry

	RunsTotal       *Counter
	FilesTotal      *Counter
	SkippedTotal    *Counter
	ViolationsTotal *Counter
	FileDuration    *Histogram
	RunDuration     *Histogram
	LastViolations  *Gauge
}

// NewLintMetrics registers the archlint metric set on a fresh registry.
func NewLintMetrics() *LintMetrics {
	r := NewMetricsRegistry()
	return &LintMetrics{
		Registry:        r,
		RunsTotal:       r.NewCounter("archlint_runs_total", "Completed lint runs"),
		FilesTotal:      r.NewCounter("archlint_files_total", "Files analyzed"),
		SkippedTotal:    r.NewCounter("archlint_files_skipped_total", "Files skipped due to parse or IO errors"),
		ViolationsTotal: r.NewCounter("archlint_violations_total", "Violations reported"),
		FileDuration:    r.NewHistogram("archlint_file_duration_seconds", "Per-file analysis duration", nil),
		RunDuration:     r.NewHistogram("archlint_run_duration_seconds", "Whole run duration", []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}),
		LastViolations:  r.NewGauge("archlint_last_run_violations", "Violations in the most recent run"),
	}
}

// Handler serves the metric set.
func (m *LintMetrics) Handler() http.Handler {
	return m.Registry.Handler()
}

// RecordFile records one analyzed file.
func (m *LintMetrics) RecordFile(d time.Duration, violations int, skipped bool) {
	m.FilesTotal.Inc()
	m.FileDuration.Observe(d.Seconds())
	m.ViolationsTotal.Add(float64(violations))
	if skipped {
		m.SkippedTotal.Inc()
	}
}

// RecordRun records a finished run.
func (m *LintMetrics) RecordRun(d time.Duration, violations int) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(d.Seconds())
	m.LastViolations.Set(float64(violations))
}
