/*
 * metrics.go 实现了 EngineMetrics 接口的三种变体（Prometheus、Noop、InMemory）以及基于排序切片+线性插值的 latencyHistogram，所有 Prometheus 指标遵循 keyip_mcs_engine_ 前缀命名规范。
 * metrics_test.go 覆盖注册/重复注册、Record 方法、Noop 零值安全、InMemory 回溯以及百分位数精度。
*/

package common

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// EngineMetrics is the telemetry API of the reference search engines.  Each
// engine reports one SearchMetricParams per call so the backend (Prometheus,
// in-memory, noop) can be swapped without touching the engines.
type EngineMetrics interface {
	// RecordSearch records one engine call.
	RecordSearch(ctx context.Context, params *SearchMetricParams)

	// GetLatencyHistogram returns the latency histogram of all searches.
	GetLatencyHistogram() LatencyHistogram

	// GetCurrentStats returns a point-in-time statistics snapshot.
	GetCurrentStats() *EngineStats
}

// LatencyHistogram provides percentile-based latency observation.
type LatencyHistogram interface {
	// Observe records a latency sample in milliseconds.
	Observe(durationMs float64)

	// Percentile returns the value at the given percentile (0–100).
	Percentile(p float64) float64

	// Count returns the total number of observed samples.
	Count() int64

	// Sum returns the sum of all observed values.
	Sum() float64
}

// ---------------------------------------------------------------------------
// Parameter structs
// ---------------------------------------------------------------------------

// SearchMetricParams carries the data for one engine call.
type SearchMetricParams struct {
	Engine     string  `json:"engine"`
	DurationMs float64 `json:"duration_ms"`
	Iterations int     `json:"iterations"`
	Results    int     `json:"results"`
	Truncated  bool    `json:"truncated"`
	Success    bool    `json:"success"`
}

// EngineStats is a point-in-time snapshot of engine metrics.
type EngineStats struct {
	TotalSearches     int64   `json:"total_searches"`
	FailedSearches    int64   `json:"failed_searches"`
	TruncatedSearches int64   `json:"truncated_searches"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
	P50LatencyMs      float64 `json:"p50_latency_ms"`
	P95LatencyMs      float64 `json:"p95_latency_ms"`
	P99LatencyMs      float64 `json:"p99_latency_ms"`
}

// ---------------------------------------------------------------------------
// Prometheus implementation
// ---------------------------------------------------------------------------

const metricsPrefix = "keyip_mcs_engine_"

var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type prometheusEngineMetrics struct {
	searchDuration  *prometheus.HistogramVec
	searchTotal     *prometheus.CounterVec
	iterationsTotal *prometheus.CounterVec
	resultsTotal    *prometheus.CounterVec

	latencyHist *latencyHistogram
	total       atomic.Int64
	failed      atomic.Int64
	truncated   atomic.Int64
}

// NewPrometheusEngineMetrics creates a Prometheus-backed collector and
// registers it with registerer (the default registerer when nil).
func NewPrometheusEngineMetrics(registerer prometheus.Registerer) (EngineMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &prometheusEngineMetrics{latencyHist: newLatencyHistogram()}

	m.searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "search_duration_milliseconds",
		Help:    "Histogram of engine search latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"engine"})

	m.searchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "search_total",
		Help: "Total number of engine searches by outcome.",
	}, []string{"engine", "status"})

	m.iterationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "search_iterations_total",
		Help: "Total number of search states visited.",
	}, []string{"engine"})

	m.resultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "search_results_total",
		Help: "Total number of results returned by engine searches.",
	}, []string{"engine"})

	for _, c := range []prometheus.Collector{m.searchDuration, m.searchTotal, m.iterationsTotal, m.resultsTotal} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func searchStatus(p *SearchMetricParams) string {
	switch {
	case !p.Success:
		return "failure"
	case p.Truncated:
		return "truncated"
	default:
		return "success"
	}
}

func (m *prometheusEngineMetrics) RecordSearch(_ context.Context, p *SearchMetricParams) {
	if p == nil {
		return
	}
	m.searchDuration.WithLabelValues(p.Engine).Observe(p.DurationMs)
	m.searchTotal.WithLabelValues(p.Engine, searchStatus(p)).Inc()
	m.iterationsTotal.WithLabelValues(p.Engine).Add(float64(p.Iterations))
	m.resultsTotal.WithLabelValues(p.Engine).Add(float64(p.Results))

	m.latencyHist.Observe(p.DurationMs)
	m.total.Add(1)
	if !p.Success {
		m.failed.Add(1)
	}
	if p.Truncated {
		m.truncated.Add(1)
	}
}

func (m *prometheusEngineMetrics) GetLatencyHistogram() LatencyHistogram {
	return m.latencyHist
}

func (m *prometheusEngineMetrics) GetCurrentStats() *EngineStats {
	return statsFrom(m.latencyHist, m.total.Load(), m.failed.Load(), m.truncated.Load())
}

func statsFrom(h *latencyHistogram, total, failed, truncated int64) *EngineStats {
	var avg float64
	if total > 0 {
		avg = h.Sum() / float64(total)
	}
	return &EngineStats{
		TotalSearches:     total,
		FailedSearches:    failed,
		TruncatedSearches: truncated,
		AvgLatencyMs:      avg,
		P50LatencyMs:      h.Percentile(50),
		P95LatencyMs:      h.Percentile(95),
		P99LatencyMs:      h.Percentile(99),
	}
}

// ---------------------------------------------------------------------------
// Noop implementation
// ---------------------------------------------------------------------------

type noopEngineMetrics struct{}

// NewNoopEngineMetrics returns a no-op metrics implementation.
func NewNoopEngineMetrics() EngineMetrics {
	return noopEngineMetrics{}
}

func (noopEngineMetrics) RecordSearch(context.Context, *SearchMetricParams) {}

func (noopEngineMetrics) GetLatencyHistogram() LatencyHistogram { return newLatencyHistogram() }

func (noopEngineMetrics) GetCurrentStats() *EngineStats { return &EngineStats{} }

// ---------------------------------------------------------------------------
// In-memory implementation (for testing)
// ---------------------------------------------------------------------------

// InMemoryEngineMetrics keeps every recorded search for inspection in tests.
type InMemoryEngineMetrics struct {
	mu          sync.Mutex
	searches    []*SearchMetricParams
	latencyHist *latencyHistogram
}

// NewInMemoryEngineMetrics returns an in-memory metrics implementation.
func NewInMemoryEngineMetrics() *InMemoryEngineMetrics {
	return &InMemoryEngineMetrics{latencyHist: newLatencyHistogram()}
}

func (m *InMemoryEngineMetrics) RecordSearch(_ context.Context, p *SearchMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.searches = append(m.searches, &cp)
	m.latencyHist.Observe(p.DurationMs)
}

func (m *InMemoryEngineMetrics) GetLatencyHistogram() LatencyHistogram {
	return m.latencyHist
}

func (m *InMemoryEngineMetrics) GetCurrentStats() *EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var failed, truncated int64
	for _, s := range m.searches {
		if !s.Success {
			failed++
		}
		if s.Truncated {
			truncated++
		}
	}
	return statsFrom(m.latencyHist, int64(len(m.searches)), failed, truncated)
}

// GetRecordedSearches returns a copy of all recorded searches.
func (m *InMemoryEngineMetrics) GetRecordedSearches() []*SearchMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*SearchMetricParams, len(m.searches))
	for i, p := range m.searches {
		cp := *p
		out[i] = &cp
	}
	return out
}

// ---------------------------------------------------------------------------
// latencyHistogram — in-memory, thread-safe, percentile-capable
// ---------------------------------------------------------------------------

type latencyHistogram struct {
	mu      sync.Mutex
	samples []float64
	sum     float64
	sorted  bool
}

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{samples: make([]float64, 0, 256)}
}

func (h *latencyHistogram) Observe(durationMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, durationMs)
	h.sum += durationMs
	h.sorted = false
}

// Percentile returns the value at percentile p (0–100) using linear
// interpolation between the two nearest ranks.
func (h *latencyHistogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.samples)
	if n == 0 {
		return 0
	}
	if !h.sorted {
		sort.Float64s(h.samples)
		h.sorted = true
	}
	if p <= 0 {
		return h.samples[0]
	}
	if p >= 100 {
		return h.samples[n-1]
	}

	// PERCENTILE.INC: rank = p/100 * (n-1)
	rank := (p / 100) * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return h.samples[n-1]
	}
	frac := rank - float64(lower)
	return h.samples[lower] + frac*(h.samples[upper]-h.samples[lower])
}

func (h *latencyHistogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.samples))
}

func (h *latencyHistogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// compile-time interface checks
var (
	_ EngineMetrics    = (*prometheusEngineMetrics)(nil)
	_ EngineMetrics    = noopEngineMetrics{}
	_ EngineMetrics    = (*InMemoryEngineMetrics)(nil)
	_ LatencyHistogram = (*latencyHistogram)(nil)
)

//Personal.AI order the ending
