package prometheus

import (
	"time"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
)

// Run outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Bucket layouts.
var (
	DefaultRunDurationBuckets  = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultSolutionSizeBuckets = []float64{1, 2, 4, 8, 16, 32, 64, 128}
)

// MCSMetrics holds the metrics of the matching pipeline.  It implements
// mcs.Recorder so an orchestrator can report directly into it.
type MCSMetrics struct {
	RunsTotal        CounterVec
	RunDuration      HistogramVec
	SeedsTotal       CounterVec
	DroppedPairs     CounterVec
	ExtensionsTotal  CounterVec
	SolutionSize     HistogramVec
	CacheAccessTotal CounterVec
	InFlightRuns     GaugeVec
}

// NewMCSMetrics registers the pipeline metrics on collector.
func NewMCSMetrics(collector MetricsCollector) *MCSMetrics {
	return &MCSMetrics{
		RunsTotal:        collector.RegisterCounter("runs_total", "Matching runs by algorithm and outcome", "algorithm", "status"),
		RunDuration:      collector.RegisterHistogram("run_duration_seconds", "Matching run duration", DefaultRunDurationBuckets, "algorithm"),
		SeedsTotal:       collector.RegisterCounter("seeds_total", "Seeds produced by strategy", "strategy"),
		DroppedPairs:     collector.RegisterCounter("dropped_pairs_total", "Index pairs dropped while encoding", "strategy"),
		ExtensionsTotal:  collector.RegisterCounter("extensions_total", "Extension calls by orientation", "orientation"),
		SolutionSize:     collector.RegisterHistogram("solution_size", "Size of the best solution per run", DefaultSolutionSizeBuckets, "algorithm"),
		CacheAccessTotal: collector.RegisterCounter("cache_access_total", "Result cache lookups", "result"),
		InFlightRuns:     collector.RegisterGauge("runs_in_flight", "Matching runs currently executing", "algorithm"),
	}
}

// RecordSeeds implements mcs.Recorder.
func (m *MCSMetrics) RecordSeeds(strategy string, count int) {
	m.SeedsTotal.WithLabelValues(strategy).Add(float64(count))
}

// RecordDroppedPair implements mcs.Recorder.
func (m *MCSMetrics) RecordDroppedPair(strategy string) {
	m.DroppedPairs.WithLabelValues(strategy).Inc()
}

// RecordExtension implements mcs.Recorder.
func (m *MCSMetrics) RecordExtension(orientation string) {
	m.ExtensionsTotal.WithLabelValues(orientation).Inc()
}

// RunStarted marks a run as in flight; the returned func records its outcome.
func (m *MCSMetrics) RunStarted(algorithm string) func(err error, bestSize int) {
	start := time.Now()
	m.InFlightRuns.WithLabelValues(algorithm).Inc()
	return func(err error, bestSize int) {
		m.InFlightRuns.WithLabelValues(algorithm).Dec()
		m.RecordRun(algorithm, err, time.Since(start))
		if err == nil {
			m.RecordSolutionSize(algorithm, bestSize)
		}
	}
}

// RecordRun counts one finished run.
func (m *MCSMetrics) RecordRun(algorithm string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.RunsTotal.WithLabelValues(algorithm, status).Inc()
	m.RunDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

// RecordSolutionSize observes the best solution size of a run.
func (m *MCSMetrics) RecordSolutionSize(algorithm string, size int) {
	m.SolutionSize.WithLabelValues(algorithm).Observe(float64(size))
}

// RecordCacheAccess counts a cache hit or miss.
func (m *MCSMetrics) RecordCacheAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheAccessTotal.WithLabelValues(result).Inc()
}

var _ mcs.Recorder = (*MCSMetrics)(nil)

//Personal.AI order the ending
