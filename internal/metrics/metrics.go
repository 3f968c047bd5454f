package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "fxsync"

// File outcomes.
const (
	FileUploaded    = "uploaded"
	FileDuplicate   = "duplicate"
	FileUnresolved  = "unresolved"
	FileOutOfWindow = "out_of_window"
	FileFailed      = "failed"
)

// Run outcomes.
const (
	RunUploaded  = "uploaded"
	RunNoNewData = "no_new_data"
	RunFailed    = "failed"
)

var (
	// Registry holds the fxsync collectors.
	Registry = prometheus.NewRegistry()

	filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "files_total",
			Help:      "Staged files processed, by outcome.",
		},
		[]string{"outcome"},
	)

	rowsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "rows_inserted_total",
			Help:      "Rows committed to the remote store.",
		},
		[]string{"pair"},
	)

	chunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "chunks_total",
			Help:      "Chunk insert calls, by status.",
		},
		[]string{"status"},
	)

	chunkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "chunk_duration_seconds",
			Help:      "Duration of chunk insert calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	acquireRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquire",
			Name:      "runs_total",
			Help:      "Acquisition tool invocations, by instrument and status.",
		},
		[]string{"instrument", "status"},
	)

	acquireDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "acquire",
			Name:      "duration_seconds",
			Help:      "Duration of acquisition tool invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs, by outcome.",
		},
		[]string{"outcome"},
	)

	lastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		},
	)

	lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that did not fail.",
		},
	)
)

func init() {
	Registry.MustRegister(
		filesTotal,
		rowsInserted,
		chunksTotal,
		chunkDuration,
		acquireRuns,
		acquireDuration,
		runsTotal,
		lastRun,
		lastSuccess,
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway.
func Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}

// RecordFile counts one staged file outcome.
func RecordFile(outcome string) {
	filesTotal.WithLabelValues(outcome).Inc()
}

// RecordChunk records one chunk insert.
func RecordChunk(pair string, rows int, d time.Duration, err error) {
	chunkDuration.Observe(d.Seconds())
	if err != nil {
		chunksTotal.WithLabelValues("error").Inc()
		return
	}
	chunksTotal.WithLabelValues("ok").Inc()
	rowsInserted.WithLabelValues(pair).Add(float64(rows))
}

// RecordAcquire records one acquisition tool run.
func RecordAcquire(instrument string, d time.Duration, err error) {
	acquireDuration.Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	acquireRuns.WithLabelValues(instrument, status).Inc()
}

// RecordRun records the outcome of a pipeline run finished at t.
func RecordRun(outcome string, t time.Time) {
	runsTotal.WithLabelValues(outcome).Inc()
	lastRun.Set(float64(t.Unix()))
	if outcome != RunFailed {
		lastSuccess.Set(float64(t.Unix()))
	}
}
