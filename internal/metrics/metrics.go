// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the report pipeline.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// Concrete metric systems live in subpackages (prompush, datadog).
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StageTotal    = "reportetl_stage_total"
	StageDuration = "reportetl_stage_duration_seconds"
	RowsTotal     = "reportetl_rows_total"
	RunsTotal     = "reportetl_runs_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage counts one pipeline stage execution and records its latency.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "read"
//   - "admitted"
//   - "written"
//   - "rejected_<reason>"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRun counts one finished run by its final state ("MARKER_CLEARED",
// "ABORTED") and abort kind ("" on success).
func RecordRun(job, state, kind string) {
	current().IncCounter(RunsTotal, 1, Labels{
		"job":   job,
		"state": state,
		"kind":  kind,
	})
}
