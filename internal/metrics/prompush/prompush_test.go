package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"reportetl/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

// TestNewBackend validates defaults and required fields.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "daily", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "reportetl"},
		{name: "explicit job name is preserved", jobName: "daily", gatewayURL: "http://pushgateway:9091", wantJobName: "daily"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewBackend() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

// TestIncCounterAndObserve verifies label mapping onto the collectors.
func TestIncCounterAndObserve(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("daily", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "fetch", "status": "success"})
	b.IncCounter(metrics.StageTotal, 2, metrics.Labels{"stage": "fetch", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 7, metrics.Labels{"kind": "admitted"})
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"state": "MARKER_CLEARED", "kind": ""})
	b.IncCounter("unknown_metric", 5, nil)
	b.ObserveHistogram(metrics.StageDuration, 0.5, metrics.Labels{"stage": "load", "status": "failure"})
	b.ObserveHistogram("unknown_metric", 9, nil)

	if got := readCounterValue(t, b.stageCounter.WithLabelValues("fetch", "success")); got != 3 {
		t.Fatalf("stage counter = %v, want 3", got)
	}
	if got := readCounterValue(t, b.rowCounter.WithLabelValues("admitted")); got != 7 {
		t.Fatalf("row counter = %v, want 7", got)
	}
	if got := readCounterValue(t, b.runCounter.WithLabelValues("MARKER_CLEARED", "")); got != 1 {
		t.Fatalf("run counter = %v, want 1", got)
	}
	if n, sum := readSummaryCountSum(t, b.stageDuration, "load", "failure"); n != 1 || sum != 0.5 {
		t.Fatalf("summary = (%d, %v), want (1, 0.5)", n, sum)
	}
}

// TestIncCounterNilMetrics ensures a zero Backend does not panic.
func TestIncCounterNilMetrics(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.StageTotal, 1, nil)
	b.IncCounter(metrics.RowsTotal, 1, nil)
	b.IncCounter(metrics.RunsTotal, 1, nil)
	b.ObserveHistogram(metrics.StageDuration, 1, nil)
}

// TestFlush verifies that Flush pushes the registry to the Pushgateway under
// the job grouping key.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequestInfo struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushRequestInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequestInfo{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("daily", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 3, metrics.Labels{"kind": "written"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequestInfo
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %q, want PUT", got.method)
	}
	if !strings.Contains(got.path, "/job/daily") {
		t.Fatalf("path = %q, want job grouping", got.path)
	}
	if len(got.body) == 0 {
		t.Fatalf("Push request body is empty")
	}
}
