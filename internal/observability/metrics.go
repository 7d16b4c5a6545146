package observability

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// Metrics holds the process counters served on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	apiRequests      *CounterVec
	apiLatency       *HistogramVec
	apiInflight      *Gauge
	reasoningCalls   *CounterVec
	reasoningLatency *HistogramVec
	spofRecords      *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("continuity_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"continuity_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight:    NewGauge("continuity_api_inflight_requests", "In-flight API requests."),
		reasoningCalls: NewCounterVec("continuity_reasoning_requests_total", "Reasoning service calls by operation/status.", []string{"operation", "status"}),
		reasoningLatency: NewHistogramVec(
			"continuity_reasoning_request_duration_seconds",
			"Reasoning service latency in seconds by operation.",
			[]string{"operation"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		spofRecords: NewCounterVec("continuity_spof_records_total", "SPOF records written by source.", []string{"source"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveReasoning records one reasoning call; status is "ok" or "error".
func (m *Metrics) ObserveReasoning(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.reasoningCalls.Inc(operation, status)
	m.reasoningLatency.Observe(dur.Seconds(), operation)
}

// AddSPOFRecords counts records written by an analysis ("analysis") or a manual edit ("manual").
func (m *Metrics) AddSPOFRecords(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.spofRecords.Add(float64(n), source)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.reasoningCalls,
		m.reasoningLatency,
		m.spofRecords,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
