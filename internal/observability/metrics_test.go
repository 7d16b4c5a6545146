package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/spof", 200, 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/spof", 200, 30*time.Millisecond)
	m.ObserveReasoning("spof_detection", "error", time.Second)
	m.AddSPOFRecords("analysis", 3)
	m.AddSPOFRecords("manual", 0)
	m.APIInflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`continuity_api_requests_total{method="GET",route="/api/spof",status="200"} 2`,
		`continuity_api_request_duration_seconds_count{method="GET",route="/api/spof"} 2`,
		`continuity_api_request_duration_seconds_bucket{method="GET",route="/api/spof",le="0.025"} 1`,
		`continuity_reasoning_requests_total{operation="spof_detection",status="error"} 1`,
		`continuity_spof_records_total{source="analysis"} 3`,
		`continuity_api_inflight_requests 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, `source="manual"`) {
		t.Fatalf("zero adds should not create a series")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ObserveReasoning("x", "ok", time.Millisecond)
	m.APIInflightInc()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" a=1, b = 2 ,broken,=x")
	if len(h) != 2 || h["a"] != "1" || h["b"] != "2" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestCollectorsRenderLabelsAndBuckets(t *testing.T) {
	c := NewCounterVec("c_total", "help", []string{"path"})
	c.Inc(`/a"b`)
	c.Add(-5, "ignored")
	c.Inc()

	h := NewHistogramVec("h_seconds", "help", nil, []float64{1, 0.5})
	h.Observe(0.25)
	h.Observe(0.75)
	h.Observe(3)

	var buf bytes.Buffer
	if err := c.WritePrometheus(&buf); err != nil {
		t.Fatalf("counter: %v", err)
	}
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("histogram: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`c_total{path="/a\"b"} 1`,
		`c_total{path="unknown"} 1`,
		`h_seconds_bucket{le="0.5"} 1`,
		`h_seconds_bucket{le="1"} 2`,
		`h_seconds_bucket{le="+Inf"} 3`,
		"h_seconds_sum 4",
		"h_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("negative counter add must not create a series")
	}
}

func TestOtelConfigDefaults(t *testing.T) {
	if got := (OtelConfig{ServiceName: "  "}).service(); got != "continuity" {
		t.Fatalf("service: expected default, got %q", got)
	}
	if n := len(OtelConfig{Endpoint: "http://collector:4318/v1/traces", Insecure: true}.otlpOptions()); n != 2 {
		t.Fatalf("otlpOptions: expected 2 options, got %d", n)
	}
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("disabled shutdown: %v", err)
	}
}
