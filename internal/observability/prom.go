package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Collectors rendered in the Prometheus text exposition format (0.0.4).
// Series are keyed by their label values and written in sorted order.

type collector interface {
	WritePrometheus(w io.Writer) error
}

// family is the shared name/help/label schema of a metric.
type family struct {
	name   string
	help   string
	labels []string
}

func (f family) key(values []string) string {
	vals := make([]string, len(f.labels))
	for i := range f.labels {
		vals[i] = "unknown"
		if i < len(values) && values[i] != "" {
			vals[i] = values[i]
		}
	}
	return strings.Join(vals, "\x00")
}

// render turns a series key into `{a="x",b="y"}`, appending extra pairs.
func (f family) render(key string, extra ...string) string {
	var pairs []string
	if len(f.labels) > 0 {
		vals := strings.Split(key, "\x00")
		for i, name := range f.labels {
			pairs = append(pairs, name+`="`+escapeLabel(vals[i])+`"`)
		}
	}
	for i := 0; i+1 < len(extra); i += 2 {
		pairs = append(pairs, extra[i]+`="`+escapeLabel(extra[i+1])+`"`)
	}
	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func (f family) header(pw *promWriter, kind string) {
	pw.printf("# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, kind)
}

// promWriter remembers the first write error so call sites stay linear.
type promWriter struct {
	w   io.Writer
	err error
}

func (pw *promWriter) printf(format string, args ...any) {
	if pw.err == nil {
		_, pw.err = fmt.Fprintf(pw.w, format, args...)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type CounterVec struct {
	family
	mu     sync.Mutex
	series map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{family: family{name: name, help: help, labels: labels}, series: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add increases the series for values by v. Negative deltas are ignored.
func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	k := c.key(values)
	c.mu.Lock()
	c.series[k] += v
	c.mu.Unlock()
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.series[c.key(values)]
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	snap := make(map[string]float64, len(c.series))
	for k, v := range c.series {
		snap[k] = v
	}
	c.mu.Unlock()

	pw := &promWriter{w: w}
	c.header(pw, "counter")
	for _, k := range sortedKeys(snap) {
		pw.printf("%s%s %s\n", c.name, c.render(k), formatFloat(snap[k]))
	}
	return pw.err
}

type Gauge struct {
	family
	mu  sync.Mutex
	val float64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{family: family{name: name, help: help}}
}

func (g *Gauge) Add(v float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val += v
	g.mu.Unlock()
}

func (g *Gauge) Inc() { g.Add(1) }
func (g *Gauge) Dec() { g.Add(-1) }

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.val
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	pw := &promWriter{w: w}
	g.header(pw, "gauge")
	pw.printf("%s %s\n", g.name, formatFloat(g.Value()))
	return pw.err
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	family
	bounds []float64
	mu     sync.Mutex
	series map[string]*histSeries
}

type histSeries struct {
	// perBucket[i] counts observations in (bounds[i-1], bounds[i]]; the last slot is above every bound.
	perBucket []uint64
	sum       float64
	count     uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	return &HistogramVec{
		family: family{name: name, help: help, labels: labels},
		bounds: bounds,
		series: map[string]*histSeries{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	k := h.key(values)
	idx := sort.SearchFloat64s(h.bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[k]
	if s == nil {
		s = &histSeries{perBucket: make([]uint64, len(h.bounds)+1)}
		h.series[k] = s
	}
	s.perBucket[idx]++
	s.sum += v
	s.count++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	snap := make(map[string]histSeries, len(h.series))
	for k, s := range h.series {
		snap[k] = histSeries{perBucket: append([]uint64(nil), s.perBucket...), sum: s.sum, count: s.count}
	}
	h.mu.Unlock()

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pw := &promWriter{w: w}
	h.header(pw, "histogram")
	for _, k := range keys {
		s := snap[k]
		var cum uint64
		for i, b := range h.bounds {
			cum += s.perBucket[i]
			pw.printf("%s_bucket%s %d\n", h.name, h.render(k, "le", formatFloat(b)), cum)
		}
		pw.printf("%s_bucket%s %d\n", h.name, h.render(k, "le", "+Inf"), s.count)
		pw.printf("%s_sum%s %s\n", h.name, h.render(k), formatFloat(s.sum))
		pw.printf("%s_count%s %d\n", h.name, h.render(k), s.count)
	}
	return pw.err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}
