package monitoring

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

// Labels attach dimensions to a series. They are rendered sorted by key.
type Labels map[string]string

// MetricsCollector receives the counters and durations reported by MetricsHook.
type MetricsCollector interface {
	Inc(name string, labels Labels)
	Observe(name string, d time.Duration, labels Labels)
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// series renders name{k="v",...}, the identity of one time series.
func series(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + labelEscaper.Replace(labels[k]) + `"`
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}

// PrometheusCollector keeps its series in a private VictoriaMetrics set.
type PrometheusCollector struct {
	set *metrics.Set
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{set: metrics.NewSet()}
}

func (p *PrometheusCollector) Inc(name string, labels Labels) {
	p.set.GetOrCreateCounter(series(name, labels)).Inc()
}

// Observe records d in seconds.
func (p *PrometheusCollector) Observe(name string, d time.Duration, labels Labels) {
	p.set.GetOrCreateHistogram(series(name, labels)).Update(d.Seconds())
}

// Count returns the value of a counter, zero when it was never incremented.
func (p *PrometheusCollector) Count(name string, labels Labels) uint64 {
	return p.set.GetOrCreateCounter(series(name, labels)).Get()
}

func (p *PrometheusCollector) WritePrometheus(w io.Writer) {
	p.set.WritePrometheus(w)
}

// MemoryCollector keeps everything in memory. It is meant for tests.
type MemoryCollector struct {
	counts *xsync.MapOf[string, *xsync.Counter]

	mu        sync.Mutex
	durations map[string][]time.Duration
}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		counts:    xsync.NewMapOf[string, *xsync.Counter](),
		durations: make(map[string][]time.Duration),
	}
}

func (m *MemoryCollector) Inc(name string, labels Labels) {
	c, _ := m.counts.LoadOrCompute(series(name, labels), xsync.NewCounter)
	c.Inc()
}

func (m *MemoryCollector) Observe(name string, d time.Duration, labels Labels) {
	key := series(name, labels)
	m.mu.Lock()
	m.durations[key] = append(m.durations[key], d)
	m.mu.Unlock()
}

func (m *MemoryCollector) Count(name string, labels Labels) int64 {
	if c, ok := m.counts.Load(series(name, labels)); ok {
		return c.Value()
	}
	return 0
}

func (m *MemoryCollector) Durations(name string, labels Labels) []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.durations[series(name, labels)]...)
}
