package observability

import (
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// histogramWindow bounds memory: only the most recent samples are kept.
const histogramWindow = 4096

// Histogram tracks the distribution of duration measurements over a sliding
// window of recent samples. Safe for concurrent use.
type Histogram struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	total   int64
}

// NewHistogram creates a new histogram.
func NewHistogram() *Histogram {
	return &Histogram{samples: make([]time.Duration, 0, 64)}
}

// Observe records a duration measurement.
func (h *Histogram) Observe(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total++
	if len(h.samples) < histogramWindow {
		h.samples = append(h.samples, d)
		return
	}
	h.samples[h.next] = d
	h.next = (h.next + 1) % histogramWindow
}

// Since records the time elapsed since start.
func (h *Histogram) Since(start time.Time) {
	h.Observe(time.Since(start))
}

// HistogramSnapshot holds calculated statistics for a histogram. Count is
// the total number of observations; percentiles cover the window.
type HistogramSnapshot struct {
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// Snapshot returns a point-in-time snapshot with percentiles calculated.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	sorted := slices.Clone(h.samples)
	total := h.total
	h.mu.Unlock()

	if len(sorted) == 0 {
		return HistogramSnapshot{}
	}
	slices.Sort(sorted)

	var sum time.Duration
	for _, v := range sorted {
		sum += v
	}

	return HistogramSnapshot{
		Count: total,
		Mean:  sum / time.Duration(len(sorted)),
		P50:   percentile(sorted, 0.50),
		P95:   percentile(sorted, 0.95),
		P99:   percentile(sorted, 0.99),
		Max:   sorted[len(sorted)-1],
	}
}

// percentile interpolates the p-th percentile of sorted values.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

// HistogramVec is a collection of histograms keyed by a label.
type HistogramVec struct {
	mu         sync.RWMutex
	histograms map[string]*Histogram
}

// NewHistogramVec creates a new histogram vector.
func NewHistogramVec() *HistogramVec {
	return &HistogramVec{histograms: make(map[string]*Histogram)}
}

// WithLabel returns the histogram for label, creating it on first use.
func (hv *HistogramVec) WithLabel(label string) *Histogram {
	hv.mu.RLock()
	h, ok := hv.histograms[label]
	hv.mu.RUnlock()
	if ok {
		return h
	}

	hv.mu.Lock()
	defer hv.mu.Unlock()
	if h, ok := hv.histograms[label]; ok {
		return h
	}
	h = NewHistogram()
	hv.histograms[label] = h
	return h
}

// Snapshot returns snapshots of all histograms.
func (hv *HistogramVec) Snapshot() map[string]HistogramSnapshot {
	hv.mu.RLock()
	defer hv.mu.RUnlock()

	out := make(map[string]HistogramSnapshot, len(hv.histograms))
	for label, h := range hv.histograms {
		out[label] = h.Snapshot()
	}
	return out
}

// CounterVec is a set of monotonically increasing counters keyed by label.
type CounterVec struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
}

// NewCounterVec creates a new counter vector.
func NewCounterVec() *CounterVec {
	return &CounterVec{counters: make(map[string]*atomic.Int64)}
}

// Inc increments the counter for label by 1.
func (cv *CounterVec) Inc(label string) {
	cv.counter(label).Add(1)
}

// Get returns the current value for label.
func (cv *CounterVec) Get(label string) int64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	if c, ok := cv.counters[label]; ok {
		return c.Load()
	}
	return 0
}

func (cv *CounterVec) counter(label string) *atomic.Int64 {
	cv.mu.RLock()
	c, ok := cv.counters[label]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.counters[label]; ok {
		return c
	}
	c = new(atomic.Int64)
	cv.counters[label] = c
	return c
}

// Snapshot returns the current values of all counters.
func (cv *CounterVec) Snapshot() map[string]int64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make(map[string]int64, len(cv.counters))
	for label, c := range cv.counters {
		out[label] = c.Load()
	}
	return out
}

// Labels returns the counter labels in sorted order.
func (cv *CounterVec) Labels() []string {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	labels := make([]string, 0, len(cv.counters))
	for label := range cv.counters {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Gauge is an integer value that can go up and down.
type Gauge struct {
	value atomic.Int64
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.value.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.value.Add(-1) }

// Get returns the current value.
func (g *Gauge) Get() int64 { return g.value.Load() }
