package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// Metrics holds the in-process performance metrics of the wizard service.
type Metrics struct {
	// Database metrics
	dbTransactionBegin   *Histogram
	dbTransactionCommit  *Histogram
	dbActiveTransactions *Gauge

	// Wizard metrics
	advanceDuration *HistogramVec // by action
	transitions     *CounterVec   // by outcome
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics() *Metrics {
	return &Metrics{
		dbTransactionBegin:   NewHistogram(),
		dbTransactionCommit:  NewHistogram(),
		dbActiveTransactions: &Gauge{},
		advanceDuration:      NewHistogramVec(),
		transitions:          NewCounterVec(),
	}
}

func (m *Metrics) DBTransactionBegin() *Histogram  { return m.dbTransactionBegin }
func (m *Metrics) DBTransactionCommit() *Histogram { return m.dbTransactionCommit }
func (m *Metrics) DBActiveTransactions() *Gauge    { return m.dbActiveTransactions }
func (m *Metrics) AdvanceDuration() *HistogramVec  { return m.advanceDuration }
func (m *Metrics) Transitions() *CounterVec        { return m.transitions }

// MetricsSnapshot holds a point-in-time snapshot of all metrics.
type MetricsSnapshot struct {
	DBTransactionBegin   HistogramSnapshot            `json:"db_transaction_begin"`
	DBTransactionCommit  HistogramSnapshot            `json:"db_transaction_commit"`
	DBActiveTransactions int64                        `json:"db_active_transactions"`
	AdvanceDuration      map[string]HistogramSnapshot `json:"advance_duration"`
	Transitions          map[string]int64             `json:"transitions"`
}

// Snapshot returns a snapshot of all metrics for reporting.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		DBTransactionBegin:   m.dbTransactionBegin.Snapshot(),
		DBTransactionCommit:  m.dbTransactionCommit.Snapshot(),
		DBActiveTransactions: m.dbActiveTransactions.Get(),
		AdvanceDuration:      m.advanceDuration.Snapshot(),
		Transitions:          m.transitions.Snapshot(),
	}
}

// ServeHTTP implements http.Handler for metrics exposition. JSON is served
// when requested with ?format=json or an application/json Accept header.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := m.Snapshot()

	if r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.Encode(snapshot)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	snapshot.WriteText(w)
}

// WriteText writes a human-readable report.
func (s *MetricsSnapshot) WriteText(w io.Writer) {
	fmt.Fprintf(w, "# Course Wizard Metrics\n\n")

	fmt.Fprintf(w, "## Database\n\n")
	writeHistogram(w, "Transaction Begin", s.DBTransactionBegin)
	writeHistogram(w, "Transaction Commit", s.DBTransactionCommit)
	fmt.Fprintf(w, "Active Transactions: %d\n\n", s.DBActiveTransactions)

	fmt.Fprintf(w, "## Wizard\n\n")
	for _, label := range sortedKeys(s.AdvanceDuration) {
		writeHistogram(w, "Advance "+label, s.AdvanceDuration[label])
	}
	if len(s.Transitions) > 0 {
		fmt.Fprintf(w, "\nTransitions by outcome:\n")
		for _, label := range sortedKeys(s.Transitions) {
			fmt.Fprintf(w, "  %s: %d\n", label, s.Transitions[label])
		}
	}
}

func writeHistogram(w io.Writer, name string, h HistogramSnapshot) {
	if h.Count == 0 {
		fmt.Fprintf(w, "%s: no data\n", name)
		return
	}
	fmt.Fprintf(w, "%s (n=%d): mean=%v p50=%v p95=%v p99=%v max=%v\n",
		name, h.Count, h.Mean, h.P50, h.P95, h.P99, h.Max)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
