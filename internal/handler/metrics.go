package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/BigazyGalym/Diplom/internal/metrics"
)

// MetricsHandler serves the in-memory counters as Prometheus text.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

type sample struct {
	labels string
	value  string
}

type family struct {
	name, kind, help string
	samples          []sample
}

func counter(v uint64) string { return strconv.FormatUint(v, 10) }

func families(s metrics.Snapshot) []family {
	return []family{
		{"ledger_users_registered_total", "counter", "Users registered.",
			[]sample{{"", counter(s.UsersRegistered)}}},
		{"ledger_wallets_created_total", "counter", "Wallets created, including onboarding wallets.",
			[]sample{{"", counter(s.WalletsCreated)}}},
		{"ledger_transactions_created_total", "counter", "Transactions recorded by type.",
			[]sample{
				{`{type="income"}`, counter(s.IncomeTransactions)},
				{`{type="expense"}`, counter(s.ExpenseTransactions)},
			}},
		{"ledger_budgets_created_total", "counter", "Budgets created.",
			[]sample{{"", counter(s.BudgetsCreated)}}},
		{"ledger_debts_created_total", "counter", "Debts recorded.",
			[]sample{{"", counter(s.DebtsCreated)}}},
		{"finance_summary_cache_hits_total", "counter", "Monthly summaries served from Redis.",
			[]sample{{"", counter(s.SummaryCacheHits)}}},
		{"finance_summary_cache_misses_total", "counter", "Monthly summaries computed from the store.",
			[]sample{{"", counter(s.SummaryCacheMisses)}}},
		{"finance_summary_duration_seconds", "summary", "Time spent computing uncached summaries.",
			[]sample{
				{"_count", counter(s.SummaryDurationCount)},
				{"_sum", fmt.Sprintf("%.6f", float64(s.SummaryDurationTotalNs)/1e9)},
			}},
	}
}

// Metrics writes the Prometheus text exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	for _, f := range families(h.snapshotter.Snapshot()) {
		writeFamily(w, f)
	}
}

func writeFamily(w io.Writer, f family) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
	for _, s := range f.samples {
		// Summary parts are suffixes; everything else is a label set.
		_, _ = fmt.Fprintf(w, "%s%s %s\n", f.name, s.labels, s.value)
	}
}
