// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ledger write metrics
	IncUserRegistered()
	IncWalletCreated()
	IncTransactionCreated(txType string) // txType: "income" or "expense"
	IncBudgetCreated()
	IncDebtCreated()

	// Summary metrics
	IncSummaryCacheHit()
	IncSummaryCacheMiss()
	ObserveSummaryDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
