package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncWalletCreated is a no-op.
func (n *NoopRecorder) IncWalletCreated() {}

// IncTransactionCreated is a no-op.
func (n *NoopRecorder) IncTransactionCreated(txType string) {}

// IncBudgetCreated is a no-op.
func (n *NoopRecorder) IncBudgetCreated() {}

// IncDebtCreated is a no-op.
func (n *NoopRecorder) IncDebtCreated() {}

// IncSummaryCacheHit is a no-op.
func (n *NoopRecorder) IncSummaryCacheHit() {}

// IncSummaryCacheMiss is a no-op.
func (n *NoopRecorder) IncSummaryCacheMiss() {}

// ObserveSummaryDuration is a no-op.
func (n *NoopRecorder) ObserveSummaryDuration(duration time.Duration) {}
