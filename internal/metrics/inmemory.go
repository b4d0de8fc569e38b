package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered        uint64
	WalletsCreated         uint64
	IncomeTransactions     uint64
	ExpenseTransactions    uint64
	BudgetsCreated         uint64
	DebtsCreated           uint64
	SummaryCacheHits       uint64
	SummaryCacheMisses     uint64
	SummaryDurationCount   uint64
	SummaryDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered        uint64
	walletsCreated         uint64
	incomeTransactions     uint64
	expenseTransactions    uint64
	budgetsCreated         uint64
	debtsCreated           uint64
	summaryCacheHits       uint64
	summaryCacheMisses     uint64
	summaryDurationCount   uint64
	summaryDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		WalletsCreated:         atomic.LoadUint64(&m.walletsCreated),
		IncomeTransactions:     atomic.LoadUint64(&m.incomeTransactions),
		ExpenseTransactions:    atomic.LoadUint64(&m.expenseTransactions),
		BudgetsCreated:         atomic.LoadUint64(&m.budgetsCreated),
		DebtsCreated:           atomic.LoadUint64(&m.debtsCreated),
		SummaryCacheHits:       atomic.LoadUint64(&m.summaryCacheHits),
		SummaryCacheMisses:     atomic.LoadUint64(&m.summaryCacheMisses),
		SummaryDurationCount:   atomic.LoadUint64(&m.summaryDurationCount),
		SummaryDurationTotalNs: atomic.LoadInt64(&m.summaryDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncWalletCreated increments the wallet counter.
func (m *InMemoryRecorder) IncWalletCreated() {
	atomic.AddUint64(&m.walletsCreated, 1)
}

// IncTransactionCreated increments the counter for the given transaction type.
func (m *InMemoryRecorder) IncTransactionCreated(txType string) {
	if txType == "income" {
		atomic.AddUint64(&m.incomeTransactions, 1)
		return
	}
	atomic.AddUint64(&m.expenseTransactions, 1)
}

// IncBudgetCreated increments the budget counter.
func (m *InMemoryRecorder) IncBudgetCreated() {
	atomic.AddUint64(&m.budgetsCreated, 1)
}

// IncDebtCreated increments the debt counter.
func (m *InMemoryRecorder) IncDebtCreated() {
	atomic.AddUint64(&m.debtsCreated, 1)
}

// IncSummaryCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncSummaryCacheHit() {
	atomic.AddUint64(&m.summaryCacheHits, 1)
}

// IncSummaryCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncSummaryCacheMiss() {
	atomic.AddUint64(&m.summaryCacheMisses, 1)
}

// ObserveSummaryDuration records how long a summary took to build.
func (m *InMemoryRecorder) ObserveSummaryDuration(duration time.Duration) {
	atomic.AddUint64(&m.summaryDurationCount, 1)
	atomic.AddInt64(&m.summaryDurationTotalNs, duration.Nanoseconds())
}
