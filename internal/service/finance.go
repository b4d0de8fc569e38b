package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BigazyGalym/Diplom/internal/finance"
	"github.com/BigazyGalym/Diplom/internal/metrics"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// FinanceService builds the monthly summary of a user.
type FinanceService struct {
	store    LedgerStore
	cache    SummaryCache
	cacheTTL time.Duration
	clock    Clock
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewFinanceService creates a new FinanceService.
// A nil cache or a non-positive ttl disables summary caching.
func NewFinanceService(store LedgerStore, cache SummaryCache, ttl time.Duration, clock Clock, recorder metrics.Recorder, logger *slog.Logger) *FinanceService {
	if clock == nil {
		clock = SystemClock
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		cache = nil
	}
	return &FinanceService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		clock:    clock,
		metrics:  recorder,
		logger:   logger,
	}
}

// GetSummary returns the summary of the current calendar month.
// Cache errors degrade to a recomputation.
func (s *FinanceService) GetSummary(ctx context.Context, userID string) (*finance.Summary, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSummaryDuration(time.Since(start))
	}()

	today := s.clock()
	period := periodOf(today)

	// The generation is read before the store so that a write landing
	// during the load bumps past it.
	cacheable := s.cache != nil
	var gen int64
	if cacheable {
		var err error
		gen, err = s.cache.SummaryGeneration(ctx, userID)
		if err != nil {
			s.logger.Warn("summary cache generation read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			cacheable = false
		}
	}

	if cacheable {
		cached, err := s.cache.GetSummary(ctx, userID, period, gen)
		if err != nil {
			s.logger.Warn("summary cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		if cached != nil {
			s.metrics.IncSummaryCacheHit()
			return cached, nil
		}
		s.metrics.IncSummaryCacheMiss()
	}

	in, err := s.load(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	summary := finance.Summarize(today, in)

	if cacheable {
		if err := s.cache.SetSummary(ctx, userID, period, gen, summary, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return summary, nil
}

// load reads the four collections a summary needs in parallel.
func (s *FinanceService) load(ctx context.Context, userID string, today time.Time) (finance.Input, error) {
	var in finance.Input
	from, to := model.MonthBounds(today)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wallets, err := s.store.ListWallets(gctx, userID)
		if err != nil {
			return fmt.Errorf("list wallets: %w", err)
		}
		in.Wallets = wallets
		return nil
	})
	g.Go(func() error {
		txs, err := s.store.ListTransactions(gctx, userID, from, to)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		in.Transactions = txs
		return nil
	})
	g.Go(func() error {
		budgets, err := s.store.ListBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		in.Budgets = budgets
		return nil
	})
	g.Go(func() error {
		debts, err := s.store.ListDebts(gctx, userID)
		if err != nil {
			return fmt.Errorf("list debts: %w", err)
		}
		in.Debts = debts
		return nil
	})

	if err := g.Wait(); err != nil {
		return finance.Input{}, fmt.Errorf("failed to load summary input: %w", err)
	}
	return in, nil
}
