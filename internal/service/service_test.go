package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/finance"
	"github.com/BigazyGalym/Diplom/internal/metrics"
	"github.com/BigazyGalym/Diplom/internal/repository/memstore"
)

var today = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSummaryCache is a map-backed SummaryCache.
type fakeSummaryCache struct {
	mu      sync.Mutex
	entries map[string]*finance.Summary
	gens    map[string]int64
	bumps   int
	failGet bool
	failGen bool
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{
		entries: make(map[string]*finance.Summary),
		gens:    make(map[string]int64),
	}
}

func summaryEntry(userID, period string, gen int64) string {
	return fmt.Sprintf("%s/%s/%d", userID, period, gen)
}

func (c *fakeSummaryCache) SummaryGeneration(ctx context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGen {
		return 0, errors.New("cache down")
	}
	return c.gens[userID], nil
}

func (c *fakeSummaryCache) BumpSummaryGeneration(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	c.bumps++
	return nil
}

func (c *fakeSummaryCache) GetSummary(ctx context.Context, userID, period string, gen int64) (*finance.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("cache down")
	}
	return c.entries[summaryEntry(userID, period, gen)], nil
}

func (c *fakeSummaryCache) SetSummary(ctx context.Context, userID, period string, gen int64, s *finance.Summary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summaryEntry(userID, period, gen)] = s
	return nil
}

type testEnv struct {
	store   *memstore.Store
	cache   *fakeSummaryCache
	metrics *metrics.InMemoryRecorder
	users   *UserService
	ledger  *LedgerService
	finance *FinanceService
	keys    *APIKeyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	cache := newFakeSummaryCache()
	rec := metrics.NewInMemory()
	log := discardLogger()
	return &testEnv{
		store:   store,
		cache:   cache,
		metrics: rec,
		users:   NewUserService(store, fixedClock, "test", rec, log),
		ledger:  NewLedgerService(store, cache, fixedClock, rec, log),
		finance: NewFinanceService(store, cache, time.Minute, fixedClock, rec, log),
		keys:    NewAPIKeyService(store, nil, fixedClock, "test", log),
	}
}

// register creates a user and returns its id with the Cash and Card wallet ids.
func (e *testEnv) register(t *testing.T, email string) (string, string, string) {
	t.Helper()
	out, err := e.users.Register(context.Background(), RegisterInput{Email: email})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return out.User.ID, out.Wallets[0].ID, out.Wallets[1].ID
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func assertMoney(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got.StringFixed(2), want)
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want a validation error", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not *ValidationError", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Errorf("expected field %q in %v", field, verr.Fields)
	}
}
