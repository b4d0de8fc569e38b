package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/metrics"
	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/repository"
)

// dueDateLayout is the wire format of Debt.DueDate.
const dueDateLayout = "2006-01-02"

// LedgerService handles wallet, transaction, budget and debt writes.
type LedgerService struct {
	store   LedgerStore
	cache   SummaryCache
	clock   Clock
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewLedgerService creates a new LedgerService. cache may be nil.
func NewLedgerService(store LedgerStore, cache SummaryCache, clock Clock, recorder metrics.Recorder, logger *slog.Logger) *LedgerService {
	if clock == nil {
		clock = SystemClock
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:   store,
		cache:   cache,
		clock:   clock,
		metrics: recorder,
		logger:  logger,
	}
}

// CreateWalletInput defines input for creating a wallet.
type CreateWalletInput struct {
	Name    string
	Balance *decimal.Decimal // defaults to 0
}

// CreateWallet creates a wallet owned by userID.
func (s *LedgerService) CreateWallet(ctx context.Context, userID string, input CreateWalletInput) (*model.Wallet, error) {
	name := clean(input.Name)
	balance := decimal.Zero
	if input.Balance != nil {
		balance = *input.Balance
	}

	var v validator
	v.checkText("name", name, maxWalletNameLength)
	v.checkMoney("balance", balance)
	if err := v.err(); err != nil {
		return nil, err
	}

	wallet := &model.Wallet{
		ID:        newID(),
		UserID:    userID,
		Name:      name,
		Balance:   balance,
		CreatedAt: s.clock(),
	}

	if err := s.store.CreateWallet(ctx, wallet); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.metrics.IncWalletCreated()
	s.invalidateSummary(ctx, userID)

	return wallet, nil
}

// CreateTransactionInput defines input for creating a transaction.
// The date is never taken from the caller.
type CreateTransactionInput struct {
	WalletID string
	Type     string
	Category string // defaults to "Other"
	Amount   *decimal.Decimal
}

// CreateTransaction records a transaction for userID and applies it to the
// wallet's balance in the same atomic unit. A wallet owned by someone else
// is reported as ErrWalletNotFound and leaves every balance untouched.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*model.Transaction, *model.Wallet, error) {
	walletID := clean(input.WalletID)
	txType := model.TransactionType(clean(input.Type))
	category := clean(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	var v validator
	v.check(walletID != "", "wallet", "this field is required")
	v.check(txType.IsValid(), "type", `"`+string(txType)+`" is not a valid choice`)
	v.checkText("category", category, maxCategoryLength)
	v.checkPositiveMoney("amount", input.Amount)
	if err := v.err(); err != nil {
		return nil, nil, err
	}

	now := s.clock()
	tx := &model.Transaction{
		ID:        newID(),
		UserID:    userID,
		WalletID:  walletID,
		Type:      txType,
		Category:  category,
		Amount:    *input.Amount,
		Date:      model.DateOnly(now),
		CreatedAt: now,
	}

	wallet, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, nil, ErrWalletNotFound
		}
		if errors.Is(err, repository.ErrBalanceOutOfRange) {
			return nil, nil, &ValidationError{Fields: map[string]string{
				"amount": "ensure that the wallet balance stays within 12 digits in total",
			}}
		}
		return nil, nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.IncTransactionCreated(string(tx.Type))
	s.invalidateSummary(ctx, userID)

	return tx, wallet, nil
}

// CreateBudgetInput defines input for creating a budget.
type CreateBudgetInput struct {
	Category string
	Limit    *decimal.Decimal // defaults to 0
}

// CreateBudget creates a budget. Budgets sharing a category are kept apart.
func (s *LedgerService) CreateBudget(ctx context.Context, userID string, input CreateBudgetInput) (*model.Budget, error) {
	category := clean(input.Category)
	limit := decimal.Zero
	if input.Limit != nil {
		limit = *input.Limit
	}

	var v validator
	v.checkText("category", category, maxCategoryLength)
	v.check(!limit.IsNegative(), "limit", "ensure this value is greater than or equal to 0")
	v.checkMoney("limit", limit)
	if err := v.err(); err != nil {
		return nil, err
	}

	budget := &model.Budget{
		ID:        newID(),
		UserID:    userID,
		Category:  category,
		Limit:     limit,
		CreatedAt: s.clock(),
	}

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.metrics.IncBudgetCreated()
	s.invalidateSummary(ctx, userID)

	return budget, nil
}

// CreateDebtInput defines input for creating a debt.
type CreateDebtInput struct {
	Type         string
	Counterparty string
	Amount       *decimal.Decimal
	DueDate      string // YYYY-MM-DD
	Returned     bool
}

// CreateDebt creates a debt record.
func (s *LedgerService) CreateDebt(ctx context.Context, userID string, input CreateDebtInput) (*model.Debt, error) {
	debtType := model.DebtType(clean(input.Type))
	counterparty := clean(input.Counterparty)

	var v validator
	v.check(debtType.IsValid(), "type", `"`+string(debtType)+`" is not a valid choice`)
	v.checkText("counterparty", counterparty, maxCounterpartyLength)
	v.checkPositiveMoney("amount", input.Amount)

	dueDate, err := time.Parse(dueDateLayout, clean(input.DueDate))
	v.check(err == nil, "due_date", "date has wrong format, use YYYY-MM-DD")

	if err := v.err(); err != nil {
		return nil, err
	}

	debt := &model.Debt{
		ID:           newID(),
		UserID:       userID,
		Type:         debtType,
		Counterparty: counterparty,
		Amount:       *input.Amount,
		DueDate:      dueDate,
		Returned:     input.Returned,
		CreatedAt:    s.clock(),
	}

	if err := s.store.CreateDebt(ctx, debt); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}

	s.metrics.IncDebtCreated()
	s.invalidateSummary(ctx, userID)

	return debt, nil
}

// ListWallets returns the user's wallets.
func (s *LedgerService) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	return s.store.ListWallets(ctx, userID)
}

// ListBudgets returns the user's budgets.
func (s *LedgerService) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

// ListDebts returns the user's debts.
func (s *LedgerService) ListDebts(ctx context.Context, userID string) ([]*model.Debt, error) {
	return s.store.ListDebts(ctx, userID)
}

// invalidateSummary moves the user to a new summary generation. It runs
// after the write commits. A failure only leaves a stale entry until its
// TTL runs out.
func (s *LedgerService) invalidateSummary(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.BumpSummaryGeneration(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate summary cache",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
