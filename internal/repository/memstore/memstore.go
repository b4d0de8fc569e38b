// Package memstore is an in-memory ledger store with the same semantics as
// the PostgreSQL repository. It backs tests and database-less runs.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/repository"
)

// Store keeps every record in maps guarded by one mutex. All writes,
// including a transaction together with its balance change, happen under
// the write lock, so they are atomic and serialized.
type Store struct {
	mu sync.RWMutex

	users        map[string]*model.User
	emails       map[string]string // email -> user id
	wallets      map[string]*model.Wallet
	transactions map[string]*model.Transaction
	budgets      map[string]*model.Budget
	debts        map[string]*model.Debt
	apiKeys      map[string]*model.APIKey
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		emails:       make(map[string]string),
		wallets:      make(map[string]*model.Wallet),
		transactions: make(map[string]*model.Transaction),
		budgets:      make(map[string]*model.Budget),
		debts:        make(map[string]*model.Debt),
		apiKeys:      make(map[string]*model.APIKey),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// User operations

func (s *Store) CreateUserWithDefaults(ctx context.Context, user *model.User, wallets []*model.Wallet, key *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrEmailExists
	}

	u := *user
	s.users[u.ID] = &u
	s.emails[u.Email] = u.ID
	for _, w := range wallets {
		cp := *w
		s.wallets[cp.ID] = &cp
	}
	if key != nil {
		cp := copyKey(key)
		s.apiKeys[cp.ID] = cp
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Phone = user.Phone
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

// Ledger operations

func (s *Store) CreateWallet(ctx context.Context, wallet *model.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[wallet.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *wallet
	s.wallets[cp.ID] = &cp
	return nil
}

func (s *Store) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Wallet{}
	for _, w := range s.wallets {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreated(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *model.Transaction) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[tx.WalletID]
	if !ok || w.UserID != tx.UserID {
		return nil, repository.ErrWalletNotFound
	}

	balance := w.Balance.Add(tx.SignedAmount())
	if model.ExceedsMaxMoney(balance) {
		return nil, repository.ErrBalanceOutOfRange
	}
	w.Balance = balance
	cp := *tx
	s.transactions[cp.ID] = &cp

	out := *w
	return &out, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Transaction{}
	for _, t := range s.transactions {
		if t.UserID != userID || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateBudget(ctx context.Context, budget *model.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[budget.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *budget
	s.budgets[cp.ID] = &cp
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Budget{}
	for _, b := range s.budgets {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreated(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) CreateDebt(ctx context.Context, debt *model.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[debt.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *debt
	s.debts[cp.ID] = &cp
	return nil
}

func (s *Store) ListDebts(ctx context.Context, userID string) ([]*model.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Debt{}
	for _, d := range s.debts {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// API key operations

func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := copyKey(key)
	s.apiKeys[cp.ID] = cp
	return nil
}

func (s *Store) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.apiKeys[id]
	if !ok {
		return nil, repository.ErrAPIKeyNotFound
	}
	return copyKey(k), nil
}

func (s *Store) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.APIKey{}
	for _, k := range s.apiKeys {
		if k.KeyPrefix == prefix && !k.IsRevoked() {
			out = append(out, copyKey(k))
		}
	}
	return out, nil
}

func (s *Store) ListAPIKeysByUserID(ctx context.Context, userID string) ([]*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.APIKey{}
	for _, k := range s.apiKeys {
		if k.UserID == userID {
			out = append(out, copyKey(k))
		}
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool {
		return byCreated(out[j].CreatedAt, out[j].ID, out[i].CreatedAt, out[i].ID)
	})
	return out, nil
}

func (s *Store) RevokeAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.apiKeys[id]
	if !ok || k.IsRevoked() {
		return repository.ErrAPIKeyNotFound
	}
	now := time.Now()
	k.RevokedAt = &now
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.apiKeys[id]; ok {
		now := time.Now()
		k.LastUsedAt = &now
	}
	return nil
}

func copyKey(k *model.APIKey) *model.APIKey {
	cp := *k
	cp.Scopes = slices.Clone(k.Scopes)
	return &cp
}

func byCreated(at time.Time, id string, bt time.Time, bid string) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return strings.Compare(id, bid) < 0
}
