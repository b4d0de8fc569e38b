//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/testutil"
)

// newTestEnv connects to DATABASE_URL, serializes against other DB tests
// and resets the schema.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func mustCreateUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func mustCreateWallet(t *testing.T, ctx context.Context, repo *Repository, userID, balance string) *model.Wallet {
	t.Helper()
	w := testutil.NewTestWallet(t, userID, "Cash", balance)
	if err := repo.CreateWallet(ctx, w); err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	return w
}
