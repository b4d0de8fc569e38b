package service

import (
	"context"
	"errors"
	"testing"

	"github.com/BigazyGalym/Diplom/internal/model"
)

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) InvalidateKey(ctx context.Context, keyID string) error {
	r.keys = append(r.keys, keyID)
	return nil
}

func callerFor(userID string, scopes ...string) *model.AuthContext {
	return &model.AuthContext{UserID: userID, Scopes: scopes, RateLimitTier: model.TierFree}
}

func TestAPIKeyService_CreateDefaultsToRead(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	userID, _, _ := env.register(t, "k1@example.com")

	key, plaintext, err := env.keys.Create(context.Background(), callerFor(userID, model.ScopeRead, model.ScopeWrite), CreateAPIKeyInput{Name: "cli"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if plaintext == "" || key.KeyHash == plaintext {
		t.Error("plaintext must be returned and never stored")
	}
	if len(key.Scopes) != 1 || key.Scopes[0] != model.ScopeRead {
		t.Errorf("Scopes = %v, want [read]", key.Scopes)
	}
}

func TestAPIKeyService_CannotEscalate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	userID, _, _ := env.register(t, "k2@example.com")

	_, _, err := env.keys.Create(context.Background(), callerFor(userID, model.ScopeRead), CreateAPIKeyInput{
		Scopes: []string{model.ScopeAdmin},
	})
	assertFieldError(t, err, "scopes")

	_, _, err = env.keys.Create(context.Background(), callerFor(userID, model.ScopeAdmin), CreateAPIKeyInput{
		Scopes: []string{"superuser"},
	})
	assertFieldError(t, err, "scopes")
}

func TestAPIKeyService_Revoke(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	inv := &recordingInvalidator{}
	env.keys = NewAPIKeyService(env.store, inv, fixedClock, "test", discardLogger())
	ctx := context.Background()

	alice, _, _ := env.register(t, "ka@example.com")
	bob, _, _ := env.register(t, "kb@example.com")

	keys, err := env.keys.List(ctx, alice)
	if err != nil || len(keys) != 1 {
		t.Fatalf("List = %d keys, %v; want the registration key", len(keys), err)
	}
	keyID := keys[0].ID

	if err := env.keys.Revoke(ctx, bob, keyID); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Errorf("revoking a foreign key error = %v, want ErrAPIKeyNotFound", err)
	}
	if err := env.keys.Revoke(ctx, alice, keyID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := env.keys.Revoke(ctx, alice, keyID); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Errorf("second revoke error = %v, want ErrAPIKeyNotFound", err)
	}
	if len(inv.keys) != 1 || inv.keys[0] != keyID {
		t.Errorf("invalidated = %v, want [%s]", inv.keys, keyID)
	}
}
