package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/repository/memstore"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAuthCache struct {
	mu      sync.Mutex
	entries map[string]*model.AuthContext
	gets    int
}

func newFakeAuthCache() *fakeAuthCache {
	return &fakeAuthCache{entries: map[string]*model.AuthContext{}}
}

func (c *fakeAuthCache) GetAuthContext(ctx context.Context, digest string) (*model.AuthContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.entries[digest], nil
}

func (c *fakeAuthCache) SetAuthContext(ctx context.Context, digest string, a *model.AuthContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = a
	return nil
}

type failingLookup struct{}

func (failingLookup) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error) {
	return nil, errors.New("connection refused")
}

func (failingLookup) UpdateAPIKeyLastUsed(ctx context.Context, id string) error { return nil }

// seedKey stores a user with one key and returns the plaintext.
func seedKey(t *testing.T, store *memstore.Store, scopes []string) (string, *model.APIKey) {
	t.Helper()
	gen, err := auth.Issue(auth.EnvTest)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	user := &model.User{ID: "01JUSER" + gen.Prefix, Email: gen.Prefix + "@example.com", CreatedAt: time.Now()}
	key := &model.APIKey{
		ID:            "01JKEY" + gen.Prefix,
		UserID:        user.ID,
		KeyHash:       gen.Hash,
		KeyPrefix:     gen.Prefix,
		Scopes:        scopes,
		RateLimitTier: model.TierFree,
		CreatedAt:     time.Now(),
	}
	if err := store.CreateUserWithDefaults(context.Background(), user, nil, key); err != nil {
		t.Fatalf("CreateUserWithDefaults: %v", err)
	}
	return gen.Plaintext, key
}

func authEcho(cfg AuthConfig) http.Handler {
	return Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := auth.MustCaller(r.Context())
		_, _ = io.WriteString(w, a.UserID)
	}))
}

func TestAuth_Rejects(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	_, key := seedKey(t, store, model.DefaultUserScopes)
	handler := authEcho(AuthConfig{Logger: discard, Keys: store})

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"missing", "", ""},
		{"malformed", "Authorization", "Bearer not-a-key"},
		{"wrong scheme", "Authorization", "Basic fk_test_" + key.KeyPrefix + "_00000000000000000000000000000000"},
		{"unknown prefix", "X-API-Key", "fk_test_ffffff_00000000000000000000000000000000"},
		{"wrong secret", "X-API-Key", "fk_test_" + key.KeyPrefix + "_00000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != "UNAUTHORIZED" {
				t.Errorf("code = %q, want UNAUTHORIZED", body.Code)
			}
		})
	}
}

func TestAuth_AcceptsBothHeaders(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	plaintext, key := seedKey(t, store, model.DefaultUserScopes)
	handler := authEcho(AuthConfig{Logger: discard, Keys: store})

	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+plaintext) },
		func(r *http.Request) { r.Header.Set("X-API-Key", plaintext) },
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
		set(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Body.String(); got != key.UserID {
			t.Errorf("user = %q, want %q", got, key.UserID)
		}
	}
}

func TestAuth_RevokedKey(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	plaintext, key := seedKey(t, store, model.DefaultUserScopes)
	if err := store.RevokeAPIKey(context.Background(), key.ID); err != nil {
		t.Fatalf("RevokeAPIKey: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	req.Header.Set("X-API-Key", plaintext)
	rec := httptest.NewRecorder()
	authEcho(AuthConfig{Logger: discard, Keys: store}).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_UsesCache(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	plaintext, key := seedKey(t, store, model.DefaultUserScopes)
	cache := newFakeAuthCache()
	handler := authEcho(AuthConfig{Logger: discard, Keys: store, Cache: cache})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
		req.Header.Set("X-API-Key", plaintext)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	cached := cache.entries[auth.CacheDigest(plaintext)]
	if cached == nil || cached.KeyID != key.ID {
		t.Fatalf("cache entry = %+v, want key %s", cached, key.ID)
	}

	// A cached identity is trusted without touching the store.
	handler = authEcho(AuthConfig{Logger: discard, Keys: failingLookup{}, Cache: cache})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
	req.Header.Set("X-API-Key", plaintext)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("cached request: status = %d, want 200", rec.Code)
	}
}

func TestAuth_LookupFailure(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
	req.Header.Set("X-API-Key", "fk_test_abcdef_0123456789abcdef0123456789abcdef")
	rec := httptest.NewRecorder()
	authEcho(AuthConfig{Logger: discard, Keys: failingLookup{}}).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MinDuration(t *testing.T) {
	t.Parallel()

	const floor = 50 * time.Millisecond
	handler := authEcho(AuthConfig{Logger: discard, Keys: memstore.New(), MinDuration: floor})

	start := time.Now()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil))
	if elapsed := time.Since(start); elapsed < floor {
		t.Errorf("missing-key rejection took %v, want at least %v", elapsed, floor)
	}
}

func TestAuth_StampsLastUsed(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	plaintext, key := seedKey(t, store, model.DefaultUserScopes)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
	req.Header.Set("X-API-Key", plaintext)
	authEcho(AuthConfig{Logger: discard, Keys: store}).ServeHTTP(httptest.NewRecorder(), req)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		k, err := store.GetAPIKeyByID(context.Background(), key.ID)
		if err != nil {
			t.Fatalf("GetAPIKeyByID: %v", err)
		}
		if k.LastUsedAt != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("last_used_at was never set")
}
