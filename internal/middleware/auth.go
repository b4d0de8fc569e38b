package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// DefaultMinAuthDuration pads every authentication attempt so failures and
// successes take the same time.
const DefaultMinAuthDuration = 200 * time.Millisecond

// KeyLookup finds stored API keys.
type KeyLookup interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuthCache caches resolved identities by key digest.
type AuthCache interface {
	GetAuthContext(ctx context.Context, digest string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, digest string, auth *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Keys   KeyLookup
	// Cache is optional.
	Cache AuthCache
	// MinDuration is the floor on time spent per attempt. Zero disables it.
	MinDuration time.Duration
}

// Auth resolves the caller's API key into a model.AuthContext and stores
// it on the request context. Every failure is reported as the same 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			pad := func() {
				if elapsed := time.Since(start); elapsed < cfg.MinDuration {
					time.Sleep(cfg.MinDuration - elapsed)
				}
			}

			authCtx, cacheHit, reason := resolve(r, cfg)
			pad()

			if authCtx == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("key_id", authCtx.KeyID),
				slog.String("user_id", authCtx.UserID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.WithCaller(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve returns the identity behind the request's key, or a failure reason.
func resolve(r *http.Request, cfg AuthConfig) (*model.AuthContext, bool, string) {
	ctx := r.Context()

	key := extractAPIKey(r)
	if key == "" {
		return nil, false, "missing_key"
	}

	parsed, err := auth.Parse(key)
	if err != nil {
		return nil, false, "invalid_format"
	}

	digest := auth.CacheDigest(key)
	if cfg.Cache != nil {
		if cached, err := cfg.Cache.GetAuthContext(ctx, digest); err == nil && cached != nil {
			return cached, true, ""
		}
	}

	candidates, err := cfg.Keys.GetAPIKeysByPrefix(ctx, parsed.Prefix)
	if err != nil {
		cfg.Logger.Error("key lookup failed during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(ctx)),
		)
		return nil, false, "lookup_error"
	}

	// Prefixes may collide, so every candidate is checked.
	var matched *model.APIKey
	for _, k := range candidates {
		if ok, err := auth.VerifyKey(key, k.KeyHash); err == nil && ok {
			matched = k
			break
		}
	}
	if matched == nil {
		return nil, false, "invalid_key"
	}

	authCtx := model.NewAuthContext(matched)

	if cfg.Cache != nil {
		if err := cfg.Cache.SetAuthContext(ctx, digest, authCtx); err != nil {
			cfg.Logger.Warn("failed to cache auth context", slog.String("error", err.Error()))
		}
	}

	// The request context ends with the response; the stamp must outlive it.
	go func(id string) {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = cfg.Keys.UpdateAPIKeyLastUsed(bg, id)
	}(matched.ID)

	return authCtx, false, ""
}

// extractAPIKey reads "Authorization: Bearer <key>" or "X-API-Key: <key>".
func extractAPIKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
