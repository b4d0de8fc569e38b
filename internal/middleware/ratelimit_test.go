package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/cache"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// countingLimiter allows the first `allow` requests per bucket.
type countingLimiter struct {
	mu      sync.Mutex
	allow   int64
	seen    map[string]int64
	err     error
	buckets []string
}

func newCountingLimiter(allow int64) *countingLimiter {
	return &countingLimiter{allow: allow, seen: map[string]int64{}}
}

func (l *countingLimiter) take(bucket string) (*cache.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = append(l.buckets, bucket)
	if l.err != nil {
		return nil, l.err
	}
	l.seen[bucket]++
	remaining := l.allow - l.seen[bucket]
	if remaining < 0 {
		return &cache.RateLimitResult{Allowed: false, ResetAt: time.Now().Add(time.Second), RetryAfter: 1500 * time.Millisecond}, nil
	}
	return &cache.RateLimitResult{Allowed: true, Remaining: remaining, ResetAt: time.Now().Add(time.Second)}, nil
}

func (l *countingLimiter) CheckAPIRateLimit(ctx context.Context, keyID string, ratePerMinute, burst int) (*cache.RateLimitResult, error) {
	return l.take("api:" + keyID)
}

func (l *countingLimiter) CheckIPRateLimit(ctx context.Context, group, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error) {
	return l.take(group + ":" + ip)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func withAuth(r *http.Request, tier string) *http.Request {
	return r.WithContext(auth.WithCaller(r.Context(), &model.AuthContext{
		KeyID:         "01JKEY",
		UserID:        "01JUSER",
		Scopes:        model.DefaultUserScopes,
		RateLimitTier: tier,
	}))
}

func TestRateLimitAPI(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(2)
	handler := RateLimitAPI(RateLimitConfig{Logger: discard, Limiter: limiter, Enabled: true})(okHandler())

	var codes []int
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil), model.TierFree))
		codes = append(codes, rec.Code)
		last = rec
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}
	if got := last.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if got := last.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %q, want 60", got)
	}
}

func TestRateLimitAPI_Bypass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
		tier    string
		authed  bool
	}{
		{"disabled", false, model.TierFree, true},
		{"unlimited tier", true, model.TierUnlimited, true},
		{"unauthenticated", true, model.TierFree, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			limiter := newCountingLimiter(0)
			handler := RateLimitAPI(RateLimitConfig{Logger: discard, Limiter: limiter, Enabled: tt.enabled})(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
			if tt.authed {
				req = withAuth(req, tt.tier)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if len(limiter.buckets) != 0 {
				t.Errorf("limiter consulted %d times, want 0", len(limiter.buckets))
			}
		})
	}
}

func TestRateLimitAPI_FailsOpen(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(0)
	limiter.err = errors.New("redis down")
	handler := RateLimitAPI(RateLimitConfig{Logger: discard, Limiter: limiter, Enabled: true})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil), model.TierFree))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(1)
	handler := RateLimitIP(RateLimitConfig{
		Logger: discard, Limiter: limiter, Enabled: true,
		IPGroup: "register", IPPerMinute: 5, IPBurst: 1,
	})(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("203.0.113.7:51000"); got != http.StatusOK {
		t.Fatalf("first: status = %d", got)
	}
	// Same host on another port shares the bucket.
	if got := send("203.0.113.7:51001"); got != http.StatusTooManyRequests {
		t.Fatalf("second: status = %d, want 429", got)
	}
	if got := send("198.51.100.2:40000"); got != http.StatusOK {
		t.Fatalf("other IP: status = %d", got)
	}
	if limiter.buckets[0] != "register:203.0.113.7" {
		t.Errorf("bucket = %q, want register:203.0.113.7", limiter.buckets[0])
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"192.0.2.1:1234":    "192.0.2.1",
		"[2001:db8::1]:443": "2001:db8::1",
		"192.0.2.9":         "192.0.2.9",
	}
	for addr, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		if got := clientIP(req); got != want {
			t.Errorf("clientIP(%q) = %q, want %q", addr, got, want)
		}
	}
}
