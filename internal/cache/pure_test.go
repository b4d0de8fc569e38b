package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	if hashIP("192.168.1.100") != hashIP("192.168.1.100") {
		t.Error("same IP should produce the same hash")
	}

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h1, h2 := hashIP(tt.ip1), hashIP(tt.ip2)
			if h1 == h2 {
				t.Errorf("%q and %q both hash to %s", tt.ip1, tt.ip2, h1)
			}
			if len(h1) != 16 {
				t.Errorf("hash length = %d, want 16", len(h1))
			}
		})
	}
}

func TestBucketKeys(t *testing.T) {
	t.Parallel()

	if got := apiBucketKey("01HKEY"); got != "ledger:ratelimit:apikey:01HKEY" {
		t.Errorf("apiBucketKey = %q", got)
	}

	k := ipBucketKey("register", "10.0.0.1")
	if !strings.HasPrefix(k, "ledger:ratelimit:ip:register:") {
		t.Errorf("ipBucketKey = %q", k)
	}
	if strings.Contains(k, "10.0.0.1") {
		t.Error("raw IP should not appear in the key")
	}
	if k == ipBucketKey("api", "10.0.0.1") {
		t.Error("groups should not share buckets")
	}
}

func TestSummaryKey(t *testing.T) {
	t.Parallel()

	if got := summaryKey("01HUSER", "2026-10", 7); got != "ledger:finance:summary:01HUSER:2026-10:7" {
		t.Errorf("summaryKey = %q", got)
	}
	if got := summaryGenerationKey("01HUSER"); got != "ledger:finance:gen:01HUSER" {
		t.Errorf("summaryGenerationKey = %q", got)
	}
}

func TestAuthKeys(t *testing.T) {
	t.Parallel()

	if got := authContextKey("abc"); got != "ledger:auth:ctx:abc" {
		t.Errorf("authContextKey = %q", got)
	}
	if got := authIndexKey("01HKEY"); got != "ledger:auth:key:01HKEY" {
		t.Errorf("authIndexKey = %q", got)
	}
}

func TestRefillInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want time.Duration
	}{
		{1, time.Second},
		{10, 100 * time.Millisecond},
		{0, time.Minute},
	}
	for _, tt := range tests {
		if got := refillInterval(tt.rate); got != tt.want {
			t.Errorf("refillInterval(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestUnlimited(t *testing.T) {
	t.Parallel()

	r := unlimited(5)
	if !r.Allowed || r.Remaining != 5 {
		t.Errorf("unlimited(5) = %+v", r)
	}
}

func TestTunePool(t *testing.T) {
	t.Parallel()

	opt, err := redis.ParseURL("redis://localhost:6379/0?pool_size=25")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	tunePool(opt)

	if opt.PoolSize != 25 {
		t.Errorf("PoolSize = %d, want the URL's 25", opt.PoolSize)
	}
	if opt.MinIdleConns != 2 || opt.PoolTimeout != 4*time.Second {
		t.Errorf("defaults not applied: min idle %d, pool timeout %s", opt.MinIdleConns, opt.PoolTimeout)
	}
}
