package model

import (
	"slices"
	"time"
)

// Scopes a key can hold. Admin implies the others.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// ValidScopes lists every grantable scope.
var ValidScopes = []string{ScopeRead, ScopeWrite, ScopeAdmin}

// DefaultUserScopes are granted to the key issued at registration.
var DefaultUserScopes = []string{ScopeRead, ScopeWrite}

func grants(held []string, want string) bool {
	return slices.Contains(held, ScopeAdmin) || slices.Contains(held, want)
}

// Rate limit tiers.
const (
	TierFree      = "free"
	TierPro       = "pro"
	TierUnlimited = "unlimited"
)

// RateLimit is a token bucket refilled at PerMinute with room for Burst
// extra requests. A zero PerMinute disables limiting.
type RateLimit struct {
	PerMinute int
	Burst     int
}

// Unlimited reports whether requests under this limit are never throttled.
func (l RateLimit) Unlimited() bool { return l.PerMinute == 0 }

var tierLimits = map[string]RateLimit{
	TierFree:      {PerMinute: 60, Burst: 10},
	TierPro:       {PerMinute: 600, Burst: 50},
	TierUnlimited: {},
}

// LimitForTier returns the limit of tier. Unknown tiers get the free limit.
func LimitForTier(tier string) RateLimit {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// APIKey is a stored credential. The plaintext is never kept; KeyPrefix
// narrows the hash comparison to a handful of rows.
type APIKey struct {
	ID            string
	UserID        string
	KeyHash       string
	KeyPrefix     string
	Scopes        []string
	RateLimitTier string
	Name          string
	RevokedAt     *time.Time
	LastUsedAt    *time.Time
	CreatedAt     time.Time
}

func (k *APIKey) IsRevoked() bool { return k.RevokedAt != nil }

func (k *APIKey) HasScope(scope string) bool { return grants(k.Scopes, scope) }

// AuthContext is the caller resolved from a key. It is what the auth
// cache stores, so it holds no secret material.
type AuthContext struct {
	KeyID         string
	KeyPrefix     string
	UserID        string
	Scopes        []string
	RateLimitTier string
}

// NewAuthContext derives the caller identity from a verified key.
func NewAuthContext(k *APIKey) *AuthContext {
	return &AuthContext{
		KeyID:         k.ID,
		KeyPrefix:     k.KeyPrefix,
		UserID:        k.UserID,
		Scopes:        slices.Clone(k.Scopes),
		RateLimitTier: k.RateLimitTier,
	}
}

func (a *AuthContext) HasScope(scope string) bool { return grants(a.Scopes, scope) }

// RateLimit is the limit applied to this caller's key.
func (a *AuthContext) RateLimit() RateLimit { return LimitForTier(a.RateLimitTier) }
