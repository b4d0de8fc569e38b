package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/repository"
)

// ErrAPIKeyNotFound is returned for unknown, foreign or revoked keys alike.
var ErrAPIKeyNotFound = errors.New("API key not found")

// APIKeyStore persists API keys.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error)
	ListAPIKeysByUserID(ctx context.Context, userID string) ([]*model.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// AuthInvalidator drops cached auth contexts of a key.
type AuthInvalidator interface {
	InvalidateKey(ctx context.Context, keyID string) error
}

// APIKeyService manages a user's own API keys.
type APIKeyService struct {
	store       APIKeyStore
	invalidator AuthInvalidator
	clock       Clock
	keyEnv      string
	logger      *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService. invalidator may be nil.
func NewAPIKeyService(store APIKeyStore, invalidator AuthInvalidator, clock Clock, keyEnv string, logger *slog.Logger) *APIKeyService {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyService{
		store:       store,
		invalidator: invalidator,
		clock:       clock,
		keyEnv:      keyEnv,
		logger:      logger,
	}
}

// CreateAPIKeyInput defines input for issuing an additional key.
type CreateAPIKeyInput struct {
	Name   string
	Scopes []string // defaults to read
}

// Create issues a new key for caller. A key can only grant scopes its
// issuer holds. The returned plaintext is shown once.
func (s *APIKeyService) Create(ctx context.Context, caller *model.AuthContext, input CreateAPIKeyInput) (*model.APIKey, string, error) {
	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = []string{model.ScopeRead}
	}

	var v validator
	for _, scope := range scopes {
		v.check(slices.Contains(model.ValidScopes, scope), "scopes", `"`+scope+`" is not a valid choice`)
		v.check(caller.HasScope(scope), "scopes", `cannot grant "`+scope+`" without holding it`)
	}
	v.check(len(clean(input.Name)) <= 100, "name", "ensure this field has no more than 100 characters")
	if err := v.err(); err != nil {
		return nil, "", err
	}

	generated, err := auth.Issue(s.keyEnv)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate API key: %w", err)
	}

	key := &model.APIKey{
		ID:            newID(),
		UserID:        caller.UserID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        slices.Compact(slices.Sorted(slices.Values(scopes))),
		RateLimitTier: caller.RateLimitTier,
		Name:          clean(input.Name),
		CreatedAt:     s.clock(),
	}
	if key.RateLimitTier == "" {
		key.RateLimitTier = model.TierFree
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("failed to create API key: %w", err)
	}

	s.logger.Info("API key created",
		slog.String("key_id", key.ID),
		slog.String("key_prefix", key.KeyPrefix),
		slog.String("user_id", key.UserID),
	)

	return key, generated.Plaintext, nil
}

// List returns every key of the user, revoked ones included.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]*model.APIKey, error) {
	return s.store.ListAPIKeysByUserID(ctx, userID)
}

// Revoke revokes one of the user's keys. Revoking the key used for the
// request is how a client logs out.
func (s *APIKeyService) Revoke(ctx context.Context, userID, keyID string) error {
	key, err := s.store.GetAPIKeyByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return ErrAPIKeyNotFound
		}
		return fmt.Errorf("failed to get API key: %w", err)
	}
	// Foreign keys look exactly like missing ones.
	if key.UserID != userID || key.IsRevoked() {
		return ErrAPIKeyNotFound
	}

	if err := s.store.RevokeAPIKey(ctx, keyID); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return ErrAPIKeyNotFound
		}
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateKey(ctx, keyID); err != nil {
			s.logger.Warn("failed to invalidate cached auth context",
				slog.String("key_id", keyID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("API key revoked",
		slog.String("key_id", keyID),
		slog.String("user_id", userID),
	)
	return nil
}
