package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/metrics"
	"github.com/BigazyGalym/Diplom/internal/model"
	"github.com/BigazyGalym/Diplom/internal/repository"
)

// UserService handles registration and profile management.
type UserService struct {
	store   UserStore
	clock   Clock
	keyEnv  string
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService. keyEnv selects the environment
// marker of issued keys (auth.EnvLive or auth.EnvTest).
func NewUserService(store UserStore, clock Clock, keyEnv string, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if clock == nil {
		clock = SystemClock
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		clock:   clock,
		keyEnv:  keyEnv,
		metrics: recorder,
		logger:  logger,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// RegisterOutput is everything created for a new user.
// PlaintextKey is never stored and cannot be shown again.
type RegisterOutput struct {
	User         *model.User
	Wallets      []*model.Wallet
	APIKey       *model.APIKey
	PlaintextKey string
}

// Register creates a user with its default "Cash" and "Card" wallets and
// a first API key. Either all of them exist afterwards or none does.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	email := normalizeEmail(input.Email)
	firstName := clean(input.FirstName)
	lastName := clean(input.LastName)
	phone := clean(input.Phone)

	var v validator
	v.check(email != "", "email", "this field is required")
	v.check(validEmail(email), "email", "enter a valid email address")
	v.check(len(email) <= maxEmailLength, "email", "ensure this field has no more than 254 characters")
	v.check(utf8.RuneCountInString(firstName) <= maxNameLength, "first_name", "ensure this field has no more than 150 characters")
	v.check(utf8.RuneCountInString(lastName) <= maxNameLength, "last_name", "ensure this field has no more than 150 characters")
	v.check(utf8.RuneCountInString(phone) <= maxPhoneLength, "phone", "ensure this field has no more than 15 characters")
	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.clock()
	user := &model.User{
		ID:        newID(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	wallets := make([]*model.Wallet, 0, len(model.DefaultWalletNames))
	for _, name := range model.DefaultWalletNames {
		wallets = append(wallets, &model.Wallet{
			ID:        newID(),
			UserID:    user.ID,
			Name:      name,
			Balance:   decimal.Zero,
			CreatedAt: now,
		})
	}

	generated, err := auth.Issue(s.keyEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	key := &model.APIKey{
		ID:            newID(),
		UserID:        user.ID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        model.DefaultUserScopes,
		RateLimitTier: model.TierFree,
		Name:          "default",
		CreatedAt:     now,
	}

	if err := s.store.CreateUserWithDefaults(ctx, user, wallets, key); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("key_prefix", key.KeyPrefix),
	)

	return &RegisterOutput{
		User:         user,
		Wallets:      wallets,
		APIKey:       key,
		PlaintextKey: generated.Plaintext,
	}, nil
}

// GetProfile returns the user identified by userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines a partial profile update. Nil fields are kept.
// The email cannot be changed.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile applies a partial update to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var v validator
	if input.FirstName != nil {
		user.FirstName = clean(*input.FirstName)
		v.check(utf8.RuneCountInString(user.FirstName) <= maxNameLength, "first_name", "ensure this field has no more than 150 characters")
	}
	if input.LastName != nil {
		user.LastName = clean(*input.LastName)
		v.check(utf8.RuneCountInString(user.LastName) <= maxNameLength, "last_name", "ensure this field has no more than 150 characters")
	}
	if input.Phone != nil {
		user.Phone = clean(*input.Phone)
		v.check(utf8.RuneCountInString(user.Phone) <= maxPhoneLength, "phone", "ensure this field has no more than 15 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	user.UpdatedAt = s.clock()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// normalizeEmail trims the address and lower-cases its domain part.
func normalizeEmail(email string) string {
	email = clean(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// validEmail accepts a bare address only, without a display name.
func validEmail(email string) bool {
	if email == "" {
		return true // reported as required
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
