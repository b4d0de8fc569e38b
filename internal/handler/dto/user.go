package dto

import (
	"time"

	"github.com/BigazyGalym/Diplom/internal/model"
)

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// UpdateProfileRequest is a partial profile update. Absent fields are kept.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// UserResponse represents a user profile.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse is returned once, on successful registration. APIKey
// holds the only copy of the plaintext key.
type RegisterResponse struct {
	Message string                `json:"message"`
	User    UserResponse          `json:"user"`
	Wallets []WalletResponse      `json:"wallets"`
	APIKey  CreatedAPIKeyResponse `json:"api_key"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
