// Package model defines domain entities for the application.
package model

import "time"

// User owns wallets, transactions, budgets, debts and API keys.
// Removing a user cascades to everything it owns.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Names of the wallets every new user starts with.
const (
	DefaultWalletCash = "Cash"
	DefaultWalletCard = "Card"
)

// DefaultWalletNames lists the onboarding wallets in creation order.
var DefaultWalletNames = []string{DefaultWalletCash, DefaultWalletCard}
