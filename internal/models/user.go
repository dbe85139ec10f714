package models

import "time"

// Account is a registered wallet address with login credentials.
// The address is the identity every ledger operation runs as.
type Account struct {
	// Address is the wallet address (unique). It doubles as the account ID.
	Address Address

	// DisplayName is a human-readable label for the wallet.
	DisplayName string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was registered.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// NewAccount creates an account with timestamps set to now.
func NewAccount(address Address, displayName, passwordHash string) *Account {
	now := time.Now().Unix()
	return &Account{
		Address:      address,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
