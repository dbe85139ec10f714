package auth

import (
	"context"

	"github.com/mmynk/billsplitter/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Every account is keyed by its wallet address; the credential format
// depends on the implementation.
type Authenticator interface {
	// Register creates an account for address. Returns ErrAddressExists if
	// the address is already registered.
	Register(ctx context.Context, address models.Address, displayName, credential string) (*models.Account, error)

	// Authenticate verifies the credential and returns the account.
	Authenticate(ctx context.Context, address models.Address, credential string) (*models.Account, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
