package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid address or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAddressExists      = errors.New("address already registered")
	ErrZeroAddress        = errors.New("the zero address cannot register")
	ErrReservedAddress    = errors.New("address is reserved")
)

// ReservedFunc reports whether address belongs to the system (a ledger
// custody address, a token, a ledger owner) and so cannot be claimed by
// self-registration.
type ReservedFunc func(ctx context.Context, address models.Address) (bool, error)

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithReserved blocks registration of the given addresses.
func WithReserved(addresses ...models.Address) Option {
	return func(a *PasswordAuthenticator) {
		for _, addr := range addresses {
			a.reserved[addr] = true
		}
	}
}

// WithReservedCheck blocks registration of every address fn reports.
func WithReservedCheck(fn ReservedFunc) Option {
	return func(a *PasswordAuthenticator) {
		a.checks = append(a.checks, fn)
	}
}

// Ensure PasswordAuthenticator implements Authenticator
var _ Authenticator = (*PasswordAuthenticator)(nil)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	accounts storage.AccountStore
	reserved map[models.Address]bool
	checks   []ReservedFunc
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(accounts storage.AccountStore, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		accounts: accounts,
		reserved: make(map[models.Address]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsReserved reports whether address is closed to self-registration.
func (a *PasswordAuthenticator) IsReserved(ctx context.Context, address models.Address) (bool, error) {
	if a.reserved[address] {
		return true, nil
	}
	for _, check := range a.checks {
		reserved, err := check(ctx, address)
		if err != nil {
			return false, fmt.Errorf("failed to check reserved address: %w", err)
		}
		if reserved {
			return true, nil
		}
	}
	return false, nil
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password. Reserved
// addresses are rejected with ErrReservedAddress.
func (a *PasswordAuthenticator) Register(ctx context.Context, address models.Address, displayName, credential string) (*models.Account, error) {
	if address.IsZero() {
		return nil, ErrZeroAddress
	}
	reserved, err := a.IsReserved(ctx, address)
	if err != nil {
		return nil, err
	}
	if reserved {
		return nil, ErrReservedAddress
	}
	return a.create(ctx, address, displayName, credential)
}

// Provision creates the account for an operator-configured address,
// reserved or not. If the account already exists the credential must match
// it; otherwise ErrAddressExists is returned.
func (a *PasswordAuthenticator) Provision(ctx context.Context, address models.Address, displayName, credential string) (*models.Account, error) {
	if address.IsZero() {
		return nil, ErrZeroAddress
	}
	existing, err := a.accounts.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(credential)) != nil {
			return nil, ErrAddressExists
		}
		return existing, nil
	}
	return a.create(ctx, address, displayName, credential)
}

func (a *PasswordAuthenticator) create(ctx context.Context, address models.Address, displayName, credential string) (*models.Account, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.accounts.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAddressExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.NewAccount(address, displayName, string(hashedPassword))

	if err := a.accounts.CreateAccount(ctx, account); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAddressExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Authenticate verifies the address and password, returning the account if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, address models.Address, credential string) (*models.Account, error) {
	account, err := a.accounts.GetAccount(ctx, address)
	if err != nil || account == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
