package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage/sqlite"
)

var wallet = models.MustAddress("0x00000000000000000000000000000000000000a1")

func newAuthenticator(t *testing.T, opts ...Option) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewPasswordAuthenticator(store, opts...)
}

func TestPasswordAuthenticator_Register(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)

	account, err := a.Register(ctx, wallet, "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Address != wallet {
		t.Errorf("Expected address %s, got %s", wallet, account.Address)
	}
	if account.PasswordHash == "correct horse" {
		t.Error("Password stored in plain text")
	}

	if _, err := a.Register(ctx, wallet, "Alice again", "another password"); !errors.Is(err, ErrAddressExists) {
		t.Errorf("Expected ErrAddressExists, got %v", err)
	}
	if _, err := a.Register(ctx, models.Address{}, "Nobody", "correct horse"); !errors.Is(err, ErrZeroAddress) {
		t.Errorf("Expected ErrZeroAddress, got %v", err)
	}
	other := models.MustAddress("0x00000000000000000000000000000000000000b2")
	if _, err := a.Register(ctx, other, "Bob", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Expected ErrWeakPassword, got %v", err)
	}
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)

	if _, err := a.Register(ctx, wallet, "Alice", "correct horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	account, err := a.Authenticate(ctx, wallet, "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if account.DisplayName != "Alice" {
		t.Errorf("Expected display name Alice, got %s", account.DisplayName)
	}

	if _, err := a.Authenticate(ctx, wallet, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got %v", err)
	}
	unknown := models.MustAddress("0x00000000000000000000000000000000000000c3")
	if _, err := a.Authenticate(ctx, unknown, "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown address, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	account := models.NewAccount(wallet, "Alice", "")

	token, err := m.Generate(account)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	caller, err := claims.Caller()
	if err != nil {
		t.Fatalf("Caller failed: %v", err)
	}
	if caller != wallet {
		t.Errorf("Expected caller %s, got %s", wallet, caller)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired, err := NewJWTManager("test-secret", -time.Minute).Generate(account)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPasswordAuthenticator_ReservedAddresses(t *testing.T) {
	ctx := context.Background()
	custody := models.ContractAddress("billsplitter/v1")
	owner := models.MustAddress("0x00000000000000000000000000000000000000aa")
	tokenAddr := models.ContractAddress("token/USDT")
	a := newAuthenticator(t,
		WithReserved(custody, owner),
		WithReservedCheck(func(_ context.Context, addr models.Address) (bool, error) {
			return addr == tokenAddr, nil
		}),
	)

	for _, addr := range []models.Address{custody, owner, tokenAddr} {
		if _, err := a.Register(ctx, addr, "Mallory", "correct horse"); !errors.Is(err, ErrReservedAddress) {
			t.Errorf("Register(%s): expected ErrReservedAddress, got %v", addr, err)
		}
		if _, err := a.Authenticate(ctx, addr, "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate(%s): expected no account, got %v", addr, err)
		}
	}

	failing := newAuthenticator(t, WithReservedCheck(func(context.Context, models.Address) (bool, error) {
		return false, errors.New("store down")
	}))
	if _, err := failing.Register(ctx, wallet, "Alice", "correct horse"); err == nil {
		t.Error("Expected a failing reserved check to block registration")
	}
}

func TestPasswordAuthenticator_Provision(t *testing.T) {
	ctx := context.Background()
	owner := models.MustAddress("0x00000000000000000000000000000000000000aa")
	a := newAuthenticator(t, WithReserved(owner))

	account, err := a.Provision(ctx, owner, "Owner", "operator secret")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if account.Address != owner {
		t.Errorf("Expected address %s, got %s", owner, account.Address)
	}
	if _, err := a.Authenticate(ctx, owner, "operator secret"); err != nil {
		t.Errorf("Authenticate after provision failed: %v", err)
	}

	// Restarting with the same credential is fine; a different one is not.
	if _, err := a.Provision(ctx, owner, "Owner", "operator secret"); err != nil {
		t.Errorf("Expected repeat provision to succeed, got %v", err)
	}
	if _, err := a.Provision(ctx, owner, "Owner", "someone else"); !errors.Is(err, ErrAddressExists) {
		t.Errorf("Expected ErrAddressExists, got %v", err)
	}
}
