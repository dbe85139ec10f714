package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/models"
)

// Ensure Bank implements Registry
var _ Registry = (*Bank)(nil)

// Bank deploys and resolves ERC20 tokens kept in a Book.
type Bank struct {
	book Book
}

// NewBank creates a Bank over the given Book.
func NewBank(book Book) *Bank {
	return &Bank{book: book}
}

// Deploy registers a new token. The address is derived from the symbol when
// meta.Address is zero.
func (b *Bank) Deploy(ctx context.Context, meta Meta) (*ERC20, error) {
	if meta.Symbol == "" {
		return nil, fmt.Errorf("token symbol required")
	}
	if meta.Address.IsZero() {
		meta.Address = models.ContractAddress("token/" + meta.Symbol)
	}

	err := b.book.Atomic(ctx, func(ctx context.Context) error {
		if _, err := b.book.GetToken(ctx, meta.Address); err == nil {
			return fmt.Errorf("%w: %s", ErrTokenExists, meta.Address)
		} else if !errors.Is(err, ErrUnknownToken) {
			return err
		}
		return b.book.PutToken(ctx, meta)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Token deployed", "token", meta.Address, "symbol", meta.Symbol, "decimals", meta.Decimals)
	return NewERC20(meta, b.book), nil
}

// Ensure returns the token at meta.Address (or the symbol-derived address),
// deploying it first if needed.
func (b *Bank) Ensure(ctx context.Context, meta Meta) (*ERC20, error) {
	if meta.Address.IsZero() {
		meta.Address = models.ContractAddress("token/" + meta.Symbol)
	}
	existing, err := b.ERC20(ctx, meta.Address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUnknownToken) {
		return nil, err
	}
	return b.Deploy(ctx, meta)
}

// Lookup implements Registry.
func (b *Bank) Lookup(ctx context.Context, address models.Address) (Token, error) {
	return b.ERC20(ctx, address)
}

// ERC20 returns the concrete token at address.
func (b *Bank) ERC20(ctx context.Context, address models.Address) (*ERC20, error) {
	if address.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, address)
	}
	meta, err := b.book.GetToken(ctx, address)
	if err != nil {
		return nil, err
	}
	return NewERC20(*meta, b.book), nil
}

// List returns every deployed token.
func (b *Bank) List(ctx context.Context) ([]Meta, error) {
	return b.book.ListTokens(ctx)
}

// Faucet mints amount of the token at address to account.
func (b *Bank) Faucet(ctx context.Context, address, account models.Address, amount *uint256.Int) error {
	t, err := b.ERC20(ctx, address)
	if err != nil {
		return err
	}
	if err := t.Mint(ctx, account, amount); err != nil {
		return err
	}
	slog.Info("Faucet mint", "token", address, "account", account, "amount", amount.Dec())
	return nil
}
