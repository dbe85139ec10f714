package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/models"
)

// Ensure ERC20 implements Token
var _ Token = (*ERC20)(nil)

// ERC20 implements Token with standard ERC20 semantics over a Book:
// transfers to or from the zero address fail, balances and allowances
// cannot go negative, and TransferFrom spends the spender's allowance.
type ERC20 struct {
	meta Meta
	book Book
}

// NewERC20 binds a deployed token's metadata to its Book.
func NewERC20(meta Meta, book Book) *ERC20 {
	return &ERC20{meta: meta, book: book}
}

func (t *ERC20) Address() models.Address { return t.meta.Address }

// Meta returns the token's metadata.
func (t *ERC20) Meta() Meta { return t.meta }

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) { return t.meta.Decimals, nil }

func (t *ERC20) BalanceOf(ctx context.Context, account models.Address) (*uint256.Int, error) {
	return t.book.GetBalance(ctx, t.meta.Address, account)
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender models.Address) (*uint256.Int, error) {
	return t.book.GetAllowance(ctx, t.meta.Address, owner, spender)
}

// Approve sets spender's allowance over owner's balance to amount.
func (t *ERC20) Approve(ctx context.Context, owner, spender models.Address, amount *uint256.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return fmt.Errorf("%s approve: %w", t.meta.Symbol, ErrZeroAddress)
	}
	return t.book.SetAllowance(ctx, t.meta.Address, owner, spender, amount)
}

// Transfer moves amount from from to to.
func (t *ERC20) Transfer(ctx context.Context, from, to models.Address, amount *uint256.Int) error {
	return t.book.Atomic(ctx, func(ctx context.Context) error {
		return t.move(ctx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to on behalf of spender,
// spending spender's allowance.
func (t *ERC20) TransferFrom(ctx context.Context, spender, from, to models.Address, amount *uint256.Int) error {
	return t.book.Atomic(ctx, func(ctx context.Context) error {
		allowance, err := t.book.GetAllowance(ctx, t.meta.Address, from, spender)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return fmt.Errorf("%s transferFrom %s by %s: %w (have %s, need %s)",
				t.meta.Symbol, from, spender, ErrInsufficientAllowance, allowance.Dec(), amount.Dec())
		}
		remaining := new(uint256.Int).Sub(allowance, amount)
		if err := t.book.SetAllowance(ctx, t.meta.Address, from, spender, remaining); err != nil {
			return err
		}
		return t.move(ctx, from, to, amount)
	})
}

// Mint credits amount to account and is used by the testnet faucet.
func (t *ERC20) Mint(ctx context.Context, to models.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%s mint: %w", t.meta.Symbol, ErrZeroAddress)
	}
	return t.book.Atomic(ctx, func(ctx context.Context) error {
		balance, err := t.book.GetBalance(ctx, t.meta.Address, to)
		if err != nil {
			return err
		}
		credited, overflow := new(uint256.Int).AddOverflow(balance, amount)
		if overflow {
			return fmt.Errorf("%s mint: balance overflow", t.meta.Symbol)
		}
		return t.book.SetBalance(ctx, t.meta.Address, to, credited)
	})
}

func (t *ERC20) move(ctx context.Context, from, to models.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%s transfer: %w", t.meta.Symbol, ErrZeroAddress)
	}

	fromBalance, err := t.book.GetBalance(ctx, t.meta.Address, from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%s transfer from %s: %w (have %s, need %s)",
			t.meta.Symbol, from, ErrInsufficientBalance, fromBalance.Dec(), amount.Dec())
	}
	if err := t.book.SetBalance(ctx, t.meta.Address, from, new(uint256.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}

	toBalance, err := t.book.GetBalance(ctx, t.meta.Address, to)
	if err != nil {
		return err
	}
	// Total supply bounds every balance, so this cannot overflow.
	return t.book.SetBalance(ctx, t.meta.Address, to, new(uint256.Int).Add(toBalance, amount))
}
