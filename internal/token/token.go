// Package token models the fungible-asset collaborator the ledger pays
// through. Token is the narrow capability the ledger depends on; ERC20 is
// the standard-semantics implementation backed by a Book.
package token

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/models"
)

var (
	ErrUnknownToken          = errors.New("unknown token")
	ErrTokenExists           = errors.New("token already deployed")
	ErrZeroAddress           = errors.New("zero address")
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Token is an ERC20-like asset. The account that the EVM would pass
// implicitly as msg.sender is an explicit argument here: owner for Approve,
// from for Transfer, spender for TransferFrom.
//
// Implementations must use ctx for every call back into the ledger so that
// the ledger can detect re-entry.
type Token interface {
	Address() models.Address
	Decimals(ctx context.Context) (uint8, error)
	BalanceOf(ctx context.Context, account models.Address) (*uint256.Int, error)
	Allowance(ctx context.Context, owner, spender models.Address) (*uint256.Int, error)
	Approve(ctx context.Context, owner, spender models.Address, amount *uint256.Int) error
	Transfer(ctx context.Context, from, to models.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to models.Address, amount *uint256.Int) error
}

// Registry resolves a token by address.
type Registry interface {
	Lookup(ctx context.Context, address models.Address) (Token, error)
}

// Meta describes a deployed token.
type Meta struct {
	Address  models.Address
	Name     string
	Symbol   string
	Decimals uint8
}

// Book persists token metadata, balances and allowances. Missing balances
// and allowances read as zero. Atomic runs fn in one transaction, joining
// the caller's transaction if ctx already carries one.
type Book interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error

	PutToken(ctx context.Context, meta Meta) error
	GetToken(ctx context.Context, address models.Address) (*Meta, error)
	ListTokens(ctx context.Context) ([]Meta, error)

	GetBalance(ctx context.Context, token, account models.Address) (*uint256.Int, error)
	SetBalance(ctx context.Context, token, account models.Address, amount *uint256.Int) error

	GetAllowance(ctx context.Context, token, owner, spender models.Address) (*uint256.Int, error)
	SetAllowance(ctx context.Context, token, owner, spender models.Address, amount *uint256.Int) error
}
