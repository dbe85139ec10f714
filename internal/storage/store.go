// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billsplitter/internal/models"
)

var (
	// ErrNotFound is returned when a bill or admin record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when inserting a bill whose ID is taken.
	ErrConflict = errors.New("already exists")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
type Store interface {
	// Atomic runs fn inside one transaction carried by the context passed to
	// fn. Every Store call made with that context joins the transaction. If
	// fn returns an error nothing it wrote is kept. Nested calls join the
	// outer transaction.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateBill inserts a new bill. IDs are insert-only-once: a second
	// insert with the same (ledger, ID) fails with ErrConflict, even after
	// the first bill reached a terminal state.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill. Returns ErrNotFound if it does not exist.
	GetBill(ctx context.Context, ledger models.Version, id models.BillID) (*models.Bill, error)

	// BillExists reports whether the identifier is registered.
	BillExists(ctx context.Context, ledger models.Version, id models.BillID) (bool, error)

	// UpdateBill persists mutable fields (price, shares, status, timestamps,
	// description). Returns ErrNotFound if the bill does not exist.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// ListBillsByCreator returns a creator's bills, newest first.
	ListBillsByCreator(ctx context.Context, ledger models.Version, creator models.Address) ([]*models.Bill, error)

	// AddContribution adds shares to payer's cumulative contribution on a
	// bill. first is true when this is the payer's first contribution.
	AddContribution(ctx context.Context, ledger models.Version, id models.BillID, payer models.Address, shares uint8) (first bool, err error)

	// GetContribution returns payer's cumulative shares (0 if none).
	GetContribution(ctx context.Context, ledger models.Version, id models.BillID, payer models.Address) (uint8, error)

	// ListContributions returns every distinct payer in first-payment order.
	ListContributions(ctx context.Context, ledger models.Version, id models.BillID) ([]models.Contribution, error)

	// GetAdmin returns the ledger's administrative record or ErrNotFound.
	GetAdmin(ctx context.Context, ledger models.Version) (*models.Admin, error)

	// PutAdmin inserts or replaces the administrative record.
	PutAdmin(ctx context.Context, admin *models.Admin) error

	// AppendEvents appends events to the log, assigning ID and Seq in place.
	AppendEvents(ctx context.Context, events []models.Event) error

	// ListEvents returns events matching filter in Seq order.
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)

	// Close releases any resources held by the store.
	Close() error
}

// AccountStore persists login accounts.
type AccountStore interface {
	// CreateAccount inserts an account. Returns ErrConflict if the address
	// is already registered.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount returns the account or nil if none is registered.
	GetAccount(ctx context.Context, address models.Address) (*models.Account, error)
}
