// Package ledger implements the two bill ledgers. Splitter (V1) settles in a
// single token and charges a platform fee; SplitterV2 lets every bill pick its
// token and supports creator self-payment.
//
// Every mutating operation runs as one unit: it takes the ledger's
// reentrancy guard, opens a storage transaction, validates, changes state,
// moves tokens and appends events. Any error rolls the whole unit back,
// token balances included. Events are published only after commit.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/holiman/uint256"

	"github.com/mmynk/billsplitter/internal/calculator"
	"github.com/mmynk/billsplitter/internal/events"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
)

// Options configures a ledger.
type Options struct {
	// Owner becomes the ledger owner on first start. Ignored once the
	// admin record exists.
	Owner models.Address

	// Contract is the ledger's custody address. Defaults to
	// models.ContractAddress("billsplitter/<version>").
	Contract models.Address

	// PlatformFee in basis points, V1 only. Applied on first start.
	PlatformFee uint16

	Publisher events.Publisher
	Logger    *slog.Logger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// GuardWait bounds how long a mutating call waits while another one
	// runs. Defaults to DefaultGuardWait.
	GuardWait time.Duration
}

// Payment describes an accepted payment.
type Payment struct {
	BillID      models.BillID
	Payer       models.Address
	Shares      uint8
	Amount      *uint256.Int
	Fee         *uint256.Int
	Net         *uint256.Int
	SelfPayment bool

	// Closed is true when this payment covered the last share.
	Closed bool
}

// ContractAddress returns the default custody address of a ledger version.
func ContractAddress(version models.Version) models.Address {
	return models.ContractAddress("billsplitter/" + string(version))
}

// core holds what both ledger versions share: storage, the guard, the
// operation runner, ownership and the bill queries.
type core struct {
	version   models.Version
	contract  models.Address
	store     storage.Store
	guard     guard
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func newCore(version models.Version, store storage.Store, opts Options) *core {
	c := &core{
		version:   version,
		contract:  opts.Contract,
		store:     store,
		guard:     newGuard(opts.GuardWait),
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.contract.IsZero() {
		c.contract = ContractAddress(version)
	}
	if c.publisher == nil {
		c.publisher = events.Nop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.logger = c.logger.With("ledger", string(version))
	return c
}

// bootstrap loads the admin record, creating it from fresh on first start.
func (c *core) bootstrap(ctx context.Context, fresh models.Admin) (*models.Admin, error) {
	var admin *models.Admin
	err := c.store.Atomic(ctx, func(ctx context.Context) error {
		existing, err := c.store.GetAdmin(ctx, c.version)
		if err == nil {
			admin = existing
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if fresh.Owner.IsZero() {
			return fmt.Errorf("%w: zero initial owner", ErrOwnableInvalidOwner)
		}
		fresh.Ledger = c.version
		fresh.Contract = c.contract
		if err := c.store.PutAdmin(ctx, &fresh); err != nil {
			return err
		}
		admin = &fresh
		return c.store.AppendEvents(ctx, []models.Event{{
			Ledger:    c.version,
			Kind:      models.EventOwnershipTransferred,
			Account:   fresh.Owner,
			CreatedAt: c.now().Unix(),
		}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger %s: %w", c.version, err)
	}

	c.contract = admin.Contract
	c.logger.Info("Ledger ready", "owner", admin.Owner, "contract", admin.Contract)
	return admin, nil
}

// tx collects what one operation emits.
type tx struct {
	at     int64
	events []models.Event
}

func (t *tx) emit(e models.Event) {
	t.events = append(t.events, e)
}

// execute runs fn as one guarded, atomic ledger operation.
func (c *core) execute(ctx context.Context, op string, caller models.Address, id models.BillID, fn func(ctx context.Context, t *tx) error) error {
	attrs := []any{"op", op, "caller", caller}
	if !id.IsZero() {
		attrs = append(attrs, "bill_id", id)
	}

	guarded, release, err := c.guard.enter(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Ledger operation rejected", append(attrs, "error", err)...)
		return err
	}

	t := &tx{at: c.now().Unix()}
	err = func() error {
		defer release()
		return c.store.Atomic(guarded, func(ctx context.Context) error {
			if err := fn(ctx, t); err != nil {
				return err
			}
			for i := range t.events {
				t.events[i].Ledger = c.version
				t.events[i].CreatedAt = t.at
			}
			return c.store.AppendEvents(ctx, t.events)
		})
	}()
	if err != nil {
		if KindOf(err) == KindInternal {
			c.logger.ErrorContext(ctx, "Ledger operation failed", append(attrs, "error", err)...)
		} else {
			c.logger.WarnContext(ctx, "Ledger operation rejected", append(attrs, "error", err)...)
		}
		return err
	}

	c.logger.InfoContext(ctx, "Ledger operation committed", append(attrs, "events", len(t.events))...)
	// The guard is already released; subscribers may call back in.
	c.publisher.Publish(ctx, t.events)
	return nil
}

// Ledger returns the ledger version.
func (c *core) Ledger() models.Version { return c.version }

// Contract returns the ledger's custody address. Payers approve it.
func (c *core) Contract() models.Address { return c.contract }

func (c *core) loadBill(ctx context.Context, id models.BillID) (*models.Bill, error) {
	bill, err := c.store.GetBill(ctx, c.version, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (c *core) activeBill(ctx context.Context, id models.BillID) (*models.Bill, error) {
	bill, err := c.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrBillNotActive, id, bill.Status)
	}
	return bill, nil
}

func (c *core) requireNew(ctx context.Context, id models.BillID) error {
	exists, err := c.store.BillExists(ctx, c.version, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBillAlreadyExists, id)
	}
	return nil
}

func (c *core) requireOwner(ctx context.Context, caller models.Address) (*models.Admin, error) {
	admin, err := c.store.GetAdmin(ctx, c.version)
	if err != nil {
		return nil, err
	}
	if admin.Owner.IsZero() || admin.Owner != caller {
		return nil, fmt.Errorf("%w: %s", ErrOwnableUnauthorizedAccount, caller)
	}
	return admin, nil
}

// validateTerms checks a share price and share count for a new or updated
// bill. The bill total must fit in 256 bits so amount queries never fail.
func validateTerms(sharePrice *uint256.Int, totalShares uint32) error {
	if sharePrice == nil || sharePrice.IsZero() {
		return ErrInvalidSharePrice
	}
	if totalShares == 0 || totalShares > models.MaxShares {
		return fmt.Errorf("%w: total shares %d not in 1..%d", ErrInvalidShares, totalShares, models.MaxShares)
	}
	if _, err := calculator.ShareAmount(sharePrice, uint8(totalShares)); err != nil {
		return fmt.Errorf("%w: %w", ErrAmountOverflow, err)
	}
	return nil
}

// checkPayable validates a share count against what is left on the bill.
func checkPayable(bill *models.Bill, shareCount uint32) error {
	if shareCount == 0 {
		return fmt.Errorf("%w: share count must be positive", ErrInvalidShares)
	}
	if shareCount > uint32(bill.RemainingShares()) {
		return fmt.Errorf("%w: %d requested, %d remaining", ErrExcessiveShares, shareCount, bill.RemainingShares())
	}
	return nil
}

func shareAmount(bill *models.Bill, shares uint8) (*uint256.Int, error) {
	amount, err := calculator.ShareAmount(&bill.SharePrice, shares)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAmountOverflow, err)
	}
	return amount, nil
}

func transferFailed(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransferFailed, what, err)
}

// TransferOwnership hands the ledger to newOwner.
func (c *core) TransferOwnership(ctx context.Context, caller, newOwner models.Address) error {
	return c.execute(ctx, "TransferOwnership", caller, models.BillID{}, func(ctx context.Context, t *tx) error {
		admin, err := c.requireOwner(ctx, caller)
		if err != nil {
			return err
		}
		if newOwner.IsZero() {
			return fmt.Errorf("%w: zero address", ErrOwnableInvalidOwner)
		}
		return c.setOwner(ctx, t, admin, newOwner)
	})
}

// RenounceOwnership leaves the ledger without an owner. Owner-gated
// operations become unavailable for good.
func (c *core) RenounceOwnership(ctx context.Context, caller models.Address) error {
	return c.execute(ctx, "RenounceOwnership", caller, models.BillID{}, func(ctx context.Context, t *tx) error {
		admin, err := c.requireOwner(ctx, caller)
		if err != nil {
			return err
		}
		return c.setOwner(ctx, t, admin, models.Address{})
	})
}

func (c *core) setOwner(ctx context.Context, t *tx, admin *models.Admin, owner models.Address) error {
	previous := admin.Owner
	admin.Owner = owner
	if err := c.store.PutAdmin(ctx, admin); err != nil {
		return err
	}
	t.emit(models.Event{
		Kind:          models.EventOwnershipTransferred,
		PreviousOwner: previous,
		Account:       owner,
	})
	return nil
}

// Owner returns the current owner (zero after renouncement).
func (c *core) Owner(ctx context.Context) (models.Address, error) {
	admin, err := c.store.GetAdmin(ctx, c.version)
	if err != nil {
		return models.Address{}, err
	}
	return admin.Owner, nil
}

// Exists reports whether id was ever registered.
func (c *core) Exists(ctx context.Context, id models.BillID) (bool, error) {
	return c.store.BillExists(ctx, c.version, id)
}

// Bill returns the full bill record.
func (c *core) Bill(ctx context.Context, id models.BillID) (*models.Bill, error) {
	return c.loadBill(ctx, id)
}

// TotalAmount returns sharePrice × totalShares.
func (c *core) TotalAmount(ctx context.Context, id models.BillID) (*uint256.Int, error) {
	bill, err := c.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return shareAmount(bill, bill.TotalShares)
}

// PaidAmount returns sharePrice × paidShares.
func (c *core) PaidAmount(ctx context.Context, id models.BillID) (*uint256.Int, error) {
	bill, err := c.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return shareAmount(bill, bill.PaidShares)
}

// RemainingShares returns totalShares - paidShares.
func (c *core) RemainingShares(ctx context.Context, id models.BillID) (uint8, error) {
	bill, err := c.loadBill(ctx, id)
	if err != nil {
		return 0, err
	}
	return bill.RemainingShares(), nil
}

// RemainingAmount returns sharePrice × remaining shares.
func (c *core) RemainingAmount(ctx context.Context, id models.BillID) (*uint256.Int, error) {
	bill, err := c.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return shareAmount(bill, bill.RemainingShares())
}

// BillsByCreator lists the creator's bills, newest first.
func (c *core) BillsByCreator(ctx context.Context, creator models.Address) ([]*models.Bill, error) {
	return c.store.ListBillsByCreator(ctx, c.version, creator)
}

// Events returns this ledger's event history matching filter.
func (c *core) Events(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	filter.Ledger = c.version
	return c.store.ListEvents(ctx, filter)
}
