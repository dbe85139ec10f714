package models

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Version names a ledger variant. Bills, admin records and events are
// namespaced by it.
type Version string

const (
	// LedgerV1 settles in one deploy-time token and charges a platform fee.
	LedgerV1 Version = "v1"
	// LedgerV2 lets each bill pick its token and supports creator self-payment.
	LedgerV2 Version = "v2"
)

// ParseVersion accepts "v1" or "v2".
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case LedgerV1, LedgerV2:
		return Version(s), nil
	}
	return "", fmt.Errorf("unknown ledger version %q", s)
}

// MaxShares is the platform-enforced upper bound on TotalShares.
const MaxShares = 100

// Status is the lifecycle state of a bill.
// V1 bills end Settled or Cancelled; V2 bills end Closed.
type Status uint8

const (
	StatusActive Status = iota
	StatusSettled
	StatusClosed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSettled:
		return "settled"
	case StatusClosed:
		return "closed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Code returns the numeric status the wallet UI understands:
// 0 active, 1 settled/closed, 2 cancelled.
func (s Status) Code() uint8 {
	switch s {
	case StatusSettled, StatusClosed:
		return 1
	case StatusCancelled:
		return 2
	}
	return 0
}

// Terminal reports whether the bill has left Active. Terminal bills are frozen.
func (s Status) Terminal() bool { return s != StatusActive }

// Bill is a shared expense split into TotalShares equal shares of SharePrice.
type Bill struct {
	// ID is the caller-chosen identifier, unique across the ledger's lifetime.
	ID BillID

	// Ledger is the variant that owns the bill.
	Ledger Version

	// Creator is the only principal allowed to update, close, cancel or
	// self-pay. Immutable.
	Creator Address

	// Token is the asset the bill is denominated in. For V1 it is the
	// ledger-wide token. Immutable.
	Token Address

	// SharePrice is the smallest-unit amount owed per share. Always > 0.
	SharePrice uint256.Int

	// TotalShares is in (0, MaxShares].
	TotalShares uint8

	// PaidShares never decreases while Active and never exceeds TotalShares.
	PaidShares uint8

	// InitialShares is the part of PaidShares the creator declared at
	// creation without moving tokens (V2 only).
	InitialShares uint8

	Status Status

	// Description is persisted by V1 only. V2 carries it in events.
	Description string

	// CreatedAt is the Unix timestamp of creation.
	CreatedAt int64

	// SettledAt is the Unix timestamp at which a V1 bill settled, zero otherwise.
	SettledAt int64
}

// RemainingShares returns TotalShares - PaidShares.
func (b *Bill) RemainingShares() uint8 {
	if b.PaidShares >= b.TotalShares {
		return 0
	}
	return b.TotalShares - b.PaidShares
}

// FullyPaid reports whether every share is covered.
func (b *Bill) FullyPaid() bool { return b.PaidShares >= b.TotalShares }

// Contribution is the cumulative share count one payer covered on a V1 bill.
// Payers are kept in first-payment order.
type Contribution struct {
	Payer  Address
	Shares uint8
}

// Admin is the per-ledger administrative record.
type Admin struct {
	Ledger Version

	// Owner may change the fee, withdraw fees and hand over ownership.
	// Zero after renouncement.
	Owner Address

	// Contract is the ledger's own custody address.
	Contract Address

	// Token is the V1 settlement token. Zero for V2.
	Token Address

	// PlatformFee is in basis points (V1).
	PlatformFee uint16

	// CollectedFees is the withdrawable fee balance held in custody (V1).
	CollectedFees uint256.Int
}
