package ledger

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mmynk/billsplitter/internal/calculator"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
	"github.com/mmynk/billsplitter/internal/token"
)

const (
	// Release is the V1 ledger's published version string.
	Release = "1.0.0"

	// DefaultPlatformFee is 1%.
	DefaultPlatformFee uint16 = 100

	// MaxPlatformFee is the hard ceiling of 5%.
	MaxPlatformFee uint16 = 500
)

// Splitter is the V1 ledger. Bills settle in one token fixed at first start.
// Every payment is pulled into the ledger's custody, the platform fee is
// kept there and the rest is forwarded to the creator.
type Splitter struct {
	*core
	token token.Token
}

// NewSplitter opens the V1 ledger over store, creating its admin record on
// first start.
func NewSplitter(ctx context.Context, store storage.Store, tok token.Token, opts Options) (*Splitter, error) {
	if opts.PlatformFee > MaxPlatformFee {
		return nil, fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidFee, opts.PlatformFee, MaxPlatformFee)
	}

	c := newCore(models.LedgerV1, store, opts)
	admin, err := c.bootstrap(ctx, models.Admin{
		Owner:       opts.Owner,
		Token:       tok.Address(),
		PlatformFee: opts.PlatformFee,
	})
	if err != nil {
		return nil, err
	}
	if admin.Token != tok.Address() {
		return nil, fmt.Errorf("ledger %s settles in %s, not %s", models.LedgerV1, admin.Token, tok.Address())
	}

	return &Splitter{core: c, token: tok}, nil
}

// Version returns the published release string.
func (s *Splitter) Version() string { return Release }

// Token returns the settlement token address.
func (s *Splitter) Token() models.Address { return s.token.Address() }

// CreateBill registers a bill owned by creator.
func (s *Splitter) CreateBill(ctx context.Context, creator models.Address, id models.BillID, sharePrice *uint256.Int, totalShares uint32, description string) error {
	return s.execute(ctx, "CreateBill", creator, id, func(ctx context.Context, t *tx) error {
		if err := s.requireNew(ctx, id); err != nil {
			return err
		}
		if err := validateTerms(sharePrice, totalShares); err != nil {
			return err
		}

		bill := &models.Bill{
			ID:          id,
			Ledger:      models.LedgerV1,
			Creator:     creator,
			Token:       s.token.Address(),
			TotalShares: uint8(totalShares),
			Status:      models.StatusActive,
			Description: description,
			CreatedAt:   t.at,
		}
		bill.SharePrice.Set(sharePrice)
		if err := s.store.CreateBill(ctx, bill); err != nil {
			return err
		}

		t.emit(models.Event{
			Kind:        models.EventBillCreated,
			BillID:      id,
			Account:     creator,
			Token:       bill.Token,
			SharePrice:  sharePrice.Dec(),
			TotalShares: bill.TotalShares,
			Description: description,
		})
		return nil
	})
}

// PayBill pays shareCount shares of a bill on behalf of payer. The payer
// must have approved the ledger's contract address for the gross amount.
// The bill settles in the same call when the last share is paid.
func (s *Splitter) PayBill(ctx context.Context, payer models.Address, id models.BillID, shareCount uint32) (*Payment, error) {
	var payment *Payment
	err := s.execute(ctx, "PayBill", payer, id, func(ctx context.Context, t *tx) error {
		bill, err := s.activeBill(ctx, id)
		if err != nil {
			return err
		}
		if err := checkPayable(bill, shareCount); err != nil {
			return err
		}

		shares := uint8(shareCount)
		amount, err := shareAmount(bill, shares)
		if err != nil {
			return err
		}
		admin, err := s.store.GetAdmin(ctx, models.LedgerV1)
		if err != nil {
			return err
		}
		split, err := calculator.PlatformFee(amount, admin.PlatformFee)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAmountOverflow, err)
		}

		closed := s.credit(bill, shares, t.at)
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}
		if _, err := s.store.AddContribution(ctx, models.LedgerV1, id, payer, shares); err != nil {
			return err
		}
		if _, overflow := admin.CollectedFees.AddOverflow(&admin.CollectedFees, split.Fee); overflow {
			return fmt.Errorf("%w: collected fees", ErrAmountOverflow)
		}
		if err := s.store.PutAdmin(ctx, admin); err != nil {
			return err
		}

		if err := s.token.TransferFrom(ctx, s.contract, payer, s.contract, amount); err != nil {
			return transferFailed("pull payment", err)
		}
		if !split.Net.IsZero() {
			if err := s.token.Transfer(ctx, s.contract, bill.Creator, split.Net); err != nil {
				return transferFailed("forward to creator", err)
			}
		}

		t.emit(models.Event{
			Kind:    models.EventPaymentMade,
			BillID:  id,
			Account: payer,
			Token:   bill.Token,
			Shares:  shares,
			Amount:  amount.Dec(),
			Fee:     split.Fee.Dec(),
		})
		if closed {
			t.emit(models.Event{Kind: models.EventBillSettled, BillID: id})
		}

		payment = &Payment{
			BillID: id,
			Payer:  payer,
			Shares: shares,
			Amount: split.Amount,
			Fee:    split.Fee,
			Net:    split.Net,
			Closed: closed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// credit adds shares to the bill and settles it once fully paid.
func (s *Splitter) credit(bill *models.Bill, shares uint8, at int64) bool {
	bill.PaidShares += shares
	if !bill.FullyPaid() {
		return false
	}
	bill.Status = models.StatusSettled
	bill.SettledAt = at
	return true
}

// CloseBill settles a bill early. Creator only; no funds move.
func (s *Splitter) CloseBill(ctx context.Context, caller models.Address, id models.BillID) error {
	return s.execute(ctx, "CloseBill", caller, id, func(ctx context.Context, t *tx) error {
		bill, err := s.loadBill(ctx, id)
		if err != nil {
			return err
		}
		if bill.Creator != caller {
			return fmt.Errorf("%w: %s is not the creator", ErrUnauthorizedAccess, caller)
		}
		if bill.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrBillNotActive, id, bill.Status)
		}

		bill.Status = models.StatusSettled
		bill.SettledAt = t.at
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}
		t.emit(models.Event{Kind: models.EventBillSettled, BillID: id})
		return nil
	})
}

// CancelBill cancels a bill and refunds every payer their gross
// contribution. Refunds are drawn from the creator, who must have approved
// the ledger's contract address for the total. Collected fees stay with the
// platform.
func (s *Splitter) CancelBill(ctx context.Context, caller models.Address, id models.BillID) ([]calculator.Refund, error) {
	var refunds []calculator.Refund
	err := s.execute(ctx, "CancelBill", caller, id, func(ctx context.Context, t *tx) error {
		bill, err := s.loadBill(ctx, id)
		if err != nil {
			return err
		}
		if bill.Creator != caller {
			return fmt.Errorf("%w: %s is not the creator", ErrUnauthorizedCancellation, caller)
		}
		if bill.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrBillNotActive, id, bill.Status)
		}

		bill.Status = models.StatusCancelled
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}

		contributions, err := s.store.ListContributions(ctx, models.LedgerV1, id)
		if err != nil {
			return err
		}
		plan, _, err := calculator.RefundPlan(contributions, &bill.SharePrice)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAmountOverflow, err)
		}

		for _, r := range plan {
			if err := s.token.TransferFrom(ctx, s.contract, bill.Creator, r.Payer, r.Amount); err != nil {
				return transferFailed(fmt.Sprintf("refund %s", r.Payer), err)
			}
			t.emit(models.Event{
				Kind:    models.EventRefundIssued,
				BillID:  id,
				Account: r.Payer,
				Token:   bill.Token,
				Shares:  r.Shares,
				Amount:  r.Amount.Dec(),
			})
		}
		t.emit(models.Event{Kind: models.EventBillCancelled, BillID: id})

		refunds = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// SetPlatformFee replaces the fee charged on future payments. Owner only.
func (s *Splitter) SetPlatformFee(ctx context.Context, caller models.Address, fee uint16) error {
	return s.execute(ctx, "SetPlatformFee", caller, models.BillID{}, func(ctx context.Context, t *tx) error {
		admin, err := s.requireOwner(ctx, caller)
		if err != nil {
			return err
		}
		if fee > MaxPlatformFee {
			return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidFee, fee, MaxPlatformFee)
		}

		admin.PlatformFee = fee
		if err := s.store.PutAdmin(ctx, admin); err != nil {
			return err
		}
		t.emit(models.Event{Kind: models.EventPlatformFeeUpdated, PlatformFee: fee})
		return nil
	})
}

// WithdrawFees sends every collected fee to the recipient. Owner only.
func (s *Splitter) WithdrawFees(ctx context.Context, caller, to models.Address) (*uint256.Int, error) {
	var withdrawn *uint256.Int
	err := s.execute(ctx, "WithdrawFees", caller, models.BillID{}, func(ctx context.Context, t *tx) error {
		admin, err := s.requireOwner(ctx, caller)
		if err != nil {
			return err
		}
		if to.IsZero() {
			return fmt.Errorf("%w: zero address", ErrInvalidRecipient)
		}
		if admin.CollectedFees.IsZero() {
			return ErrNoFeesToWithdraw
		}

		amount := admin.CollectedFees.Clone()
		admin.CollectedFees.Clear()
		if err := s.store.PutAdmin(ctx, admin); err != nil {
			return err
		}
		if err := s.token.Transfer(ctx, s.contract, to, amount); err != nil {
			return transferFailed("withdraw fees", err)
		}

		t.emit(models.Event{
			Kind:    models.EventFeesWithdrawn,
			Account: to,
			Token:   s.token.Address(),
			Amount:  amount.Dec(),
		})
		withdrawn = amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// PlatformFee returns the current fee in basis points.
func (s *Splitter) PlatformFee(ctx context.Context) (uint16, error) {
	admin, err := s.store.GetAdmin(ctx, models.LedgerV1)
	if err != nil {
		return 0, err
	}
	return admin.PlatformFee, nil
}

// CollectedFees returns the withdrawable fee balance.
func (s *Splitter) CollectedFees(ctx context.Context) (*uint256.Int, error) {
	admin, err := s.store.GetAdmin(ctx, models.LedgerV1)
	if err != nil {
		return nil, err
	}
	return admin.CollectedFees.Clone(), nil
}

// Contribution returns the shares payer has paid on a bill.
func (s *Splitter) Contribution(ctx context.Context, id models.BillID, payer models.Address) (uint8, error) {
	if _, err := s.loadBill(ctx, id); err != nil {
		return 0, err
	}
	return s.store.GetContribution(ctx, models.LedgerV1, id, payer)
}

// Payers returns every distinct payer of a bill with their shares, in the
// order they first paid.
func (s *Splitter) Payers(ctx context.Context, id models.BillID) ([]models.Contribution, error) {
	if _, err := s.loadBill(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListContributions(ctx, models.LedgerV1, id)
}
