package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
	"github.com/mmynk/billsplitter/internal/token"
)

// SplitterV2 is the V2 ledger. Each bill picks its token at creation,
// payments go straight from payer to creator with no fee, and the creator
// can declare shares paid without moving tokens. Bills end Closed; there is
// no refund path.
type SplitterV2 struct {
	*core
	tokens token.Registry
}

// NewSplitterV2 opens the V2 ledger over store, creating its admin record
// on first start.
func NewSplitterV2(ctx context.Context, store storage.Store, tokens token.Registry, opts Options) (*SplitterV2, error) {
	c := newCore(models.LedgerV2, store, opts)
	if _, err := c.bootstrap(ctx, models.Admin{Owner: opts.Owner}); err != nil {
		return nil, err
	}
	return &SplitterV2{core: c, tokens: tokens}, nil
}

// CreateBill registers a bill denominated in tokenAddr. initialPaidShares
// are covered by the creator without a transfer; when they reach
// totalShares the bill is closed in the same call. The description is only
// carried by the event.
func (s *SplitterV2) CreateBill(ctx context.Context, creator models.Address, id models.BillID, tokenAddr models.Address, sharePrice *uint256.Int, totalShares, initialPaidShares uint32, description string) error {
	return s.execute(ctx, "CreateBill", creator, id, func(ctx context.Context, t *tx) error {
		if err := s.requireNew(ctx, id); err != nil {
			return err
		}
		if err := validateTerms(sharePrice, totalShares); err != nil {
			return err
		}
		if _, err := s.resolve(ctx, tokenAddr); err != nil {
			return err
		}

		paid := min(initialPaidShares, totalShares)
		bill := &models.Bill{
			ID:            id,
			Ledger:        models.LedgerV2,
			Creator:       creator,
			Token:         tokenAddr,
			TotalShares:   uint8(totalShares),
			PaidShares:    uint8(paid),
			InitialShares: uint8(paid),
			Status:        models.StatusActive,
			CreatedAt:     t.at,
		}
		bill.SharePrice.Set(sharePrice)
		closed := s.closeIfPaid(bill)
		if err := s.store.CreateBill(ctx, bill); err != nil {
			return err
		}

		t.emit(models.Event{
			Kind:        models.EventBillCreated,
			BillID:      id,
			Account:     creator,
			Token:       tokenAddr,
			SharePrice:  sharePrice.Dec(),
			TotalShares: bill.TotalShares,
			PaidShares:  bill.PaidShares,
			Description: description,
		})
		if closed {
			t.emit(models.Event{Kind: models.EventBillClosed, BillID: id})
		}
		return nil
	})
}

// PayBill pays shareCount shares of a bill in tokenAddr, which must be the
// bill's token. The payer must have approved the ledger's contract address;
// the full amount goes to the creator.
func (s *SplitterV2) PayBill(ctx context.Context, payer models.Address, id models.BillID, tokenAddr models.Address, shareCount uint32) (*Payment, error) {
	var payment *Payment
	err := s.execute(ctx, "PayBill", payer, id, func(ctx context.Context, t *tx) error {
		bill, err := s.activeBill(ctx, id)
		if err != nil {
			return err
		}
		if tokenAddr != bill.Token {
			return fmt.Errorf("%w: bill is denominated in %s, got %s", ErrTokenMismatch, bill.Token, tokenAddr)
		}
		if err := checkPayable(bill, shareCount); err != nil {
			return err
		}

		shares := uint8(shareCount)
		amount, err := shareAmount(bill, shares)
		if err != nil {
			return err
		}
		tok, err := s.resolve(ctx, bill.Token)
		if err != nil {
			return err
		}

		bill.PaidShares += shares
		closed := s.closeIfPaid(bill)
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}

		if err := tok.TransferFrom(ctx, s.contract, payer, bill.Creator, amount); err != nil {
			return transferFailed("pay creator", err)
		}

		t.emit(models.Event{
			Kind:    models.EventPaymentMade,
			BillID:  id,
			Account: payer,
			Token:   bill.Token,
			Shares:  shares,
			Amount:  amount.Dec(),
		})
		if closed {
			t.emit(models.Event{Kind: models.EventBillClosed, BillID: id})
		}

		payment = &Payment{
			BillID: id,
			Payer:  payer,
			Shares: shares,
			Amount: amount,
			Fee:    new(uint256.Int),
			Net:    amount.Clone(),
			Closed: closed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatorSelfPayment marks shareCount shares as covered by the creator.
// No tokens move.
func (s *SplitterV2) CreatorSelfPayment(ctx context.Context, caller models.Address, id models.BillID, shareCount uint32) (*Payment, error) {
	var payment *Payment
	err := s.execute(ctx, "CreatorSelfPayment", caller, id, func(ctx context.Context, t *tx) error {
		bill, err := s.creatorBill(ctx, caller, id)
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

		bill.PaidShares += shares
		closed := s.closeIfPaid(bill)
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}

		t.emit(models.Event{
			Kind:        models.EventPaymentMade,
			BillID:      id,
			Account:     caller,
			Token:       bill.Token,
			Shares:      shares,
			Amount:      amount.Dec(),
			SelfPayment: true,
		})
		if closed {
			t.emit(models.Event{Kind: models.EventBillClosed, BillID: id})
		}

		payment = &Payment{
			BillID:      id,
			Payer:       caller,
			Shares:      shares,
			Amount:      amount,
			Fee:         new(uint256.Int),
			Net:         new(uint256.Int),
			SelfPayment: true,
			Closed:      closed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateBill replaces the share price and share count of an active bill.
// The new count may not drop below the shares already paid; if it equals
// them the bill closes.
func (s *SplitterV2) UpdateBill(ctx context.Context, caller models.Address, id models.BillID, sharePrice *uint256.Int, totalShares uint32, description string) error {
	return s.execute(ctx, "UpdateBill", caller, id, func(ctx context.Context, t *tx) error {
		bill, err := s.creatorBill(ctx, caller, id)
		if err != nil {
			return err
		}
		if err := validateTerms(sharePrice, totalShares); err != nil {
			return err
		}
		if totalShares < uint32(bill.PaidShares) {
			return fmt.Errorf("%w: %d shares already paid", ErrInvalidShares, bill.PaidShares)
		}

		bill.SharePrice.Set(sharePrice)
		bill.TotalShares = uint8(totalShares)
		closed := s.closeIfPaid(bill)
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}

		t.emit(models.Event{
			Kind:        models.EventBillUpdated,
			BillID:      id,
			SharePrice:  sharePrice.Dec(),
			TotalShares: bill.TotalShares,
			Description: description,
		})
		if closed {
			t.emit(models.Event{Kind: models.EventBillClosed, BillID: id})
		}
		return nil
	})
}

// CloseBill ends a bill whether or not it is fully paid. Nothing is
// refunded.
func (s *SplitterV2) CloseBill(ctx context.Context, caller models.Address, id models.BillID) error {
	return s.execute(ctx, "CloseBill", caller, id, func(ctx context.Context, t *tx) error {
		bill, err := s.creatorBill(ctx, caller, id)
		if err != nil {
			return err
		}

		bill.Status = models.StatusClosed
		if err := s.store.UpdateBill(ctx, bill); err != nil {
			return err
		}
		t.emit(models.Event{Kind: models.EventBillClosed, BillID: id})
		return nil
	})
}

// creatorBill loads an active bill the caller created.
func (s *SplitterV2) creatorBill(ctx context.Context, caller models.Address, id models.BillID) (*models.Bill, error) {
	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Creator != caller {
		return nil, fmt.Errorf("%w: %s is not the creator", ErrOnlyCreator, caller)
	}
	if bill.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrBillNotActive, id, bill.Status)
	}
	return bill, nil
}

func (s *SplitterV2) closeIfPaid(bill *models.Bill) bool {
	if !bill.FullyPaid() {
		return false
	}
	bill.Status = models.StatusClosed
	return true
}

func (s *SplitterV2) resolve(ctx context.Context, addr models.Address) (token.Token, error) {
	if addr.IsZero() {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidToken)
	}
	tok, err := s.tokens.Lookup(ctx, addr)
	if errors.Is(err, token.ErrUnknownToken) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err != nil {
		return nil, err
	}
	return tok, nil
}
