package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/auth"
	"github.com/mmynk/billsplitter/internal/calculator"
	"github.com/mmynk/billsplitter/internal/ledger"
	"github.com/mmynk/billsplitter/internal/middleware"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// requireCaller returns the wallet the session belongs to.
func requireCaller(ctx context.Context) (models.Address, error) {
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		return models.Address{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return caller, nil
}

// addressOrCaller parses s, falling back to the caller when s is empty.
func addressOrCaller(ctx context.Context, field, s string) (models.Address, error) {
	if s == "" {
		return requireCaller(ctx)
	}
	return parseAddress(field, s)
}

func parseAddress(field, s string) (models.Address, error) {
	addr, err := models.ParseAddress(s)
	if err != nil {
		return models.Address{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
	}
	return addr, nil
}

func parseBillID(s string) (models.BillID, error) {
	id, err := models.ParseBillID(s)
	if err != nil {
		return models.BillID{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return id, nil
}

// billIDOrDerive parses s, or derives a fresh identifier from the creator,
// the clock and a random nonce when s is empty.
func billIDOrDerive(s string, creator models.Address, now time.Time) (models.BillID, error) {
	if s != "" {
		return parseBillID(s)
	}
	nonce := uuid.New()
	return models.DeriveBillID(creator, now, nonce[:]), nil
}

// parseAmount reads a base-10 smallest-unit amount.
func parseAmount(field, s string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: invalid amount %q: %w", field, s, err))
	}
	return amount, nil
}

func eventLimit(limit uint32) int {
	switch {
	case limit == 0:
		return defaultEventLimit
	case limit > maxEventLimit:
		return maxEventLimit
	}
	return int(limit)
}

// toConnectError maps a ledger or token error to a connect error. Ledger
// errors carry their name in the Ledger-Error header.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) {
		ce := connect.NewError(codeForKind(ledgerErr.Kind), err)
		ce.Meta().Set(middleware.LedgerErrorHeader, ledgerErr.Name)
		return ce
	}

	switch {
	case errors.Is(err, token.ErrUnknownToken):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, token.ErrZeroAddress):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, token.ErrInsufficientBalance), errors.Is(err, token.ErrInsufficientAllowance):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func codeForKind(kind ledger.Kind) connect.Code {
	switch kind {
	case ledger.KindNotFound:
		return connect.CodeNotFound
	case ledger.KindConflict:
		return connect.CodeAlreadyExists
	case ledger.KindInvalidParameter, ledger.KindQuantity, ledger.KindAssetMismatch:
		return connect.CodeInvalidArgument
	case ledger.KindStateViolation, ledger.KindTransfer:
		return connect.CodeFailedPrecondition
	case ledger.KindAuthorization:
		return connect.CodePermissionDenied
	case ledger.KindReentrancy:
		return connect.CodeAborted
	}
	return connect.CodeInternal
}

func timestamp(unix int64) *timestamppb.Timestamp {
	if unix == 0 {
		return nil
	}
	return timestamppb.New(time.Unix(unix, 0))
}

// presenter renders ledger state with token decimals.
type presenter struct {
	tokens token.Registry
}

func (p presenter) decimals(ctx context.Context, addr models.Address) (uint8, error) {
	tok, err := p.tokens.Lookup(ctx, addr)
	if err != nil {
		return 0, err
	}
	return tok.Decimals(ctx)
}

func (p presenter) bill(ctx context.Context, b *models.Bill) (*api.Bill, error) {
	decimals, err := p.decimals(ctx, b.Token)
	if err != nil {
		return nil, err
	}
	// Stored terms were bounds-checked at creation, so these cannot overflow.
	total, _ := calculator.ShareAmount(&b.SharePrice, b.TotalShares)
	paid, _ := calculator.ShareAmount(&b.SharePrice, b.PaidShares)
	remaining, _ := calculator.ShareAmount(&b.SharePrice, b.RemainingShares())

	return &api.Bill{
		Id:                b.ID.Hex(),
		Ledger:            string(b.Ledger),
		Creator:           b.Creator.Hex(),
		Token:             b.Token.Hex(),
		SharePrice:        b.SharePrice.Dec(),
		SharePriceDisplay: calculator.FormatUnits(&b.SharePrice, decimals),
		TotalShares:       uint32(b.TotalShares),
		PaidShares:        uint32(b.PaidShares),
		RemainingShares:   uint32(b.RemainingShares()),
		TotalAmount:       total.Dec(),
		PaidAmount:        paid.Dec(),
		RemainingAmount:   remaining.Dec(),
		Status:            b.Status.String(),
		StatusCode:        uint32(b.Status.Code()),
		Description:       b.Description,
		CreatedAt:         timestamp(b.CreatedAt),
		SettledAt:         timestamp(b.SettledAt),
	}, nil
}

func (p presenter) bills(ctx context.Context, bs []*models.Bill) ([]*api.Bill, error) {
	out := make([]*api.Bill, 0, len(bs))
	for _, b := range bs {
		v, err := p.bill(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func paymentToAPI(p *ledger.Payment) *api.Payment {
	return &api.Payment{
		BillId:      p.BillID.Hex(),
		Payer:       p.Payer.Hex(),
		Shares:      uint32(p.Shares),
		Amount:      p.Amount.Dec(),
		Fee:         p.Fee.Dec(),
		Net:         p.Net.Dec(),
		SelfPayment: p.SelfPayment,
		Closed:      p.Closed,
	}
}

func refundsToAPI(refunds []calculator.Refund) []*api.Refund {
	out := make([]*api.Refund, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, &api.Refund{Payer: r.Payer.Hex(), Shares: uint32(r.Shares), Amount: r.Amount.Dec()})
	}
	return out
}

func eventsToAPI(evs []models.Event) []*api.Event {
	out := make([]*api.Event, 0, len(evs))
	for _, ev := range evs {
		e := &api.Event{
			Id:          ev.ID,
			Seq:         ev.Seq,
			Ledger:      string(ev.Ledger),
			Kind:        string(ev.Kind),
			SharePrice:  ev.SharePrice,
			Amount:      ev.Amount,
			Fee:         ev.Fee,
			TotalShares: uint32(ev.TotalShares),
			PaidShares:  uint32(ev.PaidShares),
			Shares:      uint32(ev.Shares),
			PlatformFee: uint32(ev.PlatformFee),
			SelfPayment: ev.SelfPayment,
			Description: ev.Description,
			CreatedAt:   timestamp(ev.CreatedAt),
		}
		if !ev.BillID.IsZero() {
			e.BillId = ev.BillID.Hex()
		}
		if !ev.Account.IsZero() {
			e.Account = ev.Account.Hex()
		}
		if !ev.PreviousOwner.IsZero() {
			e.PreviousOwner = ev.PreviousOwner.Hex()
		}
		if !ev.Token.IsZero() {
			e.Token = ev.Token.Hex()
		}
		out = append(out, e)
	}
	return out
}

func accountToAPI(a *models.Account) *api.Account {
	return &api.Account{
		Address:     a.Address.Hex(),
		DisplayName: a.DisplayName,
		CreatedAt:   timestamp(a.CreatedAt),
	}
}

func ledgerInfoV1(ctx context.Context, l *ledger.Splitter) (*api.LedgerInfo, error) {
	owner, err := l.Owner(ctx)
	if err != nil {
		return nil, err
	}
	fee, err := l.PlatformFee(ctx)
	if err != nil {
		return nil, err
	}
	collected, err := l.CollectedFees(ctx)
	if err != nil {
		return nil, err
	}
	return &api.LedgerInfo{
		Ledger:        string(l.Ledger()),
		Version:       l.Version(),
		Contract:      l.Contract().Hex(),
		Owner:         owner.Hex(),
		Token:         l.Token().Hex(),
		PlatformFee:   uint32(fee),
		CollectedFees: collected.Dec(),
	}, nil
}

func ledgerInfoV2(ctx context.Context, l *ledger.SplitterV2) (*api.LedgerInfo, error) {
	owner, err := l.Owner(ctx)
	if err != nil {
		return nil, err
	}
	return &api.LedgerInfo{
		Ledger:   string(l.Ledger()),
		Contract: l.Contract().Hex(),
		Owner:    owner.Hex(),
	}, nil
}
