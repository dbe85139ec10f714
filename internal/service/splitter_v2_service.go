package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/ledger"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
)

// Ensure SplitterV2Service implements the V2 handler interface
var _ apiconnect.SplitterV2ServiceHandler = (*SplitterV2Service)(nil)

// SplitterV2Service exposes the V2 ledger over connect.
type SplitterV2Service struct {
	presenter
	ledger *ledger.SplitterV2
	logger *slog.Logger
	now    func() time.Time
}

// NewSplitterV2Service creates a SplitterV2Service.
func NewSplitterV2Service(l *ledger.SplitterV2, tokens token.Registry, logger *slog.Logger) *SplitterV2Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitterV2Service{
		presenter: presenter{tokens: tokens},
		ledger:    l,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBill registers a bill in the token of the creator's choice.
func (s *SplitterV2Service) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillV2Request]) (*connect.Response[api.CreateBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := billIDOrDerive(req.Msg.Id, caller, s.now())
	if err != nil {
		return nil, err
	}
	tokenAddr, err := parseAddress("token", req.Msg.Token)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("share_price", req.Msg.SharePrice)
	if err != nil {
		return nil, err
	}

	err = s.ledger.CreateBill(ctx, caller, id, tokenAddr, price, req.Msg.TotalShares, req.Msg.InitialPaidShares, req.Msg.Description)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateBillResponse{Bill: bill}), nil
}

// PayBill pays shares straight to the creator.
func (s *SplitterV2Service) PayBill(ctx context.Context, req *connect.Request[api.PayBillV2Request]) (*connect.Response[api.PayBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	tokenAddr, err := parseAddress("token", req.Msg.Token)
	if err != nil {
		return nil, err
	}

	payment, err := s.ledger.PayBill(ctx, caller, id, tokenAddr, req.Msg.ShareCount)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.PayBillResponse{Payment: paymentToAPI(payment), Bill: bill}), nil
}

// CreatorSelfPayment records shares the creator covered off-ledger.
func (s *SplitterV2Service) CreatorSelfPayment(ctx context.Context, req *connect.Request[api.CreatorSelfPaymentRequest]) (*connect.Response[api.CreatorSelfPaymentResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}

	payment, err := s.ledger.CreatorSelfPayment(ctx, caller, id, req.Msg.ShareCount)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreatorSelfPaymentResponse{Payment: paymentToAPI(payment), Bill: bill}), nil
}

// UpdateBill replaces a bill's terms.
func (s *SplitterV2Service) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("share_price", req.Msg.SharePrice)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.UpdateBill(ctx, caller, id, price, req.Msg.TotalShares, req.Msg.Description); err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UpdateBillResponse{Bill: bill}), nil
}

// CloseBill closes a bill.
func (s *SplitterV2Service) CloseBill(ctx context.Context, req *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.CloseBill(ctx, caller, id); err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CloseBillResponse{Bill: bill}), nil
}

// GetBill returns a bill.
func (s *SplitterV2Service) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: bill}), nil
}

// BillExists reports whether an identifier is taken.
func (s *SplitterV2Service) BillExists(ctx context.Context, req *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error) {
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	exists, err := s.ledger.Exists(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.BillExistsResponse{Exists: exists}), nil
}

// ListBills lists a creator's bills, newest first.
func (s *SplitterV2Service) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	creator, err := addressOrCaller(ctx, "creator", req.Msg.Creator)
	if err != nil {
		return nil, err
	}
	bills, err := s.ledger.BillsByCreator(ctx, creator)
	if err != nil {
		return nil, toConnectError(err)
	}
	out, err := s.bills(ctx, bills)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: out}), nil
}

// ListBillEvents pages through the ledger's event log. V2 descriptions
// live only here.
func (s *SplitterV2Service) ListBillEvents(ctx context.Context, req *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error) {
	filter := models.EventFilter{AfterSeq: req.Msg.AfterSeq, Limit: eventLimit(req.Msg.Limit)}
	if req.Msg.Id != "" {
		id, err := parseBillID(req.Msg.Id)
		if err != nil {
			return nil, err
		}
		filter.BillID = id
	}

	evs, err := s.ledger.Events(ctx, filter)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListBillEventsResponse{Events: eventsToAPI(evs)}), nil
}

// GetLedgerInfo describes the V2 ledger.
func (s *SplitterV2Service) GetLedgerInfo(ctx context.Context, req *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error) {
	info, err := ledgerInfoV2(ctx, s.ledger)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetLedgerInfoResponse{Info: info}), nil
}

func (s *SplitterV2Service) loadBill(ctx context.Context, id models.BillID) (*api.Bill, error) {
	bill, err := s.ledger.Bill(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	out, err := s.bill(ctx, bill)
	if err != nil {
		s.logger.Error("Failed to render bill", "bill_id", id, "error", err)
		return nil, toConnectError(err)
	}
	return out, nil
}
