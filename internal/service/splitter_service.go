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

// Ensure SplitterService implements the V1 handler interface
var _ apiconnect.SplitterServiceHandler = (*SplitterService)(nil)

// SplitterService exposes the V1 ledger over connect.
type SplitterService struct {
	presenter
	ledger *ledger.Splitter
	logger *slog.Logger
	now    func() time.Time
}

// NewSplitterService creates a SplitterService. tokens resolves decimals for
// display amounts.
func NewSplitterService(l *ledger.Splitter, tokens token.Registry, logger *slog.Logger) *SplitterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitterService{
		presenter: presenter{tokens: tokens},
		ledger:    l,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBill registers a bill for the caller.
func (s *SplitterService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := billIDOrDerive(req.Msg.Id, caller, s.now())
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("share_price", req.Msg.SharePrice)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.CreateBill(ctx, caller, id, price, req.Msg.TotalShares, req.Msg.Description); err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateBillResponse{Bill: bill}), nil
}

// PayBill pays shares of a bill from the caller's wallet.
func (s *SplitterService) PayBill(ctx context.Context, req *connect.Request[api.PayBillRequest]) (*connect.Response[api.PayBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}

	payment, err := s.ledger.PayBill(ctx, caller, id, req.Msg.ShareCount)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.PayBillResponse{Payment: paymentToAPI(payment), Bill: bill}), nil
}

// CloseBill settles a bill early.
func (s *SplitterService) CloseBill(ctx context.Context, req *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error) {
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

// CancelBill cancels a bill and refunds its payers their gross
// contributions. The refunds are pulled from the creator, who must first
// approve the V1 contract address for the total; without that allowance the
// call fails with TransferFailed and nothing changes.
func (s *SplitterService) CancelBill(ctx context.Context, req *connect.Request[api.CancelBillRequest]) (*connect.Response[api.CancelBillResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}

	refunds, err := s.ledger.CancelBill(ctx, caller, id)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.loadBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CancelBillResponse{Bill: bill, Refunds: refundsToAPI(refunds)}), nil
}

// GetBill returns a bill.
func (s *SplitterService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
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
func (s *SplitterService) BillExists(ctx context.Context, req *connect.Request[api.BillExistsRequest]) (*connect.Response[api.BillExistsResponse], error) {
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

// GetContribution returns the shares one payer covered on a bill.
func (s *SplitterService) GetContribution(ctx context.Context, req *connect.Request[api.GetContributionRequest]) (*connect.Response[api.GetContributionResponse], error) {
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	payer, err := addressOrCaller(ctx, "payer", req.Msg.Payer)
	if err != nil {
		return nil, err
	}
	shares, err := s.ledger.Contribution(ctx, id, payer)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetContributionResponse{Shares: uint32(shares)}), nil
}

// ListPayers lists a bill's payers in first-payment order.
func (s *SplitterService) ListPayers(ctx context.Context, req *connect.Request[api.ListPayersRequest]) (*connect.Response[api.ListPayersResponse], error) {
	id, err := parseBillID(req.Msg.Id)
	if err != nil {
		return nil, err
	}
	payers, err := s.ledger.Payers(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Contribution, 0, len(payers))
	for _, p := range payers {
		out = append(out, &api.Contribution{Payer: p.Payer.Hex(), Shares: uint32(p.Shares)})
	}
	return connect.NewResponse(&api.ListPayersResponse{Payers: out}), nil
}

// ListBills lists a creator's bills, newest first. The creator defaults to
// the caller.
func (s *SplitterService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
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

// ListBillEvents pages through the ledger's event log.
func (s *SplitterService) ListBillEvents(ctx context.Context, req *connect.Request[api.ListBillEventsRequest]) (*connect.Response[api.ListBillEventsResponse], error) {
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

// GetLedgerInfo describes the V1 ledger.
func (s *SplitterService) GetLedgerInfo(ctx context.Context, req *connect.Request[api.GetLedgerInfoRequest]) (*connect.Response[api.GetLedgerInfoResponse], error) {
	info, err := ledgerInfoV1(ctx, s.ledger)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetLedgerInfoResponse{Info: info}), nil
}

func (s *SplitterService) loadBill(ctx context.Context, id models.BillID) (*api.Bill, error) {
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
