package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/ledger"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
)

// Ensure AdminService implements the admin handler interface
var _ apiconnect.AdminServiceHandler = (*AdminService)(nil)

// ownable is the ownership surface both ledger versions share.
type ownable interface {
	TransferOwnership(ctx context.Context, caller, newOwner models.Address) error
	RenounceOwnership(ctx context.Context, caller models.Address) error
}

// AdminService exposes fee and ownership administration. The ledgers
// enforce ownership; this service only routes.
type AdminService struct {
	v1     *ledger.Splitter
	v2     *ledger.SplitterV2
	logger *slog.Logger
}

// NewAdminService creates an AdminService over both ledgers.
func NewAdminService(v1 *ledger.Splitter, v2 *ledger.SplitterV2, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{v1: v1, v2: v2, logger: logger}
}

// SetPlatformFee changes the V1 fee.
func (s *AdminService) SetPlatformFee(ctx context.Context, req *connect.Request[api.SetPlatformFeeRequest]) (*connect.Response[api.SetPlatformFeeResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Fee > uint32(ledger.MaxPlatformFee) {
		return nil, toConnectError(fmt.Errorf("%w: %d bps", ledger.ErrInvalidFee, req.Msg.Fee))
	}

	if err := s.v1.SetPlatformFee(ctx, caller, uint16(req.Msg.Fee)); err != nil {
		return nil, toConnectError(err)
	}

	info, err := ledgerInfoV1(ctx, s.v1)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SetPlatformFeeResponse{Info: info}), nil
}

// WithdrawFees pays out the V1 collected fees.
func (s *AdminService) WithdrawFees(ctx context.Context, req *connect.Request[api.WithdrawFeesRequest]) (*connect.Response[api.WithdrawFeesResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	to, err := addressOrCaller(ctx, "to", req.Msg.To)
	if err != nil {
		return nil, err
	}

	amount, err := s.v1.WithdrawFees(ctx, caller, to)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.WithdrawFeesResponse{Amount: amount.Dec()}), nil
}

// TransferOwnership hands a ledger to a new owner.
func (s *AdminService) TransferOwnership(ctx context.Context, req *connect.Request[api.TransferOwnershipRequest]) (*connect.Response[api.TransferOwnershipResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	target, version, err := s.target(req.Msg.Ledger)
	if err != nil {
		return nil, err
	}
	newOwner, err := models.ParseAddress(req.Msg.NewOwner)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("new_owner: %w", err))
	}

	if err := target.TransferOwnership(ctx, caller, newOwner); err != nil {
		return nil, toConnectError(err)
	}

	info, err := s.info(ctx, version)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.TransferOwnershipResponse{Info: info}), nil
}

// RenounceOwnership leaves a ledger without an owner.
func (s *AdminService) RenounceOwnership(ctx context.Context, req *connect.Request[api.RenounceOwnershipRequest]) (*connect.Response[api.RenounceOwnershipResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	target, version, err := s.target(req.Msg.Ledger)
	if err != nil {
		return nil, err
	}

	if err := target.RenounceOwnership(ctx, caller); err != nil {
		return nil, toConnectError(err)
	}

	info, err := s.info(ctx, version)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RenounceOwnershipResponse{Info: info}), nil
}

func (s *AdminService) target(name string) (ownable, models.Version, error) {
	version, err := models.ParseVersion(name)
	if err != nil {
		return nil, "", connect.NewError(connect.CodeInvalidArgument, err)
	}
	if version == models.LedgerV1 {
		return s.v1, version, nil
	}
	return s.v2, version, nil
}

func (s *AdminService) info(ctx context.Context, version models.Version) (*api.LedgerInfo, error) {
	var (
		info *api.LedgerInfo
		err  error
	)
	if version == models.LedgerV1 {
		info, err = ledgerInfoV1(ctx, s.v1)
	} else {
		info, err = ledgerInfoV2(ctx, s.v2)
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return info, nil
}
