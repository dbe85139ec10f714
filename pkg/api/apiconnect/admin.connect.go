package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/pkg/api"
)

const (
	AdminServiceSetPlatformFeeProcedure    = "/billsplitter.v1.AdminService/SetPlatformFee"
	AdminServiceWithdrawFeesProcedure      = "/billsplitter.v1.AdminService/WithdrawFees"
	AdminServiceTransferOwnershipProcedure = "/billsplitter.v1.AdminService/TransferOwnership"
	AdminServiceRenounceOwnershipProcedure = "/billsplitter.v1.AdminService/RenounceOwnership"
)

// AdminServiceHandler is the ledger administration service.
type AdminServiceHandler interface {
	SetPlatformFee(context.Context, *connect.Request[api.SetPlatformFeeRequest]) (*connect.Response[api.SetPlatformFeeResponse], error)
	WithdrawFees(context.Context, *connect.Request[api.WithdrawFeesRequest]) (*connect.Response[api.WithdrawFeesResponse], error)
	TransferOwnership(context.Context, *connect.Request[api.TransferOwnershipRequest]) (*connect.Response[api.TransferOwnershipResponse], error)
	RenounceOwnership(context.Context, *connect.Request[api.RenounceOwnershipRequest]) (*connect.Response[api.RenounceOwnershipResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, AdminServiceSetPlatformFeeProcedure, svc.SetPlatformFee, opt)
	route(mux, AdminServiceWithdrawFeesProcedure, svc.WithdrawFees, opt)
	route(mux, AdminServiceTransferOwnershipProcedure, svc.TransferOwnership, opt)
	route(mux, AdminServiceRenounceOwnershipProcedure, svc.RenounceOwnership, opt)
	return "/" + AdminServiceName + "/", mux
}

// AdminServiceClient is a client for the administration service.
type AdminServiceClient struct {
	setPlatformFee    *connect.Client[api.SetPlatformFeeRequest, api.SetPlatformFeeResponse]
	withdrawFees      *connect.Client[api.WithdrawFeesRequest, api.WithdrawFeesResponse]
	transferOwnership *connect.Client[api.TransferOwnershipRequest, api.TransferOwnershipResponse]
	renounceOwnership *connect.Client[api.RenounceOwnershipRequest, api.RenounceOwnershipResponse]
}

// NewAdminServiceClient constructs a client for the administration service.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &AdminServiceClient{
		setPlatformFee:    call[api.SetPlatformFeeRequest, api.SetPlatformFeeResponse](httpClient, baseURL, AdminServiceSetPlatformFeeProcedure, opt),
		withdrawFees:      call[api.WithdrawFeesRequest, api.WithdrawFeesResponse](httpClient, baseURL, AdminServiceWithdrawFeesProcedure, opt),
		transferOwnership: call[api.TransferOwnershipRequest, api.TransferOwnershipResponse](httpClient, baseURL, AdminServiceTransferOwnershipProcedure, opt),
		renounceOwnership: call[api.RenounceOwnershipRequest, api.RenounceOwnershipResponse](httpClient, baseURL, AdminServiceRenounceOwnershipProcedure, opt),
	}
}

func (c *AdminServiceClient) SetPlatformFee(ctx context.Context, req *connect.Request[api.SetPlatformFeeRequest]) (*connect.Response[api.SetPlatformFeeResponse], error) {
	return c.setPlatformFee.CallUnary(ctx, req)
}

func (c *AdminServiceClient) WithdrawFees(ctx context.Context, req *connect.Request[api.WithdrawFeesRequest]) (*connect.Response[api.WithdrawFeesResponse], error) {
	return c.withdrawFees.CallUnary(ctx, req)
}

func (c *AdminServiceClient) TransferOwnership(ctx context.Context, req *connect.Request[api.TransferOwnershipRequest]) (*connect.Response[api.TransferOwnershipResponse], error) {
	return c.transferOwnership.CallUnary(ctx, req)
}

func (c *AdminServiceClient) RenounceOwnership(ctx context.Context, req *connect.Request[api.RenounceOwnershipRequest]) (*connect.Response[api.RenounceOwnershipResponse], error) {
	return c.renounceOwnership.CallUnary(ctx, req)
}
