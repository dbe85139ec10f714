package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/pkg/api"
)

const (
	TokenServiceListTokensProcedure   = "/billsplitter.v1.TokenService/ListTokens"
	TokenServiceGetBalanceProcedure   = "/billsplitter.v1.TokenService/GetBalance"
	TokenServiceGetAllowanceProcedure = "/billsplitter.v1.TokenService/GetAllowance"
	TokenServiceApproveProcedure      = "/billsplitter.v1.TokenService/Approve"
	TokenServiceFaucetProcedure       = "/billsplitter.v1.TokenService/Faucet"
)

// TokenServiceHandler is the token service.
type TokenServiceHandler interface {
	ListTokens(context.Context, *connect.Request[api.ListTokensRequest]) (*connect.Response[api.ListTokensResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetAllowance(context.Context, *connect.Request[api.GetAllowanceRequest]) (*connect.Response[api.GetAllowanceResponse], error)
	Approve(context.Context, *connect.Request[api.ApproveRequest]) (*connect.Response[api.ApproveResponse], error)
	Faucet(context.Context, *connect.Request[api.FaucetRequest]) (*connect.Response[api.FaucetResponse], error)
}

// NewTokenServiceHandler builds an HTTP handler from the service implementation.
func NewTokenServiceHandler(svc TokenServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, TokenServiceListTokensProcedure, svc.ListTokens, opt)
	route(mux, TokenServiceGetBalanceProcedure, svc.GetBalance, opt)
	route(mux, TokenServiceGetAllowanceProcedure, svc.GetAllowance, opt)
	route(mux, TokenServiceApproveProcedure, svc.Approve, opt)
	route(mux, TokenServiceFaucetProcedure, svc.Faucet, opt)
	return "/" + TokenServiceName + "/", mux
}

// TokenServicePublicProcedures need no session.
var TokenServicePublicProcedures = []string{
	TokenServiceListTokensProcedure,
}

// TokenServiceClient is a client for the token service.
type TokenServiceClient struct {
	listTokens   *connect.Client[api.ListTokensRequest, api.ListTokensResponse]
	getBalance   *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	getAllowance *connect.Client[api.GetAllowanceRequest, api.GetAllowanceResponse]
	approve      *connect.Client[api.ApproveRequest, api.ApproveResponse]
	faucet       *connect.Client[api.FaucetRequest, api.FaucetResponse]
}

// NewTokenServiceClient constructs a client for the token service.
func NewTokenServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TokenServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &TokenServiceClient{
		listTokens:   call[api.ListTokensRequest, api.ListTokensResponse](httpClient, baseURL, TokenServiceListTokensProcedure, opt),
		getBalance:   call[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL, TokenServiceGetBalanceProcedure, opt),
		getAllowance: call[api.GetAllowanceRequest, api.GetAllowanceResponse](httpClient, baseURL, TokenServiceGetAllowanceProcedure, opt),
		approve:      call[api.ApproveRequest, api.ApproveResponse](httpClient, baseURL, TokenServiceApproveProcedure, opt),
		faucet:       call[api.FaucetRequest, api.FaucetResponse](httpClient, baseURL, TokenServiceFaucetProcedure, opt),
	}
}

func (c *TokenServiceClient) ListTokens(ctx context.Context, req *connect.Request[api.ListTokensRequest]) (*connect.Response[api.ListTokensResponse], error) {
	return c.listTokens.CallUnary(ctx, req)
}

func (c *TokenServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *TokenServiceClient) GetAllowance(ctx context.Context, req *connect.Request[api.GetAllowanceRequest]) (*connect.Response[api.GetAllowanceResponse], error) {
	return c.getAllowance.CallUnary(ctx, req)
}

func (c *TokenServiceClient) Approve(ctx context.Context, req *connect.Request[api.ApproveRequest]) (*connect.Response[api.ApproveResponse], error) {
	return c.approve.CallUnary(ctx, req)
}

func (c *TokenServiceClient) Faucet(ctx context.Context, req *connect.Request[api.FaucetRequest]) (*connect.Response[api.FaucetResponse], error) {
	return c.faucet.CallUnary(ctx, req)
}
