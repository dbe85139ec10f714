// Package apiconnect wires the billsplitter services to connect handlers and
// clients. Every handler and client speaks the api JSON codec.
package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/pkg/api"
)

const (
	// SplitterServiceName is the V1 ledger service.
	SplitterServiceName = "billsplitter.v1.SplitterService"
	// SplitterV2ServiceName is the V2 ledger service.
	SplitterV2ServiceName = "billsplitter.v2.SplitterService"
	// AdminServiceName covers ownership and fee administration of both ledgers.
	AdminServiceName = "billsplitter.v1.AdminService"
	// TokenServiceName exposes deployed tokens, balances, allowances and the faucet.
	TokenServiceName = "billsplitter.v1.TokenService"
	// AuthServiceName registers wallets and issues sessions.
	AuthServiceName = "billsplitter.v1.AuthService"
)

func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)...)
}

func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)...)
}

// route registers one unary procedure on mux.
func route[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opt connect.HandlerOption) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opt))
}

// call returns the client for one unary procedure.
func call[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opt connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opt)
}
