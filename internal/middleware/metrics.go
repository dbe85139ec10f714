package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
)

// LedgerErrorHeader carries the ledger error name (e.g. "BillNotActive")
// on failed responses.
const LedgerErrorHeader = "Ledger-Error"

// RPCObserver receives the outcome of every RPC.
type RPCObserver interface {
	ObserveRPC(procedure, code string, d time.Duration)
}

// MetricsInterceptor reports each call's procedure, result code and latency.
func MetricsInterceptor(observer RPCObserver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			observer.ObserveRPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}
