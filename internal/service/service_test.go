package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/ledger"
	"github.com/mmynk/billsplitter/internal/middleware"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage/sqlite"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
)

// callerHeader names the wallet a test request runs as.
const callerHeader = "X-Test-Caller"

var (
	owner = models.MustAddress("0x00000000000000000000000000000000000000aa")
	alice = models.MustAddress("0x00000000000000000000000000000000000000a1")
	bob   = models.MustAddress("0x00000000000000000000000000000000000000b2")
)

// testAuthInterceptor returns a Connect interceptor that sets the caller from
// the test header.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if h := req.Header().Get(callerHeader); h != "" {
				if caller, err := models.ParseAddress(h); err == nil {
					ctx = middleware.WithCaller(ctx, caller)
				}
			}
			return next(ctx, req)
		}
	}
}

// as builds a request sent by caller.
func as[T any](caller models.Address, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(callerHeader, caller.Hex())
	return req
}

type testEnv struct {
	v1     *apiconnect.SplitterServiceClient
	v2     *apiconnect.SplitterV2ServiceClient
	admin  *apiconnect.AdminServiceClient
	tokens *apiconnect.TokenServiceClient

	usdt       string
	contractV1 string
	contractV2 string
}

// setupTestServer creates a test server over a temp SQLite database with
// USDT deployed and 1000 USDT minted to alice and bob.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	bank := token.NewBank(store)
	usdt, err := bank.Deploy(ctx, token.Meta{Name: "Tether USD", Symbol: "USDT", Decimals: 6})
	if err != nil {
		t.Fatalf("failed to deploy token: %v", err)
	}
	for _, account := range []models.Address{alice, bob} {
		if err := usdt.Mint(ctx, account, uint256.NewInt(1000_000000)); err != nil {
			t.Fatalf("failed to mint: %v", err)
		}
	}

	v1, err := ledger.NewSplitter(ctx, store, usdt, ledger.Options{Owner: owner, PlatformFee: ledger.DefaultPlatformFee})
	if err != nil {
		t.Fatalf("failed to open v1 ledger: %v", err)
	}
	v2, err := ledger.NewSplitterV2(ctx, store, bank, ledger.Options{Owner: owner})
	if err != nil {
		t.Fatalf("failed to open v2 ledger: %v", err)
	}

	authInterceptor := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSplitterServiceHandler(NewSplitterService(v1, bank, nil), authInterceptor))
	mux.Handle(apiconnect.NewSplitterV2ServiceHandler(NewSplitterV2Service(v2, bank, nil), authInterceptor))
	mux.Handle(apiconnect.NewAdminServiceHandler(NewAdminService(v1, v2, nil), authInterceptor))
	mux.Handle(apiconnect.NewTokenServiceHandler(NewTokenService(bank, "1000", nil), authInterceptor))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		v1:         apiconnect.NewSplitterServiceClient(http.DefaultClient, server.URL),
		v2:         apiconnect.NewSplitterV2ServiceClient(http.DefaultClient, server.URL),
		admin:      apiconnect.NewAdminServiceClient(http.DefaultClient, server.URL),
		tokens:     apiconnect.NewTokenServiceClient(http.DefaultClient, server.URL),
		usdt:       usdt.Address().Hex(),
		contractV1: v1.Contract().Hex(),
		contractV2: v2.Contract().Hex(),
	}
}

// expectLedgerError checks the connect code and the Ledger-Error header.
func expectLedgerError(t *testing.T, err error, code connect.Code, name string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", name)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != code {
		t.Errorf("expected code %v, got %v (%v)", code, connectErr.Code(), err)
	}
	if got := connectErr.Meta().Get(middleware.LedgerErrorHeader); got != name {
		t.Errorf("expected ledger error %q, got %q", name, got)
	}
}

func (e *testEnv) approve(t *testing.T, from models.Address, spender, amount string) {
	t.Helper()
	_, err := e.tokens.Approve(context.Background(), as(from, &api.ApproveRequest{
		Token:   e.usdt,
		Spender: spender,
		Amount:  amount,
	}))
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
}

func (e *testEnv) balance(t *testing.T, account models.Address) string {
	t.Helper()
	resp, err := e.tokens.GetBalance(context.Background(), connect.NewRequest(&api.GetBalanceRequest{
		Token:   e.usdt,
		Account: account.Hex(),
	}))
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	return resp.Msg.Balance
}
