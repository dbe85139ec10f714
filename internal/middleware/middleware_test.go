package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/auth"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	whoamiProcedure = "/test.v1.TestService/WhoAmI"
	publicProcedure = "/test.v1.TestService/Public"
)

var wallet = models.MustAddress("0x00000000000000000000000000000000000000a1")

// whoami echoes the caller found in the context.
func whoami(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	resp := &api.GetCurrentUserResponse{}
	if caller, ok := GetCaller(ctx); ok {
		resp.Account = &api.Account{Address: caller.Hex()}
	}
	return connect.NewResponse(resp), nil
}

type observation struct {
	procedure, code string
}

type recordingObserver struct {
	mu  sync.Mutex
	got []observation
}

func (o *recordingObserver) ObserveRPC(procedure, code string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{procedure, code})
}

func setupServer(t *testing.T, jwtManager *auth.JWTManager, observer RPCObserver) (whoamiClient, publicClient *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]) {
	t.Helper()

	opts := connect.WithHandlerOptions(
		connect.WithCodec(api.Codec{}),
		connect.WithInterceptors(
			MetricsInterceptor(observer),
			RequireAuth(jwtManager, publicProcedure),
			LoggingInterceptor(nil),
		),
	)

	mux := http.NewServeMux()
	mux.Handle(whoamiProcedure, connect.NewUnaryHandler(whoamiProcedure, whoami, opts))
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, whoami, opts))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	whoamiClient = connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](
		server.Client(), server.URL+whoamiProcedure, connect.WithCodec(api.Codec{}))
	publicClient = connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](
		server.Client(), server.URL+publicProcedure, connect.WithCodec(api.Codec{}))
	return whoamiClient, publicClient
}

func bearer(token string) *connect.Request[api.GetCurrentUserRequest] {
	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	observer := &recordingObserver{}
	whoamiClient, publicClient := setupServer(t, jwtManager, observer)
	ctx := context.Background()

	token, err := jwtManager.Generate(models.NewAccount(wallet, "Alice", ""))
	require.NoError(t, err)

	t.Run("valid token sets caller", func(t *testing.T) {
		resp, err := whoamiClient.CallUnary(ctx, bearer(token))
		require.NoError(t, err)
		require.NotNil(t, resp.Msg.Account)
		assert.Equal(t, wallet.Hex(), resp.Msg.Account.Address)
	})

	t.Run("missing token is unauthenticated", func(t *testing.T) {
		_, err := whoamiClient.CallUnary(ctx, bearer(""))
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("malformed header is unauthenticated", func(t *testing.T) {
		req := bearer("")
		req.Header().Set("Authorization", "Token abc")
		_, err := whoamiClient.CallUnary(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("token signed with another secret is unauthenticated", func(t *testing.T) {
		forged, err := auth.NewJWTManager("other", time.Hour).Generate(models.NewAccount(wallet, "Mallory", ""))
		require.NoError(t, err)
		_, err = whoamiClient.CallUnary(ctx, bearer(forged))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("public procedure without token has no caller", func(t *testing.T) {
		resp, err := publicClient.CallUnary(ctx, bearer(""))
		require.NoError(t, err)
		assert.Nil(t, resp.Msg.Account)
	})

	t.Run("public procedure with token has caller", func(t *testing.T) {
		resp, err := publicClient.CallUnary(ctx, bearer(token))
		require.NoError(t, err)
		require.NotNil(t, resp.Msg.Account)
		assert.Equal(t, wallet.Hex(), resp.Msg.Account.Address)
	})

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.NotEmpty(t, observer.got)
	assert.Equal(t, observation{whoamiProcedure, "ok"}, observer.got[0])
	assert.Equal(t, observation{whoamiProcedure, connect.CodeUnauthenticated.String()}, observer.got[1])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Close()

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/billsplitter.v1.SplitterService/PayBill", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:5000", ""))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:5001", ""))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5002", ""))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, request("10.0.0.2:5000", ""))

	// Forwarded requests are keyed by the original client.
	assert.Equal(t, http.StatusOK, request("10.0.0.1:5003", "192.168.1.7, 10.0.0.1"))
}

func TestRateLimiter_ConnectClientSeesResourceExhausted(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()

	mux := http.NewServeMux()
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, whoami, connect.WithCodec(api.Codec{})))
	server := httptest.NewServer(rl.Handler(mux))
	defer server.Close()

	client := connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](
		server.Client(), server.URL+publicProcedure, connect.WithCodec(api.Codec{}))

	_, err := client.CallUnary(context.Background(), bearer(""))
	require.NoError(t, err)

	_, err = client.CallUnary(context.Background(), bearer(""))
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, connect.CodeResourceExhausted, connectErr.Code())
}
