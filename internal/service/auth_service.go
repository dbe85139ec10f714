package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/auth"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
)

// Ensure AuthService implements the auth handler interface
var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	accounts      storage.AccountStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, accounts storage.AccountStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		accounts:      accounts,
		logger:        logger,
	}
}

// Register creates an account for a wallet address.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "address", req.Msg.Address)

	if req.Msg.DisplayName == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("display_name required"))
	}
	address, err := parseAddress("address", req.Msg.Address)
	if err != nil {
		return nil, err
	}

	account, err := s.authenticator.Register(ctx, address, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "address", address, "error", err)
		switch {
		case errors.Is(err, auth.ErrAddressExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrZeroAddress):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		case errors.Is(err, auth.ErrReservedAddress):
			return nil, connect.NewError(connect.CodePermissionDenied, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "address", address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Account registered", "address", address)
	return connect.NewResponse(&api.RegisterResponse{Account: accountToAPI(account), Token: token}), nil
}

// Login authenticates a wallet and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if req.Msg.Address == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}
	address, err := models.ParseAddress(req.Msg.Address)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	account, err := s.authenticator.Authenticate(ctx, address, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "address", address, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "address", address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Account logged in", "address", address)
	return connect.NewResponse(&api.LoginResponse{Account: accountToAPI(account), Token: token}), nil
}

// Logout is a no-op: sessions are stateless JWTs the client discards.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the caller's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccount(ctx, caller)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if account == nil {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("account not found"))
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{Account: accountToAPI(account)}), nil
}

// ownedLedger is what SystemAddresses needs from a ledger.
type ownedLedger interface {
	Contract() models.Address
	Owner(ctx context.Context) (models.Address, error)
}

// SystemAddresses reports the addresses no wallet may self-register:
// deployed tokens, ledger custody addresses and the current ledger owners.
func SystemAddresses(bank *token.Bank, ledgers ...ownedLedger) auth.ReservedFunc {
	return func(ctx context.Context, address models.Address) (bool, error) {
		_, err := bank.ERC20(ctx, address)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, token.ErrUnknownToken) {
			return false, err
		}
		for _, l := range ledgers {
			if l.Contract() == address {
				return true, nil
			}
			owner, err := l.Owner(ctx)
			if err != nil {
				return false, err
			}
			if owner == address {
				return true, nil
			}
		}
		return false, nil
	}
}
