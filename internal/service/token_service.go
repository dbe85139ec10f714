package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/calculator"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
)

// Ensure TokenService implements the token handler interface
var _ apiconnect.TokenServiceHandler = (*TokenService)(nil)

// TokenService exposes the deployed tokens: balances, allowances, approvals
// and the testnet faucet.
type TokenService struct {
	bank      *token.Bank
	faucetCap string
	logger    *slog.Logger
}

// NewTokenService creates a TokenService. faucetCap is the largest human
// amount one faucet call may mint and the default when none is given.
func NewTokenService(bank *token.Bank, faucetCap string, logger *slog.Logger) *TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenService{bank: bank, faucetCap: faucetCap, logger: logger}
}

// ListTokens lists every deployed token.
func (s *TokenService) ListTokens(ctx context.Context, req *connect.Request[api.ListTokensRequest]) (*connect.Response[api.ListTokensResponse], error) {
	metas, err := s.bank.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Token, 0, len(metas))
	for _, m := range metas {
		out = append(out, &api.Token{
			Address:  m.Address.Hex(),
			Name:     m.Name,
			Symbol:   m.Symbol,
			Decimals: uint32(m.Decimals),
		})
	}
	return connect.NewResponse(&api.ListTokensResponse{Tokens: out}), nil
}

// GetBalance returns an account's balance, defaulting to the caller.
func (s *TokenService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	tok, err := s.lookup(ctx, req.Msg.Token)
	if err != nil {
		return nil, err
	}
	account, err := addressOrCaller(ctx, "account", req.Msg.Account)
	if err != nil {
		return nil, err
	}

	balance, err := tok.BalanceOf(ctx, account)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalanceResponse{
		Balance:        balance.Dec(),
		BalanceDisplay: calculator.FormatUnits(balance, tok.Meta().Decimals),
	}), nil
}

// GetAllowance returns what spender may still pull from owner.
func (s *TokenService) GetAllowance(ctx context.Context, req *connect.Request[api.GetAllowanceRequest]) (*connect.Response[api.GetAllowanceResponse], error) {
	tok, err := s.lookup(ctx, req.Msg.Token)
	if err != nil {
		return nil, err
	}
	owner, err := addressOrCaller(ctx, "owner", req.Msg.Owner)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddress("spender", req.Msg.Spender)
	if err != nil {
		return nil, err
	}

	allowance, err := tok.Allowance(ctx, owner, spender)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetAllowanceResponse{Allowance: allowance.Dec()}), nil
}

// Approve sets the caller's allowance for spender.
func (s *TokenService) Approve(ctx context.Context, req *connect.Request[api.ApproveRequest]) (*connect.Response[api.ApproveResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := s.lookup(ctx, req.Msg.Token)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddress("spender", req.Msg.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, err
	}

	if err := tok.Approve(ctx, caller, spender, amount); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Allowance set", "token", tok.Address(), "owner", caller, "spender", spender, "amount", amount.Dec())
	return connect.NewResponse(&api.ApproveResponse{Allowance: amount.Dec()}), nil
}

// Faucet mints testnet tokens to the caller.
func (s *TokenService) Faucet(ctx context.Context, req *connect.Request[api.FaucetRequest]) (*connect.Response[api.FaucetResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := s.lookup(ctx, req.Msg.Token)
	if err != nil {
		return nil, err
	}

	decimals := tok.Meta().Decimals
	limit, err := calculator.ParseUnits(s.faucetCap, decimals)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("faucet cap: %w", err))
	}
	amount := limit
	if req.Msg.Amount != "" {
		if amount, err = calculator.ParseUnits(req.Msg.Amount, decimals); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	if amount.IsZero() || amount.Gt(limit) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("faucet amount must be within (0, %s]", s.faucetCap))
	}

	if err := s.bank.Faucet(ctx, tok.Address(), caller, amount); err != nil {
		return nil, toConnectError(err)
	}

	balance, err := tok.BalanceOf(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.FaucetResponse{
		Balance:        balance.Dec(),
		BalanceDisplay: calculator.FormatUnits(balance, decimals),
	}), nil
}

func (s *TokenService) lookup(ctx context.Context, addr string) (*token.ERC20, error) {
	a, err := parseAddress("token", addr)
	if err != nil {
		return nil, err
	}
	tok, err := s.bank.ERC20(ctx, a)
	if err != nil {
		return nil, toConnectError(err)
	}
	return tok, nil
}
