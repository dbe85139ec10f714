package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/pkg/api"
)

func TestTokenService(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	carol := models.MustAddress("0x00000000000000000000000000000000000000c3")

	list, err := env.tokens.ListTokens(ctx, connect.NewRequest(&api.ListTokensRequest{}))
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(list.Msg.Tokens) != 1 || list.Msg.Tokens[0].Symbol != "USDT" || list.Msg.Tokens[0].Decimals != 6 {
		t.Fatalf("Unexpected tokens %+v", list.Msg.Tokens)
	}

	t.Run("faucet defaults to the cap", func(t *testing.T) {
		resp, err := env.tokens.Faucet(ctx, as(carol, &api.FaucetRequest{Token: env.usdt}))
		if err != nil {
			t.Fatalf("Faucet failed: %v", err)
		}
		if resp.Msg.Balance != "1000000000" || resp.Msg.BalanceDisplay != "1000" {
			t.Errorf("Unexpected balance %s (%s)", resp.Msg.Balance, resp.Msg.BalanceDisplay)
		}
	})

	t.Run("faucet human amount", func(t *testing.T) {
		resp, err := env.tokens.Faucet(ctx, as(carol, &api.FaucetRequest{Token: env.usdt, Amount: "12.5"}))
		if err != nil {
			t.Fatalf("Faucet failed: %v", err)
		}
		if resp.Msg.BalanceDisplay != "1012.5" {
			t.Errorf("Expected 1012.5, got %s", resp.Msg.BalanceDisplay)
		}
	})

	t.Run("faucet above cap", func(t *testing.T) {
		_, err := env.tokens.Faucet(ctx, as(carol, &api.FaucetRequest{Token: env.usdt, Amount: "1000.000001"}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("Expected InvalidArgument, got %v", err)
		}
	})

	t.Run("faucet needs a session", func(t *testing.T) {
		_, err := env.tokens.Faucet(ctx, connect.NewRequest(&api.FaucetRequest{Token: env.usdt}))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("Expected Unauthenticated, got %v", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.tokens.GetBalance(ctx, as(carol, &api.GetBalanceRequest{Token: "0x00000000000000000000000000000000000000ff"}))
		if connect.CodeOf(err) != connect.CodeNotFound {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("approve and read allowance", func(t *testing.T) {
		env.approve(t, carol, env.contractV1, "42")

		resp, err := env.tokens.GetAllowance(ctx, as(carol, &api.GetAllowanceRequest{Token: env.usdt, Spender: env.contractV1}))
		if err != nil {
			t.Fatalf("GetAllowance failed: %v", err)
		}
		if resp.Msg.Allowance != "42" {
			t.Errorf("Expected allowance 42, got %s", resp.Msg.Allowance)
		}
	})

	t.Run("approve zero spender", func(t *testing.T) {
		_, err := env.tokens.Approve(ctx, as(carol, &api.ApproveRequest{Token: env.usdt, Spender: models.Address{}.Hex(), Amount: "1"}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("Expected InvalidArgument, got %v", err)
		}
	})
}
