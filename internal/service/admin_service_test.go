package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/pkg/api"
)

func TestAdminService_Fees(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.admin.SetPlatformFee(ctx, as(bob, &api.SetPlatformFeeRequest{Fee: 200}))
	expectLedgerError(t, err, connect.CodePermissionDenied, "OwnableUnauthorizedAccount")

	_, err = env.admin.SetPlatformFee(ctx, as(owner, &api.SetPlatformFeeRequest{Fee: 501}))
	expectLedgerError(t, err, connect.CodeInvalidArgument, "InvalidFee")

	set, err := env.admin.SetPlatformFee(ctx, as(owner, &api.SetPlatformFeeRequest{Fee: 250}))
	if err != nil {
		t.Fatalf("SetPlatformFee failed: %v", err)
	}
	if set.Msg.Info.PlatformFee != 250 {
		t.Errorf("Expected fee 250, got %d", set.Msg.Info.PlatformFee)
	}

	_, err = env.admin.WithdrawFees(ctx, as(owner, &api.WithdrawFeesRequest{}))
	expectLedgerError(t, err, connect.CodeFailedPrecondition, "NoFeesToWithdraw")

	id := models.BillIDFromString("fees").Hex()
	if _, err := env.v1.CreateBill(ctx, as(alice, &api.CreateBillRequest{Id: id, SharePrice: "100000000", TotalShares: 2})); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	env.approve(t, bob, env.contractV1, "100000000")
	if _, err := env.v1.PayBill(ctx, as(bob, &api.PayBillRequest{Id: id, ShareCount: 1})); err != nil {
		t.Fatalf("PayBill failed: %v", err)
	}

	withdrawn, err := env.admin.WithdrawFees(ctx, as(owner, &api.WithdrawFeesRequest{}))
	if err != nil {
		t.Fatalf("WithdrawFees failed: %v", err)
	}
	// 2.5% of 100 USDT
	if withdrawn.Msg.Amount != "2500000" {
		t.Errorf("Expected 2500000 withdrawn, got %s", withdrawn.Msg.Amount)
	}
	if got := env.balance(t, owner); got != "2500000" {
		t.Errorf("Expected owner balance 2500000, got %s", got)
	}
}

func TestAdminService_Ownership(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.admin.TransferOwnership(ctx, as(owner, &api.TransferOwnershipRequest{Ledger: "v3", NewOwner: bob.Hex()}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("Expected InvalidArgument for unknown ledger, got %v", err)
	}

	_, err = env.admin.TransferOwnership(ctx, as(owner, &api.TransferOwnershipRequest{Ledger: "v2", NewOwner: models.Address{}.Hex()}))
	expectLedgerError(t, err, connect.CodeInvalidArgument, "OwnableInvalidOwner")

	moved, err := env.admin.TransferOwnership(ctx, as(owner, &api.TransferOwnershipRequest{Ledger: "v2", NewOwner: bob.Hex()}))
	if err != nil {
		t.Fatalf("TransferOwnership failed: %v", err)
	}
	if moved.Msg.Info.Owner != bob.Hex() {
		t.Errorf("Expected bob to own v2, got %s", moved.Msg.Info.Owner)
	}

	// V1 is untouched.
	info, err := env.v1.GetLedgerInfo(ctx, connect.NewRequest(&api.GetLedgerInfoRequest{}))
	if err != nil {
		t.Fatalf("GetLedgerInfo failed: %v", err)
	}
	if info.Msg.Info.Owner != owner.Hex() {
		t.Errorf("Expected v1 owner unchanged, got %s", info.Msg.Info.Owner)
	}

	_, err = env.admin.RenounceOwnership(ctx, as(owner, &api.RenounceOwnershipRequest{Ledger: "v2"}))
	expectLedgerError(t, err, connect.CodePermissionDenied, "OwnableUnauthorizedAccount")

	renounced, err := env.admin.RenounceOwnership(ctx, as(bob, &api.RenounceOwnershipRequest{Ledger: "v2"}))
	if err != nil {
		t.Fatalf("RenounceOwnership failed: %v", err)
	}
	if renounced.Msg.Info.Owner != (models.Address{}).Hex() {
		t.Errorf("Expected zero owner, got %s", renounced.Msg.Info.Owner)
	}
}
