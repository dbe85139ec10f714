package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/pkg/api"
)

func TestSplitterV2Service_Lifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	id := models.BillIDFromString("trip").Hex()

	created, err := env.v2.CreateBill(ctx, as(alice, &api.CreateBillV2Request{
		Id:                id,
		Token:             env.usdt,
		SharePrice:        "5000000",
		TotalShares:       3,
		InitialPaidShares: 1,
		Description:       "Cabin",
	}))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if created.Msg.Bill.PaidShares != 1 || created.Msg.Bill.Status != "active" {
		t.Errorf("Expected 1 paid share on an active bill, got %+v", created.Msg.Bill)
	}
	if created.Msg.Bill.Description != "" {
		t.Errorf("Expected V2 description to live in events only, got %q", created.Msg.Bill.Description)
	}

	env.approve(t, bob, env.contractV2, "10000000")

	paid, err := env.v2.PayBill(ctx, as(bob, &api.PayBillV2Request{Id: id, Token: env.usdt, ShareCount: 2}))
	if err != nil {
		t.Fatalf("PayBill failed: %v", err)
	}
	if !paid.Msg.Payment.Closed || paid.Msg.Bill.Status != "closed" {
		t.Errorf("Expected the bill to close, got %+v", paid.Msg.Bill)
	}
	if paid.Msg.Payment.Fee != "0" || paid.Msg.Payment.Net != "10000000" {
		t.Errorf("Expected fee-free payment, got fee %s net %s", paid.Msg.Payment.Fee, paid.Msg.Payment.Net)
	}
	if got := env.balance(t, alice); got != "1010000000" {
		t.Errorf("Expected creator balance 1010000000, got %s", got)
	}

	_, err = env.v2.UpdateBill(ctx, as(alice, &api.UpdateBillRequest{Id: id, SharePrice: "1", TotalShares: 5}))
	expectLedgerError(t, err, connect.CodeFailedPrecondition, "BillNotActive")

	history, err := env.v2.ListBillEvents(ctx, connect.NewRequest(&api.ListBillEventsRequest{Id: id}))
	if err != nil {
		t.Fatalf("ListBillEvents failed: %v", err)
	}
	if len(history.Msg.Events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(history.Msg.Events))
	}
	if history.Msg.Events[0].Description != "Cabin" {
		t.Errorf("Expected description in BillCreated, got %q", history.Msg.Events[0].Description)
	}
	if history.Msg.Events[2].Kind != "BillClosed" {
		t.Errorf("Expected BillClosed last, got %s", history.Msg.Events[2].Kind)
	}
}

func TestSplitterV2Service_CreatorActions(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	id := models.BillIDFromString("groceries").Hex()

	if _, err := env.v2.CreateBill(ctx, as(alice, &api.CreateBillV2Request{
		Id: id, Token: env.usdt, SharePrice: "2000000", TotalShares: 4,
	})); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	self, err := env.v2.CreatorSelfPayment(ctx, as(alice, &api.CreatorSelfPaymentRequest{Id: id, ShareCount: 1}))
	if err != nil {
		t.Fatalf("CreatorSelfPayment failed: %v", err)
	}
	if !self.Msg.Payment.SelfPayment || self.Msg.Bill.PaidShares != 1 {
		t.Errorf("Unexpected self payment %+v", self.Msg.Payment)
	}
	if got := env.balance(t, alice); got != "1000000000" {
		t.Errorf("Expected no tokens to move, got %s", got)
	}

	_, err = env.v2.CreatorSelfPayment(ctx, as(bob, &api.CreatorSelfPaymentRequest{Id: id, ShareCount: 1}))
	expectLedgerError(t, err, connect.CodePermissionDenied, "OnlyCreator")

	updated, err := env.v2.UpdateBill(ctx, as(alice, &api.UpdateBillRequest{Id: id, SharePrice: "3000000", TotalShares: 2}))
	if err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if updated.Msg.Bill.SharePrice != "3000000" || updated.Msg.Bill.TotalShares != 2 || updated.Msg.Bill.TotalAmount != "6000000" {
		t.Errorf("Unexpected updated terms %+v", updated.Msg.Bill)
	}
	if updated.Msg.Bill.RemainingAmount != "3000000" {
		t.Errorf("Expected 3000000 remaining, got %s", updated.Msg.Bill.RemainingAmount)
	}

	_, err = env.v2.PayBill(ctx, as(bob, &api.PayBillV2Request{Id: id, Token: env.contractV1, ShareCount: 1}))
	expectLedgerError(t, err, connect.CodeInvalidArgument, "TokenMismatch")

	closed, err := env.v2.CloseBill(ctx, as(alice, &api.CloseBillRequest{Id: id}))
	if err != nil {
		t.Fatalf("CloseBill failed: %v", err)
	}
	if closed.Msg.Bill.Status != "closed" {
		t.Errorf("Expected closed, got %s", closed.Msg.Bill.Status)
	}
}

func TestSplitterV2Service_InvalidToken(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.v2.CreateBill(context.Background(), as(alice, &api.CreateBillV2Request{
		Token:       "0x00000000000000000000000000000000000000ff",
		SharePrice:  "1",
		TotalShares: 1,
	}))
	expectLedgerError(t, err, connect.CodeInvalidArgument, "InvalidToken")
}

func TestSplitterV2Service_LedgersAreIndependent(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	id := models.BillIDFromString("shared-id").Hex()

	if _, err := env.v1.CreateBill(ctx, as(alice, &api.CreateBillRequest{Id: id, SharePrice: "1", TotalShares: 1})); err != nil {
		t.Fatalf("v1 CreateBill failed: %v", err)
	}
	if _, err := env.v2.CreateBill(ctx, as(alice, &api.CreateBillV2Request{Id: id, Token: env.usdt, SharePrice: "1", TotalShares: 1})); err != nil {
		t.Fatalf("v2 CreateBill with the same id failed: %v", err)
	}

	info, err := env.v2.GetLedgerInfo(ctx, connect.NewRequest(&api.GetLedgerInfoRequest{}))
	if err != nil {
		t.Fatalf("GetLedgerInfo failed: %v", err)
	}
	if info.Msg.Info.Ledger != "v2" || info.Msg.Info.Contract != env.contractV2 || info.Msg.Info.Owner != owner.Hex() {
		t.Errorf("Unexpected ledger info %+v", info.Msg.Info)
	}
}
