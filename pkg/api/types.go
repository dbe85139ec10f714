package api

import "google.golang.org/protobuf/types/known/timestamppb"

// Amounts are base-10 strings in the token's smallest unit unless the field
// name ends in _display, which carries the decimal rendering.

// Bill is a bill as returned by every ledger service.
type Bill struct {
	Id                string                 `json:"id"`
	Ledger            string                 `json:"ledger"`
	Creator           string                 `json:"creator"`
	Token             string                 `json:"token"`
	SharePrice        string                 `json:"share_price"`
	SharePriceDisplay string                 `json:"share_price_display"`
	TotalShares       uint32                 `json:"total_shares"`
	PaidShares        uint32                 `json:"paid_shares"`
	RemainingShares   uint32                 `json:"remaining_shares"`
	TotalAmount       string                 `json:"total_amount"`
	PaidAmount        string                 `json:"paid_amount"`
	RemainingAmount   string                 `json:"remaining_amount"`
	Status            string                 `json:"status"`
	StatusCode        uint32                 `json:"status_code"`
	Description       string                 `json:"description,omitempty"`
	CreatedAt         *timestamppb.Timestamp `json:"created_at"`
	SettledAt         *timestamppb.Timestamp `json:"settled_at,omitempty"`
}

// Payment is an accepted payment.
type Payment struct {
	BillId      string `json:"bill_id"`
	Payer       string `json:"payer"`
	Shares      uint32 `json:"shares"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee"`
	Net         string `json:"net"`
	SelfPayment bool   `json:"self_payment"`
	Closed      bool   `json:"closed"`
}

// Contribution is one payer's cumulative shares on a V1 bill.
type Contribution struct {
	Payer  string `json:"payer"`
	Shares uint32 `json:"shares"`
}

// Refund is what one payer got back from a cancelled V1 bill.
type Refund struct {
	Payer  string `json:"payer"`
	Shares uint32 `json:"shares"`
	Amount string `json:"amount"`
}

// Event is one entry of a ledger's event log.
type Event struct {
	Id            string                 `json:"id"`
	Seq           int64                  `json:"seq"`
	Ledger        string                 `json:"ledger"`
	Kind          string                 `json:"kind"`
	BillId        string                 `json:"bill_id,omitempty"`
	Account       string                 `json:"account,omitempty"`
	PreviousOwner string                 `json:"previous_owner,omitempty"`
	Token         string                 `json:"token,omitempty"`
	SharePrice    string                 `json:"share_price,omitempty"`
	Amount        string                 `json:"amount,omitempty"`
	Fee           string                 `json:"fee,omitempty"`
	TotalShares   uint32                 `json:"total_shares,omitempty"`
	PaidShares    uint32                 `json:"paid_shares,omitempty"`
	Shares        uint32                 `json:"shares,omitempty"`
	PlatformFee   uint32                 `json:"platform_fee,omitempty"`
	SelfPayment   bool                   `json:"self_payment,omitempty"`
	Description   string                 `json:"description,omitempty"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at"`
}

// LedgerInfo describes a ledger instance.
type LedgerInfo struct {
	Ledger        string `json:"ledger"`
	Version       string `json:"version,omitempty"`
	Contract      string `json:"contract"`
	Owner         string `json:"owner"`
	Token         string `json:"token,omitempty"`
	PlatformFee   uint32 `json:"platform_fee"`
	CollectedFees string `json:"collected_fees,omitempty"`
}

// Token describes a deployed token.
type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
}

// Account is a registered wallet.
type Account struct {
	Address     string                 `json:"address"`
	DisplayName string                 `json:"display_name"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at"`
}
