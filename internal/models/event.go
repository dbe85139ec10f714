package models

// EventKind names an entry of the ledger event log.
type EventKind string

const (
	EventBillCreated          EventKind = "BillCreated"
	EventPaymentMade          EventKind = "PaymentMade"
	EventBillUpdated          EventKind = "BillUpdated"
	EventBillSettled          EventKind = "BillSettled"
	EventBillClosed           EventKind = "BillClosed"
	EventBillCancelled        EventKind = "BillCancelled"
	EventRefundIssued         EventKind = "RefundIssued"
	EventPlatformFeeUpdated   EventKind = "PlatformFeeUpdated"
	EventFeesWithdrawn        EventKind = "FeesWithdrawn"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
)

// Event records one state change. Only the fields relevant to Kind are set;
// amounts are decimal strings in the token's smallest unit.
//
// Payloads:
//
//	BillCreated          BillID Account(creator) Token SharePrice TotalShares PaidShares Description
//	PaymentMade          BillID Account(payer) Shares Amount Fee SelfPayment
//	BillUpdated          BillID SharePrice TotalShares Description
//	BillSettled/Closed   BillID
//	BillCancelled        BillID
//	RefundIssued         BillID Account(payer) Shares Amount
//	PlatformFeeUpdated   PlatformFee
//	FeesWithdrawn        Account(recipient) Amount
//	OwnershipTransferred PreviousOwner Account(new owner)
type Event struct {
	// ID is a random UUID assigned when the event is appended.
	ID string `json:"id"`

	// Seq orders events across the whole store.
	Seq int64 `json:"seq"`

	Ledger Version   `json:"ledger"`
	Kind   EventKind `json:"kind"`
	BillID BillID    `json:"bill_id"`

	Account       Address `json:"account"`
	PreviousOwner Address `json:"previous_owner"`
	Token         Address `json:"token"`

	SharePrice  string `json:"share_price,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Fee         string `json:"fee,omitempty"`
	TotalShares uint8  `json:"total_shares,omitempty"`
	PaidShares  uint8  `json:"paid_shares,omitempty"`
	Shares      uint8  `json:"shares,omitempty"`
	PlatformFee uint16 `json:"platform_fee,omitempty"`
	SelfPayment bool   `json:"self_payment,omitempty"`
	Description string `json:"description,omitempty"`

	// CreatedAt is the Unix timestamp of the operation that emitted it.
	CreatedAt int64 `json:"created_at"`
}

// EventFilter selects events from the log. Zero fields match everything.
type EventFilter struct {
	Ledger Version
	BillID BillID
	Kind   EventKind

	// AfterSeq returns only events with Seq > AfterSeq.
	AfterSeq int64

	// Limit caps the result size; 0 means no cap.
	Limit int
}
