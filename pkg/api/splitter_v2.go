package api

// SplitterV2Service messages. Queries reuse the V1 request types.

type CreateBillV2Request struct {
	Id                string `json:"id,omitempty"`
	Token             string `json:"token"`
	SharePrice        string `json:"share_price"`
	TotalShares       uint32 `json:"total_shares"`
	InitialPaidShares uint32 `json:"initial_paid_shares"`
	Description       string `json:"description"`
}

type PayBillV2Request struct {
	Id         string `json:"id"`
	Token      string `json:"token"`
	ShareCount uint32 `json:"share_count"`
}

type CreatorSelfPaymentRequest struct {
	Id         string `json:"id"`
	ShareCount uint32 `json:"share_count"`
}

type CreatorSelfPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Bill    *Bill    `json:"bill"`
}

type UpdateBillRequest struct {
	Id          string `json:"id"`
	SharePrice  string `json:"share_price"`
	TotalShares uint32 `json:"total_shares"`
	Description string `json:"description"`
}

type UpdateBillResponse struct {
	Bill *Bill `json:"bill"`
}
