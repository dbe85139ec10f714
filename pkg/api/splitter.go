package api

// SplitterService (V1) messages.

type CreateBillRequest struct {
	// Id is optional; the server derives one from the caller and time when empty.
	Id          string `json:"id,omitempty"`
	SharePrice  string `json:"share_price"`
	TotalShares uint32 `json:"total_shares"`
	Description string `json:"description"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type PayBillRequest struct {
	Id         string `json:"id"`
	ShareCount uint32 `json:"share_count"`
}

type PayBillResponse struct {
	Payment *Payment `json:"payment"`
	Bill    *Bill    `json:"bill"`
}

type CloseBillRequest struct {
	Id string `json:"id"`
}

type CloseBillResponse struct {
	Bill *Bill `json:"bill"`
}

type CancelBillRequest struct {
	Id string `json:"id"`
}

type CancelBillResponse struct {
	Bill    *Bill     `json:"bill"`
	Refunds []*Refund `json:"refunds"`
}

type GetBillRequest struct {
	Id string `json:"id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

type BillExistsRequest struct {
	Id string `json:"id"`
}

type BillExistsResponse struct {
	Exists bool `json:"exists"`
}

type GetContributionRequest struct {
	Id    string `json:"id"`
	Payer string `json:"payer"`
}

type GetContributionResponse struct {
	Shares uint32 `json:"shares"`
}

type ListPayersRequest struct {
	Id string `json:"id"`
}

type ListPayersResponse struct {
	Payers []*Contribution `json:"payers"`
}

type ListBillsRequest struct {
	// Creator defaults to the caller.
	Creator string `json:"creator,omitempty"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type ListBillEventsRequest struct {
	// Id restricts the history to one bill; empty lists the whole ledger.
	Id       string `json:"id,omitempty"`
	AfterSeq int64  `json:"after_seq,omitempty"`
	Limit    uint32 `json:"limit,omitempty"`
}

type ListBillEventsResponse struct {
	Events []*Event `json:"events"`
}

type GetLedgerInfoRequest struct{}

type GetLedgerInfoResponse struct {
	Info *LedgerInfo `json:"info"`
}
