package api

// AdminService messages. Ledger is "v1" or "v2"; fee operations are V1 only.

type SetPlatformFeeRequest struct {
	Fee uint32 `json:"fee"`
}

type SetPlatformFeeResponse struct {
	Info *LedgerInfo `json:"info"`
}

type WithdrawFeesRequest struct {
	To string `json:"to"`
}

type WithdrawFeesResponse struct {
	Amount string `json:"amount"`
}

type TransferOwnershipRequest struct {
	Ledger   string `json:"ledger"`
	NewOwner string `json:"new_owner"`
}

type TransferOwnershipResponse struct {
	Info *LedgerInfo `json:"info"`
}

type RenounceOwnershipRequest struct {
	Ledger string `json:"ledger"`
}

type RenounceOwnershipResponse struct {
	Info *LedgerInfo `json:"info"`
}
