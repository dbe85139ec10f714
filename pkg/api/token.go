package api

// TokenService messages.

type ListTokensRequest struct{}

type ListTokensResponse struct {
	Tokens []*Token `json:"tokens"`
}

type GetBalanceRequest struct {
	Token string `json:"token"`
	// Account defaults to the caller.
	Account string `json:"account,omitempty"`
}

type GetBalanceResponse struct {
	Balance        string `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

type GetAllowanceRequest struct {
	Token string `json:"token"`
	// Owner defaults to the caller.
	Owner   string `json:"owner,omitempty"`
	Spender string `json:"spender"`
}

type GetAllowanceResponse struct {
	Allowance string `json:"allowance"`
}

type ApproveRequest struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type ApproveResponse struct {
	Allowance string `json:"allowance"`
}

type FaucetRequest struct {
	Token string `json:"token"`
	// Amount is a human amount such as "100" or "12.5".
	Amount string `json:"amount"`
}

type FaucetResponse struct {
	Balance        string `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}
