package types

// OrderResponse is the POST /order response payload.
type OrderResponse struct {
	Success   bool   `json:"success"`
	ErrorMsg  string `json:"errorMsg"`
	OrderID   string `json:"orderID"`
	Status    string `json:"status"` // "matched", "live", "delayed", "unmatched"
	OrderHash string `json:"orderHashes,omitempty"`
}

// CancelResponse is the DELETE /orders and /cancel-all response payload.
// NotCanceled maps order id -> reason.
type CancelResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}

// BalanceAllowanceResponse is the GET /balance-allowance response payload.
// Balance is in raw 6-decimal units (USDC and conditional tokens alike).
type BalanceAllowanceResponse struct {
	Balance    string            `json:"balance"`
	Allowances map[string]string `json:"allowances"`
}

// MidpointResponse is the GET /midpoint response payload.
type MidpointResponse struct {
	Mid string `json:"mid"`
}

// TickSizeResponse is the GET /tick-size response payload.
type TickSizeResponse struct {
	MinimumTickSize string `json:"minimum_tick_size"`
}

// NegRiskResponse is the GET /neg-risk response payload.
type NegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}
