package domain

// ============================================================
// Request payloads
// ============================================================

// CreateAccountRequest is the body of POST /account.
type CreateAccountRequest struct {
	IdentityKey string `json:"cpf"`
	Name        string `json:"name"`
}

// UpdateAccountRequest is the body of PUT /account.
type UpdateAccountRequest struct {
	Name string `json:"name"`
}

// DepositRequest is the body of POST /deposit.
type DepositRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// WithdrawRequest is the body of POST /withdraw.
type WithdrawRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// OperationEvent is delivered to webhooks after an operation is appended.
type OperationEvent struct {
	Event      string    `json:"event"`
	CustomerID string    `json:"customer_id"`
	Operation  Operation `json:"operation"`
}
