package domain

import "time"

// ============================================================
// Customer / Statement
// ============================================================

// Customer is an account holder. IdentityKey (a national tax ID, wire name
// "cpf") is unique across the store and never changes after creation.
type Customer struct {
	ID          string      `json:"id"`
	IdentityKey string      `json:"cpf"`
	Name        string      `json:"name"`
	Statement   []Operation `json:"statement"`
}

// Clone returns a copy that shares no memory with c.
func (c *Customer) Clone() *Customer {
	cp := *c
	cp.Statement = make([]Operation, len(c.Statement))
	copy(cp.Statement, c.Statement)
	return &cp
}

// OperationType distinguishes credits from debits.
type OperationType string

const (
	OperationCredit OperationType = "credit"
	OperationDebit  OperationType = "debit"
)

// Operation is a single statement entry. Immutable once appended.
type Operation struct {
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Amount      float64       `json:"amount"`
	CreatedAt   time.Time     `json:"createdAt"`
	Type        OperationType `json:"type"`
}
