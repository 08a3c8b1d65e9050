package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind identifies which ledger a record was read from
type RecordKind string

const (
	RecordIncome     RecordKind = "income"
	RecordWithdrawal RecordKind = "withdrawal"
	RecordRecharge   RecordKind = "recharge"
)

// DisplayName returns a human-readable title for the record list
func (k RecordKind) DisplayName() string {
	switch k {
	case RecordIncome:
		return "Income Record"
	case RecordWithdrawal:
		return "Withdrawal Record"
	case RecordRecharge:
		return "Recharge Record"
	default:
		return string(k)
	}
}

// DefaultDescription is used when the server omits one
func (k RecordKind) DefaultDescription() string {
	switch k {
	case RecordRecharge:
		return "Wallet Recharge"
	case RecordWithdrawal:
		return "Withdrawal"
	default:
		return "Income"
	}
}

// Record statuses as sent by the backend
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"
)

// Record is an append-only ledger entry rendered as a list row
type Record struct {
	ID            FlexID          `json:"id"`
	Kind          RecordKind      `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Plan          string          `json:"plan,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Normalize fills display defaults the backend may leave empty
func (r *Record) Normalize(kind RecordKind) {
	r.Kind = kind
	if strings.TrimSpace(r.Status) == "" {
		r.Status = StatusPending
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = kind.DefaultDescription()
	}
}

// StatusClass maps a status onto a styling hook
func (r Record) StatusClass() string {
	switch r.Status {
	case StatusCompleted:
		return "ok"
	case StatusProcessing, StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "neutral"
	}
}
