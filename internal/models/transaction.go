package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind is the closed set of ledger movement types.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"
	KindTransfer TransactionKind = "transfer"
	KindReversal TransactionKind = "reversal"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindTransfer, KindReversal:
		return true
	}
	return false
}

// TransactionStatus is the closed set of transaction states. A record is
// created completed and may transition to reversed exactly once.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusReversed  TransactionStatus = "reversed"
)

func (s TransactionStatus) Valid() bool {
	return s == StatusCompleted || s == StatusReversed
}

// Transaction is one immutable ledger movement against a single account. A
// transfer produces two records: the sender leg (kind=transfer, with
// CounterpartyID set to the recipient account) and the recipient leg
// (kind=deposit, with RelatedTransactionID pointing back at the sender leg).
// Apart from the status transition to reversed, records are never updated.
type Transaction struct {
	ID                   string            `gorm:"primarykey;type:uuid" json:"id"`
	AccountID            uint              `gorm:"index;not null" json:"account_id"`
	CounterpartyID       *uint             `gorm:"index" json:"counterparty_id,omitempty"`
	Kind                 TransactionKind   `gorm:"index;not null" json:"kind"`
	Amount               decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	Description          string            `json:"description,omitempty"`
	Status               TransactionStatus `gorm:"index;not null" json:"status"`
	RelatedTransactionID *string           `gorm:"type:uuid;index" json:"related_transaction_id,omitempty"`
	Metadata             JSON              `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return t.validate()
}

func (t *Transaction) validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("invalid transaction kind %q", t.Kind)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid transaction status %q", t.Status)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}
	if t.Kind == KindReversal && t.RelatedTransactionID == nil {
		return fmt.Errorf("reversal must reference the transaction it reverses")
	}
	return nil
}
