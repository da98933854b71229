package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds the ledger balance for one user. The balance column is only
// ever written from inside a ledger engine atomic unit; nothing else in the
// application mutates it.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Accounts always open at zero.
	a.Balance = decimal.Zero
	return nil
}

// Frozen reports whether the account is blocked for deposits because its
// balance went negative.
func (a *Account) Frozen() bool {
	return a.Balance.IsNegative()
}
