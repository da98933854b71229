package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionKindValid(t *testing.T) {
	assert.True(t, KindDeposit.Valid())
	assert.True(t, KindTransfer.Valid())
	assert.True(t, KindReversal.Valid())
	assert.False(t, TransactionKind("withdrawal").Valid())
	assert.False(t, TransactionKind("").Valid())
}

func TestTransactionStatusValid(t *testing.T) {
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusReversed.Valid())
	assert.False(t, TransactionStatus("pending").Valid())
}

func TestTransactionValidate(t *testing.T) {
	related := "3f1d0c9a-5c1b-4a8e-9d21-000000000001"

	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name: "valid deposit",
			tx: Transaction{
				AccountID: 1,
				Kind:      KindDeposit,
				Amount:    decimal.RequireFromString("10.50"),
				Status:    StatusCompleted,
			},
		},
		{
			name: "valid reversal with back reference",
			tx: Transaction{
				AccountID:            1,
				Kind:                 KindReversal,
				Amount:               decimal.RequireFromString("10.50"),
				Status:               StatusCompleted,
				RelatedTransactionID: &related,
			},
		},
		{
			name: "reversal without back reference",
			tx: Transaction{
				AccountID: 1,
				Kind:      KindReversal,
				Amount:    decimal.RequireFromString("10.50"),
				Status:    StatusCompleted,
			},
			wantErr: true,
		},
		{
			name: "zero amount",
			tx: Transaction{
				AccountID: 1,
				Kind:      KindDeposit,
				Amount:    decimal.Zero,
				Status:    StatusCompleted,
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			tx: Transaction{
				AccountID: 1,
				Kind:      TransactionKind("fee"),
				Amount:    decimal.RequireFromString("1"),
				Status:    StatusCompleted,
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			tx: Transaction{
				AccountID: 1,
				Kind:      KindDeposit,
				Amount:    decimal.RequireFromString("1"),
				Status:    TransactionStatus("failed"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccountFrozen(t *testing.T) {
	acct := Account{Balance: decimal.RequireFromString("-0.01")}
	assert.True(t, acct.Frozen())

	acct.Balance = decimal.Zero
	assert.False(t, acct.Frozen())

	acct.Balance = decimal.RequireFromString("10")
	assert.False(t, acct.Frozen())
}
