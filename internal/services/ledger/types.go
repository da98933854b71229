package ledger

import (
	"context"

	"centavo/internal/models"

	"github.com/shopspring/decimal"
)

// Service is the ledger engine interface. Write operations return the
// created transaction record and the post-operation balance of the account
// the caller acted on.
type Service interface {
	Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error)
	Transfer(ctx context.Context, senderID, recipientID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error)
	ReverseTransaction(ctx context.Context, requesterID uint, transactionID string) (*models.Transaction, decimal.Decimal, error)

	GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error)
}

// BalanceCache is the optional read-through cache in front of GetBalance.
// The engine invalidates entries for every account it mutates.
type BalanceCache interface {
	GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error)
	SetBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error
	Invalidate(ctx context.Context, accountIDs ...uint) error
}

// MetricsCollector receives operation outcomes.
type MetricsCollector interface {
	RecordOperation(op string, amount decimal.Decimal)
	RecordError(op, kind string)
}
