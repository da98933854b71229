// Package repositories provides the data access layer. It owns every read
// and write against PostgreSQL; balances and transaction records are only
// reachable through the interfaces defined here.
package repositories

import (
	"context"
	"errors"

	"centavo/internal/models"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAlreadyReversed is returned by MarkReversed when the record exists
	// but its status is no longer completed.
	ErrAlreadyReversed = errors.New("transaction already reversed")
	// ErrConflict is returned when the database aborts the enclosing atomic
	// unit because of a lock or serialization conflict. Nothing was applied;
	// the caller may retry.
	ErrConflict = errors.New("concurrent update conflict")
)

// AccountStore is the ledger engine's view of durable storage. Every method
// runs against the store's current transaction scope: on the root store that
// is an implicit single-statement scope, inside ExecuteInTransaction it is
// the enclosing atomic unit.
type AccountStore interface {
	// Accounts
	CreateAccount(ctx context.Context, acct *models.Account) error
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error)
	// LockAccounts loads the given accounts under row-level exclusive locks.
	// IDs are locked in ascending order so concurrent multi-account
	// operations cannot deadlock each other. Missing accounts are simply
	// absent from the result.
	LockAccounts(ctx context.Context, ids ...uint) (map[uint]*models.Account, error)
	SaveAccount(ctx context.Context, acct *models.Account) error

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// LockTransaction loads one transaction record under an exclusive row
	// lock, serializing concurrent status checks against it.
	LockTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// RecipientLeg finds the deposit record a transfer created on the
	// recipient's side, by the sender leg's id.
	RecipientLeg(ctx context.Context, senderLegID string) (*models.Transaction, error)
	// MarkReversed flips one completed record to reversed. It returns
	// ErrAlreadyReversed when the record exists but is no longer completed,
	// and ErrTransactionNotFound when there is no such record.
	MarkReversed(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error)

	// ExecuteInTransaction runs fn inside one database transaction. All
	// mutations made through the store passed to fn commit together or not
	// at all.
	ExecuteInTransaction(ctx context.Context, fn func(AccountStore) error) error
}
