package ledger

import "errors"

// Engine errors. Each maps to one stable failure kind on the API surface.
var (
	// ErrInvalidAmount means the amount was zero, negative or carried more
	// than two fractional digits. Rejected before any mutation.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAccountFrozen means a deposit was attempted while the account
	// balance is negative.
	ErrAccountFrozen = errors.New("account frozen due to negative balance")
	// ErrInsufficientBalance means the transfer amount exceeds the sender's
	// balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSelfTransfer means sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to self")
	// ErrAccountNotFound means a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound means the reversal target does not exist or is
	// not visible to the requester.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAlreadyReversed means the reversal target was already reversed.
	ErrAlreadyReversed = errors.New("transaction already reversed")
	// ErrNotReversible means the reversal target is itself a reversal.
	ErrNotReversible = errors.New("reversal transactions cannot be reversed")
	// ErrConflict means the store aborted the atomic unit on a lock or
	// serialization conflict. No partial effect remains; safe to retry.
	ErrConflict = errors.New("operation conflicted with a concurrent update")
)
