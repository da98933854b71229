/*
Package ledger implements the transaction engine: the only component allowed
to move money between accounts.

Every operation runs as one atomic unit against the account store. Inside the
unit the engine takes row-level exclusive locks on the accounts it touches
(always in ascending account-id order), re-validates its preconditions under
the lock, writes the immutable transaction records and adjusts balances.
Either everything commits or nothing does; a failed operation leaves no trace
in balances or history.

Operations:

  - Deposit credits one account and records a deposit transaction. Deposits
    are rejected while the account balance is negative (the account is
    frozen).
  - Transfer moves funds between two accounts, recording a transfer leg on
    the sender and a deposit leg on the recipient linked through
    RelatedTransactionID.
  - ReverseTransaction compensates an earlier completed deposit or transfer
    without deleting it, flipping the original's status to reversed exactly
    once. Reversal records themselves can never be reversed.
  - GetBalance and ListTransactions answer read queries against consistent
    state.

All failures surface as sentinel errors (ErrInvalidAmount,
ErrInsufficientBalance, ErrAlreadyReversed, ...) so callers can map them to
stable API responses. ErrConflict means the store aborted the unit because of
a lock or serialization conflict; nothing was applied and the call may be
retried.
*/
package ledger
