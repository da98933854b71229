package ledger

import (
	"context"
	"errors"
	"fmt"

	"centavo/internal/models"
	"centavo/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	store   repositories.AccountStore
	cache   BalanceCache
	metrics MetricsCollector
	log     *zap.Logger
}

// NewService creates the ledger engine. The cache is optional; metrics and
// logger fall back to no-ops when nil.
func NewService(store repositories.AccountStore, cache BalanceCache, metrics MetricsCollector, log *zap.Logger) Service {
	if store == nil {
		panic("account store is required")
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{store: store, cache: cache, metrics: metrics, log: log}
}

// validAmount rejects non-positive amounts and amounts with more than two
// fractional digits before anything touches the store.
func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

func (s *service) Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		s.metrics.RecordError("deposit", "invalid_amount")
		return nil, decimal.Zero, err
	}

	var (
		created *models.Transaction
		balance decimal.Decimal
	)
	err := s.store.ExecuteInTransaction(ctx, func(store repositories.AccountStore) error {
		locked, err := store.LockAccounts(ctx, accountID)
		if err != nil {
			return err
		}
		acct, ok := locked[accountID]
		if !ok {
			return ErrAccountNotFound
		}
		if acct.Frozen() {
			return ErrAccountFrozen
		}

		tx := &models.Transaction{
			AccountID:   accountID,
			Kind:        models.KindDeposit,
			Amount:      amount,
			Description: description,
			Status:      models.StatusCompleted,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			return err
		}

		acct.Balance = acct.Balance.Add(amount)
		if err := store.SaveAccount(ctx, acct); err != nil {
			return err
		}

		created = tx
		balance = acct.Balance
		return nil
	})
	if err != nil {
		s.metrics.RecordError("deposit", errKind(err))
		return nil, decimal.Zero, s.mapErr(err)
	}

	s.invalidate(ctx, accountID)
	s.metrics.RecordOperation("deposit", amount)
	return created, balance, nil
}

func (s *service) Transfer(ctx context.Context, senderID, recipientID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		s.metrics.RecordError("transfer", "invalid_amount")
		return nil, decimal.Zero, err
	}
	if senderID == recipientID {
		s.metrics.RecordError("transfer", "self_transfer")
		return nil, decimal.Zero, ErrSelfTransfer
	}

	var (
		senderLeg     *models.Transaction
		senderBalance decimal.Decimal
	)
	err := s.store.ExecuteInTransaction(ctx, func(store repositories.AccountStore) error {
		locked, err := store.LockAccounts(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		sender, ok := locked[senderID]
		if !ok {
			return ErrAccountNotFound
		}
		recipient, ok := locked[recipientID]
		if !ok {
			return ErrAccountNotFound
		}
		if sender.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		// Sender leg first so the recipient leg can reference its id.
		leg := &models.Transaction{
			AccountID:      senderID,
			CounterpartyID: &recipientID,
			Kind:           models.KindTransfer,
			Amount:         amount,
			Description:    description,
			Status:         models.StatusCompleted,
		}
		if err := store.CreateTransaction(ctx, leg); err != nil {
			return err
		}

		// The recipient's side reads as an incoming deposit; the related id
		// keeps the causal link for reversal and auditing.
		recipientLeg := &models.Transaction{
			AccountID:            recipientID,
			CounterpartyID:       &senderID,
			Kind:                 models.KindDeposit,
			Amount:               amount,
			Description:          fmt.Sprintf("Transfer from account %d", senderID),
			Status:               models.StatusCompleted,
			RelatedTransactionID: &leg.ID,
		}
		if err := store.CreateTransaction(ctx, recipientLeg); err != nil {
			return err
		}

		sender.Balance = sender.Balance.Sub(amount)
		recipient.Balance = recipient.Balance.Add(amount)
		if err := store.SaveAccount(ctx, sender); err != nil {
			return err
		}
		if err := store.SaveAccount(ctx, recipient); err != nil {
			return err
		}

		senderLeg = leg
		senderBalance = sender.Balance
		return nil
	})
	if err != nil {
		s.metrics.RecordError("transfer", errKind(err))
		return nil, decimal.Zero, s.mapErr(err)
	}

	s.invalidate(ctx, senderID, recipientID)
	s.metrics.RecordOperation("transfer", amount)
	return senderLeg, senderBalance, nil
}

func (s *service) ReverseTransaction(ctx context.Context, requesterID uint, transactionID string) (*models.Transaction, decimal.Decimal, error) {
	var (
		reversal         *models.Transaction
		requesterBalance decimal.Decimal
		touched          []uint
	)
	err := s.store.ExecuteInTransaction(ctx, func(store repositories.AccountStore) error {
		// Lock the target row so two concurrent reversal requests serialize
		// on the status check; the loser sees status=reversed below.
		target, err := store.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if !visibleTo(target, requesterID) {
			return ErrTransactionNotFound
		}
		if target.Kind == models.KindReversal {
			return ErrNotReversible
		}
		if target.Status == models.StatusReversed {
			return ErrAlreadyReversed
		}

		switch target.Kind {
		case models.KindDeposit:
			reversal, err = s.reverseDeposit(ctx, store, target)
		case models.KindTransfer:
			reversal, err = s.reverseTransfer(ctx, store, target)
		default:
			return ErrNotReversible
		}
		if err != nil {
			return err
		}

		if err := store.MarkReversed(ctx, target.ID); err != nil {
			return err
		}

		touched = append(touched, target.AccountID)
		if target.CounterpartyID != nil {
			touched = append(touched, *target.CounterpartyID)
		}

		requester, err := store.GetAccount(ctx, requesterID)
		if err != nil {
			return err
		}
		requesterBalance = requester.Balance
		return nil
	})
	if err != nil {
		s.metrics.RecordError("reverse", errKind(err))
		return nil, decimal.Zero, s.mapErr(err)
	}

	s.invalidate(ctx, touched...)
	s.metrics.RecordOperation("reverse", reversal.Amount)
	return reversal, requesterBalance, nil
}

// reverseDeposit takes the deposited amount back out of the same account.
func (s *service) reverseDeposit(ctx context.Context, store repositories.AccountStore, target *models.Transaction) (*models.Transaction, error) {
	locked, err := store.LockAccounts(ctx, target.AccountID)
	if err != nil {
		return nil, err
	}
	acct, ok := locked[target.AccountID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	reversal := &models.Transaction{
		AccountID:            target.AccountID,
		Kind:                 models.KindReversal,
		Amount:               target.Amount,
		Description:          fmt.Sprintf("Reversal of transaction %s", target.ID),
		Status:               models.StatusCompleted,
		RelatedTransactionID: &target.ID,
	}
	if err := store.CreateTransaction(ctx, reversal); err != nil {
		return nil, err
	}

	acct.Balance = acct.Balance.Sub(target.Amount)
	if err := store.SaveAccount(ctx, acct); err != nil {
		return nil, err
	}
	return reversal, nil
}

// reverseTransfer refunds the sender and, when the recipient account still
// exists, claws the amount back from it. A deleted recipient does not block
// the sender's refund; the recipient-side debit is skipped.
func (s *service) reverseTransfer(ctx context.Context, store repositories.AccountStore, target *models.Transaction) (*models.Transaction, error) {
	ids := []uint{target.AccountID}
	if target.CounterpartyID != nil {
		ids = append(ids, *target.CounterpartyID)
	}
	locked, err := store.LockAccounts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	sender, ok := locked[target.AccountID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	reversal := &models.Transaction{
		AccountID:            target.AccountID,
		CounterpartyID:       target.CounterpartyID,
		Kind:                 models.KindReversal,
		Amount:               target.Amount,
		Description:          fmt.Sprintf("Reversal of transaction %s", target.ID),
		Status:               models.StatusCompleted,
		RelatedTransactionID: &target.ID,
	}
	if err := store.CreateTransaction(ctx, reversal); err != nil {
		return nil, err
	}
	sender.Balance = sender.Balance.Add(target.Amount)
	if err := store.SaveAccount(ctx, sender); err != nil {
		return nil, err
	}

	leg, err := store.RecipientLeg(ctx, target.ID)
	if err != nil && !errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, err
	}
	if leg != nil && leg.Status == models.StatusReversed {
		// The recipient already reversed their deposit leg and gave the
		// funds back; clawing them back again would double-debit.
		return reversal, nil
	}

	recipient := (*models.Account)(nil)
	if target.CounterpartyID != nil {
		recipient = locked[*target.CounterpartyID]
	}
	if recipient == nil {
		s.log.Warn("reversing transfer with missing recipient account; skipping recipient debit",
			zap.String("transaction_id", target.ID))
		return reversal, nil
	}

	recipientReversal := &models.Transaction{
		AccountID:            recipient.ID,
		CounterpartyID:       &target.AccountID,
		Kind:                 models.KindReversal,
		Amount:               target.Amount,
		Description:          fmt.Sprintf("Reversal of transfer %s", target.ID),
		Status:               models.StatusCompleted,
		RelatedTransactionID: &target.ID,
	}
	if err := store.CreateTransaction(ctx, recipientReversal); err != nil {
		return nil, err
	}
	recipient.Balance = recipient.Balance.Sub(target.Amount)
	if err := store.SaveAccount(ctx, recipient); err != nil {
		return nil, err
	}

	// Flip the recipient's deposit leg too, so both sides of the movement
	// read as reversed.
	if leg != nil {
		if err := store.MarkReversed(ctx, leg.ID); err != nil {
			return nil, err
		}
	}
	return reversal, nil
}

func (s *service) GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	if s.cache != nil {
		if balance, err := s.cache.GetBalance(ctx, accountID); err == nil {
			return balance, nil
		}
	}

	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, s.mapErr(err)
	}

	if s.cache != nil {
		if err := s.cache.SetBalance(ctx, accountID, acct.Balance); err != nil {
			s.log.Warn("failed to cache balance", zap.Uint("account_id", accountID), zap.Error(err))
		}
	}
	return acct.Balance, nil
}

func (s *service) ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error) {
	txs, total, err := s.store.ListTransactions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, s.mapErr(err)
	}
	return txs, total, nil
}

func visibleTo(tx *models.Transaction, accountID uint) bool {
	if tx.AccountID == accountID {
		return true
	}
	return tx.CounterpartyID != nil && *tx.CounterpartyID == accountID
}

func (s *service) invalidate(ctx context.Context, accountIDs ...uint) {
	if s.cache == nil || len(accountIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, accountIDs...); err != nil {
		s.log.Warn("failed to invalidate balance cache", zap.Uints("account_ids", accountIDs), zap.Error(err))
	}
}

// mapErr translates store sentinels into engine sentinels so handlers only
// ever see the ledger error taxonomy.
func (s *service) mapErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return ErrConflict
	case errors.Is(err, repositories.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repositories.ErrAlreadyReversed):
		return ErrAlreadyReversed
	default:
		return err
	}
}

func errKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrAccountFrozen):
		return "account_frozen"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrAlreadyReversed), errors.Is(err, repositories.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, ErrNotReversible):
		return "not_reversible"
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, repositories.ErrTransactionNotFound):
		return "transaction_not_found"
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, repositories.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrConflict), errors.Is(err, repositories.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
