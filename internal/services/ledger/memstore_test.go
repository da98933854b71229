package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"centavo/internal/models"
	"centavo/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory AccountStore for engine tests. ExecuteInTransaction
// serializes units behind one mutex and restores a snapshot on error, so the
// atomicity and isolation the engine relies on hold the same way they do with
// the SQL store.
type memStore struct {
	mu       sync.Mutex
	accounts map[uint]*models.Account
	txs      map[string]*models.Transaction
	order    []string
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uint]*models.Account),
		txs:      make(map[string]*models.Transaction),
	}
}

func (m *memStore) addAccount(id uint, balance string) {
	m.accounts[id] = &models.Account{
		ID:      id,
		UserID:  id,
		Balance: decimal.RequireFromString(balance),
	}
}

func (m *memStore) deleteAccount(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
}

func (m *memStore) snapshot() (map[uint]*models.Account, map[string]*models.Transaction, []string) {
	accounts := make(map[uint]*models.Account, len(m.accounts))
	for id, a := range m.accounts {
		cp := *a
		accounts[id] = &cp
	}
	txs := make(map[string]*models.Transaction, len(m.txs))
	for id, t := range m.txs {
		cp := *t
		txs[id] = &cp
	}
	order := append([]string(nil), m.order...)
	return accounts, txs, order
}

func (m *memStore) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts, txs, order := m.snapshot()
	if err := fn((*memUnit)(m)); err != nil {
		m.accounts, m.txs, m.order = accounts, txs, order
		return err
	}
	return nil
}

func (m *memStore) CreateAccount(ctx context.Context, acct *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).CreateAccount(ctx, acct)
}

func (m *memStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).GetAccount(ctx, id)
}

func (m *memStore) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).GetAccountByUserID(ctx, userID)
}

func (m *memStore) LockAccounts(ctx context.Context, ids ...uint) (map[uint]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).LockAccounts(ctx, ids...)
}

func (m *memStore) SaveAccount(ctx context.Context, acct *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).SaveAccount(ctx, acct)
}

func (m *memStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).CreateTransaction(ctx, tx)
}

func (m *memStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).GetTransaction(ctx, id)
}

func (m *memStore) LockTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).LockTransaction(ctx, id)
}

func (m *memStore) RecipientLeg(ctx context.Context, senderLegID string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).RecipientLeg(ctx, senderLegID)
}

func (m *memStore) MarkReversed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).MarkReversed(ctx, id)
}

func (m *memStore) ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memUnit)(m).ListTransactions(ctx, accountID, limit, offset)
}

// memUnit is the view handed to ExecuteInTransaction callbacks; the enclosing
// unit already holds the store mutex.
type memUnit memStore

func (m *memUnit) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountStore) error) error {
	return fn(m)
}

func (m *memUnit) CreateAccount(ctx context.Context, acct *models.Account) error {
	if acct.ID == 0 {
		acct.ID = uint(len(m.accounts) + 1)
	}
	m.accounts[acct.ID] = acct
	return nil
}

func (m *memUnit) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	acct, ok := m.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (m *memUnit) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	for _, acct := range m.accounts {
		if acct.UserID == userID {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *memUnit) LockAccounts(ctx context.Context, ids ...uint) (map[uint]*models.Account, error) {
	locked := make(map[uint]*models.Account, len(ids))
	for _, id := range ids {
		if acct, ok := m.accounts[id]; ok {
			locked[id] = acct
		}
	}
	return locked, nil
}

func (m *memUnit) SaveAccount(ctx context.Context, acct *models.Account) error {
	m.accounts[acct.ID] = acct
	return nil
}

func (m *memUnit) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if !tx.Kind.Valid() || !tx.Status.Valid() || !tx.Amount.IsPositive() {
		return fmt.Errorf("invalid transaction record")
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	m.txs[tx.ID] = tx
	m.order = append(m.order, tx.ID)
	return nil
}

func (m *memUnit) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, ok := m.txs[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memUnit) LockTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return m.GetTransaction(ctx, id)
}

func (m *memUnit) RecipientLeg(ctx context.Context, senderLegID string) (*models.Transaction, error) {
	for _, id := range m.order {
		tx := m.txs[id]
		if tx.Kind == models.KindDeposit &&
			tx.RelatedTransactionID != nil && *tx.RelatedTransactionID == senderLegID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (m *memUnit) MarkReversed(ctx context.Context, id string) error {
	tx, ok := m.txs[id]
	if !ok {
		return repositories.ErrTransactionNotFound
	}
	if tx.Status != models.StatusCompleted {
		return repositories.ErrAlreadyReversed
	}
	tx.Status = models.StatusReversed
	return nil
}

func (m *memUnit) ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var all []models.Transaction
	// Newest first; creation order stands in for created_at.
	for i := len(m.order) - 1; i >= 0; i-- {
		tx := m.txs[m.order[i]]
		if tx.AccountID == accountID {
			all = append(all, *tx)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
