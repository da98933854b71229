package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"centavo/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountStore struct {
	db *gorm.DB
}

// NewAccountStore creates the PostgreSQL-backed account store.
func NewAccountStore(db *gorm.DB) AccountStore {
	return &accountStore{db: db}
}

func (s *accountStore) CreateAccount(ctx context.Context, acct *models.Account) error {
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", translate(err))
	}
	return nil
}

func (s *accountStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", translate(err))
	}
	return &acct, nil
}

func (s *accountStore) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", translate(err))
	}
	return &acct, nil
}

func (s *accountStore) LockAccounts(ctx context.Context, ids ...uint) (map[uint]*models.Account, error) {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", translate(err))
	}

	locked := make(map[uint]*models.Account, len(accounts))
	for i := range accounts {
		locked[accounts[i].ID] = &accounts[i]
	}
	return locked, nil
}

func (s *accountStore) SaveAccount(ctx context.Context, acct *models.Account) error {
	if err := s.db.WithContext(ctx).Save(acct).Error; err != nil {
		return fmt.Errorf("failed to save account: %w", translate(err))
	}
	return nil
}

func (s *accountStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", translate(err))
	}
	return nil
}

func (s *accountStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", translate(err))
	}
	return &tx, nil
}

func (s *accountStore) LockTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", translate(err))
	}
	return &tx, nil
}

func (s *accountStore) RecipientLeg(ctx context.Context, senderLegID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).
		Where("related_transaction_id = ? AND kind = ?", senderLegID, models.KindDeposit).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find recipient leg: %w", translate(err))
	}
	return &tx, nil
}

func (s *accountStore) MarkReversed(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.StatusCompleted).
		Update("status", models.StatusReversed)
	if result.Error != nil {
		return fmt.Errorf("failed to mark transaction reversed: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		// Zero rows means either no such record or one that is past
		// completed; re-read to tell the two apart.
		if _, err := s.GetTransaction(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyReversed
	}
	return nil
}

func (s *accountStore) ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var (
		txs   []models.Transaction
		total int64
	)
	// Count and page inside one transaction so pagination metadata cannot
	// tear against the rows returned.
	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		q := dbTx.Model(&models.Transaction{}).Where("account_id = ?", accountID)
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		// id breaks ties between equal timestamps so pages never overlap.
		return q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&txs).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", translate(err))
	}
	return txs, total, nil
}

func (s *accountStore) ExecuteInTransaction(ctx context.Context, fn func(AccountStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return fn(&accountStore{db: dbTx})
	})
	return translate(err)
}

// translate maps driver-level failures onto store sentinels. Serialization
// and deadlock aborts become ErrConflict so callers can retry; everything
// else passes through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrConflict
		case "55P03": // lock_not_available
			return ErrConflict
		}
	}
	return err
}
