package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"centavo/internal/models"
	"centavo/internal/repositories"
	"centavo/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger returns canned results so handler tests only exercise request
// parsing, error mapping and response shape.
type fakeLedger struct {
	tx      *models.Transaction
	balance decimal.Decimal
	err     error
}

func (f *fakeLedger) Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	return f.tx, f.balance, f.err
}

func (f *fakeLedger) Transfer(ctx context.Context, senderID, recipientID uint, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	return f.tx, f.balance, f.err
}

func (f *fakeLedger) ReverseTransaction(ctx context.Context, requesterID uint, transactionID string) (*models.Transaction, decimal.Decimal, error) {
	return f.tx, f.balance, f.err
}

func (f *fakeLedger) GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	return f.balance, f.err
}

func (f *fakeLedger) ListTransactions(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	if f.tx == nil {
		return nil, 0, nil
	}
	return []models.Transaction{*f.tx}, 1, nil
}

// fakeAccounts only resolves user ids; other store methods are never hit
// from handlers.
type fakeAccounts struct {
	repositories.AccountStore
	byUserID map[uint]*models.Account
}

func (f *fakeAccounts) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	acct, ok := f.byUserID[userID]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return acct, nil
}

func newTestApp(svc ledger.Service, accounts *fakeAccounts) *fiber.App {
	app := fiber.New()
	// Stand-in for the auth middleware.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: 1, AccountID: 1})
		return c.Next()
	})
	h := NewWalletHandler(svc, accounts)
	app.Post("/wallet/deposit", h.Deposit)
	app.Post("/wallet/transfer", h.Transfer)
	app.Post("/wallet/reverse/:id", h.Reverse)
	app.Get("/wallet/balance", h.Balance)
	app.Get("/wallet/transactions", h.Transactions)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	_, err = rec.Body.ReadFrom(resp.Body)
	require.NoError(t, err)
	return rec
}

func TestDepositHandler(t *testing.T) {
	tx := &models.Transaction{
		ID:        "3f1d0c9a-5c1b-4a8e-9d21-000000000001",
		AccountID: 1,
		Kind:      models.KindDeposit,
		Amount:    decimal.RequireFromString("100.50"),
		Status:    models.StatusCompleted,
	}
	svc := &fakeLedger{tx: tx, balance: decimal.RequireFromString("100.50")}
	app := newTestApp(svc, &fakeAccounts{})

	rec := postJSON(t, app, "/wallet/deposit", fiber.Map{"amount": "100.50", "description": "paycheck"})
	assert.Equal(t, fiber.StatusOK, rec.Code)

	var body struct {
		Message     string             `json:"message"`
		Transaction models.Transaction `json:"transaction"`
		NewBalance  decimal.Decimal    `json:"new_balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, tx.ID, body.Transaction.ID)
	assert.True(t, body.NewBalance.Equal(decimal.RequireFromString("100.50")))
}

func TestTransferHandlerResolvesRecipient(t *testing.T) {
	svc := &fakeLedger{
		tx:      &models.Transaction{ID: "x", Kind: models.KindTransfer, Amount: decimal.NewFromInt(30), Status: models.StatusCompleted},
		balance: decimal.NewFromInt(70),
	}
	accounts := &fakeAccounts{byUserID: map[uint]*models.Account{2: {ID: 2, UserID: 2}}}
	app := newTestApp(svc, accounts)

	rec := postJSON(t, app, "/wallet/transfer", fiber.Map{"recipient_id": 2, "amount": "30"})
	assert.Equal(t, fiber.StatusOK, rec.Code)

	t.Run("unknown recipient", func(t *testing.T) {
		rec := postJSON(t, app, "/wallet/transfer", fiber.Map{"recipient_id": 9, "amount": "30"})
		assert.Equal(t, fiber.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "RECIPIENT_NOT_FOUND")
	})
}

func TestLedgerErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ledger.ErrInvalidAmount, fiber.StatusUnprocessableEntity, "INVALID_AMOUNT"},
		{ledger.ErrAccountFrozen, fiber.StatusForbidden, "ACCOUNT_FROZEN"},
		{ledger.ErrInsufficientBalance, fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
		{ledger.ErrSelfTransfer, fiber.StatusUnprocessableEntity, "SELF_TRANSFER"},
		{ledger.ErrTransactionNotFound, fiber.StatusNotFound, "TRANSACTION_NOT_FOUND"},
		{ledger.ErrAlreadyReversed, fiber.StatusUnprocessableEntity, "ALREADY_REVERSED"},
		{ledger.ErrNotReversible, fiber.StatusUnprocessableEntity, "NOT_REVERSIBLE"},
		{ledger.ErrConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := newTestApp(&fakeLedger{err: tt.err}, &fakeAccounts{})
			rec := postJSON(t, app, "/wallet/reverse/3f1d0c9a-5c1b-4a8e-9d21-000000000001", fiber.Map{})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestBalanceHandler(t *testing.T) {
	svc := &fakeLedger{balance: decimal.RequireFromString("42.10")}
	app := newTestApp(svc, &fakeAccounts{})

	req := httptest.NewRequest("GET", "/wallet/balance", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Balance.Equal(decimal.RequireFromString("42.10")))
}

func TestTransactionsHandlerPaginates(t *testing.T) {
	svc := &fakeLedger{
		tx: &models.Transaction{ID: "x", Kind: models.KindDeposit, Amount: decimal.NewFromInt(1), Status: models.StatusCompleted},
	}
	app := newTestApp(svc, &fakeAccounts{})

	req := httptest.NewRequest("GET", "/wallet/transactions?page=1&limit=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []models.Transaction `json:"data"`
		Meta struct {
			CurrentPage int   `json:"current_page"`
			TotalItems  int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta.CurrentPage)
	assert.EqualValues(t, 1, body.Meta.TotalItems)
}
