package handlers

import (
	"errors"

	"centavo/internal/models"
	"centavo/internal/repositories"
	"centavo/internal/services/ledger"
	"centavo/internal/utils/pagination"
	"centavo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// WalletHandler exposes the ledger engine over HTTP. It resolves accounts
// from the authenticated claims, invokes exactly one engine operation per
// request and maps engine errors to stable response codes.
type WalletHandler struct {
	ledgerService ledger.Service
	accounts      repositories.AccountStore
}

func NewWalletHandler(ledgerService ledger.Service, accounts repositories.AccountStore) *WalletHandler {
	return &WalletHandler{ledgerService: ledgerService, accounts: accounts}
}

func claimsFrom(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

type depositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	}

	tx, balance, err := h.ledgerService.Deposit(c.Context(), claims.AccountID, req.Amount, req.Description)
	if err != nil {
		return ledgerError(c, err)
	}

	return response.Success(c, "deposit successful", fiber.Map{
		"transaction": tx,
		"new_balance": balance,
	})
}

type transferRequest struct {
	RecipientID uint            `json:"recipient_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	}

	// The API speaks user ids; the engine speaks account ids.
	recipient, err := h.accounts.GetAccountByUserID(c.Context(), req.RecipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return response.Fail(c, fiber.StatusUnprocessableEntity, "RECIPIENT_NOT_FOUND", "recipient does not exist")
		}
		return response.ServerError(c, "failed to resolve recipient")
	}

	tx, balance, err := h.ledgerService.Transfer(c.Context(), claims.AccountID, recipient.ID, req.Amount, req.Description)
	if err != nil {
		return ledgerError(c, err)
	}

	return response.Success(c, "transfer successful", fiber.Map{
		"transaction": tx,
		"new_balance": balance,
	})
}

func (h *WalletHandler) Reverse(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	transactionID := c.Params("id")
	if transactionID == "" {
		return response.BadRequest(c, "transaction id is required")
	}

	tx, balance, err := h.ledgerService.ReverseTransaction(c.Context(), claims.AccountID, transactionID)
	if err != nil {
		return ledgerError(c, err)
	}

	return response.Success(c, "transaction reversed", fiber.Map{
		"reversal_transaction": tx,
		"new_balance":          balance,
	})
}

func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), claims.AccountID)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"balance": balance})
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	p := pagination.ParseFromRequest(c)
	txs, total, err := h.ledgerService.ListTransactions(c.Context(), claims.AccountID, p.Limit, p.Offset)
	if err != nil {
		return ledgerError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, txs))
}

// ledgerError maps engine sentinels onto HTTP statuses and stable codes.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "INVALID_AMOUNT", "amount must be positive with at most two decimal places")
	case errors.Is(err, ledger.ErrAccountFrozen):
		return response.Fail(c, fiber.StatusForbidden, "ACCOUNT_FROZEN", "account blocked due to negative balance")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "insufficient balance")
	case errors.Is(err, ledger.ErrSelfTransfer):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "SELF_TRANSFER", "cannot transfer to self")
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return response.Fail(c, fiber.StatusNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	case errors.Is(err, ledger.ErrAlreadyReversed):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "ALREADY_REVERSED", "transaction already reversed")
	case errors.Is(err, ledger.ErrNotReversible):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "NOT_REVERSIBLE", "reversal transactions cannot be reversed")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return response.Fail(c, fiber.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "account not found")
	case errors.Is(err, ledger.ErrConflict):
		return response.Fail(c, fiber.StatusConflict, "CONCURRENCY_CONFLICT", "operation conflicted with a concurrent update, retry")
	default:
		return response.ServerError(c, "operation failed")
	}
}
