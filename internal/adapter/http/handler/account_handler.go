package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// LedgerService defines the behavior needed by AccountHandler.
type LedgerService interface {
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	Credit(ctx context.Context, input usecase.MoneyMovementInput) error
	Debit(ctx context.Context, input usecase.MoneyMovementInput) error
	TransactionsSince(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error)
	TransactionsLastDays(ctx context.Context, accountID int64, days int) ([]*domain.Transaction, error)
	CashFlow(ctx context.Context, accountID int64, since time.Time) (credit, debit decimal.Decimal, err error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	ledgerUC LedgerService
	clock    usecase.Clock
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerUC LedgerService, clock usecase.Clock) *AccountHandler {
	return &AccountHandler{ledgerUC: ledgerUC, clock: clock}
}

// Get retrieves an account by id.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	account, err := h.ledgerUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists all accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledgerUC.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Credit tops up an account.
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledgerUC.Credit)
}

// Debit withdraws from an account.
func (h *AccountHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledgerUC.Debit)
}

func (h *AccountHandler) move(w http.ResponseWriter, r *http.Request, op func(context.Context, usecase.MoneyMovementInput) error) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	var req dto.MoneyMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := op(r.Context(), req.ToUseCaseInput(id)); err != nil {
		writeError(w, mapDomainError(err), "failed to move money", err.Error())
		return
	}

	account, err := h.ledgerUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Transactions lists ledger entries for an account over a trailing window.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	days := parseIntQuery(r, "since_days", 7)
	entries, err := h.ledgerUC.TransactionsLastDays(r.Context(), id, days)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(entries))
}

// CashFlow returns the credit/debit totals for an account over a trailing
// window.
func (h *AccountHandler) CashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	days := parseIntQuery(r, "since_days", 30)
	since := domain.TrailingDays(h.clock.Now(), days)

	credit, debit, err := h.ledgerUC.CashFlow(r.Context(), id, since)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute cash flow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashFlowResponse{
		AccountID: id,
		Credit:    credit,
		Debit:     debit,
	})
}
