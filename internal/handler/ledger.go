package handler

import (
	"log/slog"
	"net/http"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/handler/dto"
	"github.com/BigazyGalym/Diplom/internal/service"
)

// LedgerHandler handles HTTP requests for wallets, transactions, budgets
// and debts.
type LedgerHandler struct {
	svc    *service.LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc *service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, logger: logger}
}

// CreateWallet handles POST /api/v1/wallets.
func (h *LedgerHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet, err := h.svc.CreateWallet(r.Context(), auth.UserID(r.Context()), service.CreateWalletInput{
		Name:    req.Name,
		Balance: req.Balance,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToWalletResponse(wallet))
}

// ListWallets handles GET /api/v1/wallets.
func (h *LedgerHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.svc.ListWallets(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWalletList(wallets))
}

// CreateTransaction handles POST /api/v1/transactions.
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, wallet, err := h.svc.CreateTransaction(r.Context(), auth.UserID(r.Context()), service.CreateTransactionInput{
		WalletID: req.WalletID,
		Type:     req.Type,
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateTransactionResponse{
		TransactionResponse: dto.ToTransactionResponse(tx),
		Wallet:              dto.ToWalletResponse(wallet),
	})
}

// CreateBudget handles POST /api/v1/budgets.
func (h *LedgerHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	budget, err := h.svc.CreateBudget(r.Context(), auth.UserID(r.Context()), service.CreateBudgetInput{
		Category: req.Category,
		Limit:    req.Limit,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBudgetResponse(budget))
}

// ListBudgets handles GET /api/v1/budgets.
func (h *LedgerHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.ListBudgets(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBudgetList(budgets))
}

// CreateDebt handles POST /api/v1/debts.
func (h *LedgerHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	debt, err := h.svc.CreateDebt(r.Context(), auth.UserID(r.Context()), service.CreateDebtInput{
		Type:         req.Type,
		Counterparty: req.Counterparty,
		Amount:       req.Amount,
		DueDate:      req.DueDate,
		Returned:     req.Returned,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToDebtResponse(debt))
}

// ListDebts handles GET /api/v1/debts.
func (h *LedgerHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.svc.ListDebts(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToDebtList(debts))
}
