package handler

import (
	"log/slog"
	"net/http"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/handler/dto"
	"github.com/BigazyGalym/Diplom/internal/service"
)

// FinanceHandler serves the monthly summary.
type FinanceHandler struct {
	svc    *service.FinanceService
	logger *slog.Logger
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(svc *service.FinanceService, logger *slog.Logger) *FinanceHandler {
	return &FinanceHandler{svc: svc, logger: logger}
}

// Summary handles GET /api/v1/finance.
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetSummary(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToSummaryResponse(summary))
}
