package handler

import (
	"net/http"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/usecase"
)

// IntegrityHandler handles ledger-wide verification requests.
type IntegrityHandler struct {
	integrityUC *usecase.IntegrityUseCase
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrityUC *usecase.IntegrityUseCase) *IntegrityHandler {
	return &IntegrityHandler{integrityUC: integrityUC}
}

// Verify walks all user chains and reports inconsistencies. Admin only.
func (h *IntegrityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	report, err := h.integrityUC.Verify(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify ledger", err.Error())
		return
	}

	status := http.StatusOK
	if !report.Consistent() {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.IntegrityFromReport(report))
}
