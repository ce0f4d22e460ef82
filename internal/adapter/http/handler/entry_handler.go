package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/usecase"
)

// EntryHandler handles ledger entry and balance HTTP requests.
type EntryHandler struct {
	entryUC *usecase.EntryUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC *usecase.EntryUseCase) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// GetBalance projects the authenticated user's balance. An optional "as_of"
// query parameter (RFC3339) projects at a past or future instant.
func (h *EntryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	at, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'at' format (use RFC3339)", err.Error())
		return
	}

	projection, err := h.entryUC.GetBalance(r.Context(), user.ID, at)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to project balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromProjection(user.ID, projection))
}

// ListMine returns a page of the authenticated user's chain, newest first.
func (h *EntryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	page, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		UserID: user.ID,
		Limit:  parseIntQuery(r, "limit", 25),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(page.Entries),
		Total:   page.Total,
	})
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
