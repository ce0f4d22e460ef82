package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/usecase"
)

// LinkHandler handles transfer link HTTP requests.
type LinkHandler struct {
	linkUC *usecase.LinkUseCase
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkUC *usecase.LinkUseCase) *LinkHandler {
	return &LinkHandler{linkUC: linkUC}
}

// Create reserves part of the caller's balance behind a shareable code.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	link, err := h.linkUC.Create(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer link", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LinkFromDomain(link))
}

// Get looks up a link by its code. Anyone with the code can inspect it
// before deciding to redeem.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing link code", "")
		return
	}

	link, err := h.linkUC.GetByCode(r.Context(), code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transfer link", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LinkFromDomain(link))
}

// Redeem consumes the link, booking a transfer from the creator to the caller.
func (h *LinkHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing link code", "")
		return
	}

	result, err := h.linkUC.Redeem(r.Context(), code, user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to redeem transfer link", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromResult(result))
}

// ListMine lists the authenticated user's links.
func (h *LinkHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 25)
	offset := parseIntQuery(r, "offset", 0)

	links, err := h.linkUC.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfer links", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LinksFromDomain(links))
}
