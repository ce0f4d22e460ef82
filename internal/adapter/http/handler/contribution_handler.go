package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

// ContributionHandler handles contribution-related HTTP requests.
type ContributionHandler struct {
	contributionUC *usecase.ContributionUseCase
}

// NewContributionHandler creates a new ContributionHandler.
func NewContributionHandler(contributionUC *usecase.ContributionUseCase) *ContributionHandler {
	return &ContributionHandler{contributionUC: contributionUC}
}

// Create submits a contribution for the authenticated user.
func (h *ContributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	contribution, err := h.contributionUC.Create(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ContributionFromDomain(contribution))
}

// Get retrieves a contribution by ID.
func (h *ContributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contribution ID", "")
		return
	}

	contribution, err := h.contributionUC.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionFromDomain(contribution))
}

// Update edits a pending contribution owned by the caller.
func (h *ContributionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contribution ID", "")
		return
	}

	var req dto.UpdateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	contribution, err := h.contributionUC.Update(r.Context(), req.ToUseCaseInput(id, user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionFromDomain(contribution))
}

// Delete removes a pending contribution.
func (h *ContributionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contribution ID", "")
		return
	}

	if err := h.contributionUC.Delete(r.Context(), id, user); err != nil {
		writeError(w, mapDomainError(err), "failed to delete contribution", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Confirm books the contribution as a CREATION entry. Moderator only.
func (h *ContributionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contribution ID", "")
		return
	}

	entry, err := h.contributionUC.Confirm(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Deny rejects a pending contribution. Moderator only.
func (h *ContributionHandler) Deny(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contribution ID", "")
		return
	}

	if err := h.contributionUC.Deny(r.Context(), id, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to deny contribution", err.Error())
		return
	}

	contribution, err := h.contributionUC.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get contribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionFromDomain(contribution))
}

// ListMine lists the authenticated user's contributions.
func (h *ContributionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	contributions, err := h.contributionUC.ListByUser(r.Context(), usecase.ListContributionsInput{
		UserID:   user.ID,
		Statuses: statusFilter(r),
		Limit:    parseIntQuery(r, "limit", 25),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list contributions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionsFromDomain(contributions))
}

// ListAll lists contributions across all users. Moderator only.
func (h *ContributionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.contributionUC.ListAll(r.Context(), usecase.ListContributionsInput{
		Statuses: statusFilter(r),
		Limit:    parseIntQuery(r, "limit", 25),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list contributions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionsFromDomain(contributions))
}

// statusFilter parses the repeatable "status" query parameter.
func statusFilter(r *http.Request) []domain.ContributionStatus {
	values := r.URL.Query()["status"]
	if len(values) == 0 {
		return nil
	}

	statuses := make([]domain.ContributionStatus, 0, len(values))
	for _, v := range values {
		statuses = append(statuses, domain.ContributionStatus(v))
	}
	return statuses
}
