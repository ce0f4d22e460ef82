package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/infrastructure/auth"
	"github.com/iho/commledger/internal/infrastructure/metrics"
	"github.com/iho/commledger/internal/usecase"
)

// AuthHandler issues JWT tokens for registered users. Identity verification
// is delegated to the community's identity provider; this endpoint trusts
// the email and exists for deployments without an external IdP.
type AuthHandler struct {
	userUC     *usecase.UserUseCase
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userUC *usecase.UserUseCase, jwtManager *auth.JWTManager, metrics *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		userUC:     userUC,
		jwtManager: jwtManager,
		metrics:    metrics,
	}
}

// TokenRequest represents a token request.
type TokenRequest struct {
	Email string `json:"email"`
}

// TokenResponse represents a token response.
type TokenResponse struct {
	Token string            `json:"token"`
	User  *dto.UserResponse `json:"user"`
}

// Token issues a JWT for the user registered under the given email.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if h.metrics != nil {
			h.metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	if user.DeletedAt != nil {
		if h.metrics != nil {
			h.metrics.AuthFailures.WithLabelValues("deleted_user").Inc()
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}
