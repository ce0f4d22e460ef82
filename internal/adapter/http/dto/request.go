package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

// CreateContributionRequest represents a request to submit a contribution.
type CreateContributionRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Memo             string          `json:"memo"`
	ContributionDate *time.Time      `json:"contribution_date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given owner.
func (r *CreateContributionRequest) ToUseCaseInput(userID string) usecase.CreateContributionInput {
	input := usecase.CreateContributionInput{
		UserID: userID,
		Amount: r.Amount,
		Memo:   r.Memo,
	}
	if r.ContributionDate != nil {
		input.ContributionDate = *r.ContributionDate
	}
	return input
}

// UpdateContributionRequest represents a request to edit a pending contribution.
type UpdateContributionRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Memo             string          `json:"memo"`
	ContributionDate *time.Time      `json:"contribution_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateContributionRequest) ToUseCaseInput(id, userID string) usecase.UpdateContributionInput {
	input := usecase.UpdateContributionInput{
		ID:     id,
		UserID: userID,
		Amount: r.Amount,
		Memo:   r.Memo,
	}
	if r.ContributionDate != nil {
		input.ContributionDate = *r.ContributionDate
	}
	return input
}

// CreateTransferRequest represents a request to send a transfer. The
// recipient is addressed by ID or by email.
type CreateTransferRequest struct {
	RecipientID    string          `json:"recipient_id,omitempty"`
	RecipientEmail string          `json:"recipient_email,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo"`
}

// ToUseCaseInput converts to use case input for the given sender.
func (r *CreateTransferRequest) ToUseCaseInput(senderID string) usecase.SendTransferInput {
	return usecase.SendTransferInput{
		SenderID:       senderID,
		RecipientID:    r.RecipientID,
		RecipientEmail: r.RecipientEmail,
		Amount:         r.Amount,
		Memo:           r.Memo,
	}
}

// CreateLinkRequest represents a request to create a transfer link.
type CreateLinkRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo"`
}

// ToUseCaseInput converts to use case input for the given creator.
func (r *CreateLinkRequest) ToUseCaseInput(userID string) usecase.CreateLinkInput {
	return usecase.CreateLinkInput{
		UserID: userID,
		Amount: r.Amount,
		Memo:   r.Memo,
	}
}

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email: r.Email,
		Name:  r.Name,
		Role:  domain.Role(r.Role),
	}
}
