package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Kind            string          `json:"kind"`
	Memo            string          `json:"memo"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	Decay           decimal.Decimal `json:"decay"`
	DecayStart      *time.Time      `json:"decay_start,omitempty"`
	PreviousEntryID *string         `json:"previous_entry_id,omitempty"`
	LinkedEntryID   *string         `json:"linked_entry_id,omitempty"`
	LinkedUserID    *string         `json:"linked_user_id,omitempty"`
	LinkID          *string         `json:"link_id,omitempty"`
	BalanceDate     time.Time       `json:"balance_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		Kind:            string(e.Kind),
		Memo:            e.Memo,
		Amount:          e.Amount,
		Balance:         e.Balance,
		Decay:           e.Decay,
		DecayStart:      e.DecayStart,
		PreviousEntryID: e.PreviousEntryID,
		LinkedEntryID:   e.LinkedEntryID,
		LinkedUserID:    e.LinkedUserID,
		LinkID:          e.LinkID,
		BalanceDate:     e.BalanceDate,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse is a page of entries plus the chain total.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// BalanceResponse represents a projected balance in API responses.
type BalanceResponse struct {
	UserID      string          `json:"user_id"`
	AsOf        time.Time       `json:"as_of"`
	Balance     decimal.Decimal `json:"balance"`
	HoldSum     decimal.Decimal `json:"hold_sum"`
	Available   decimal.Decimal `json:"available"`
	Decay       decimal.Decimal `json:"decay"`
	DecayStart  *time.Time      `json:"decay_start,omitempty"`
	LastEntryID *string         `json:"last_entry_id,omitempty"`
}

// BalanceFromProjection converts a projection to a response.
func BalanceFromProjection(userID string, p *usecase.Projection) *BalanceResponse {
	return &BalanceResponse{
		UserID:      userID,
		AsOf:        p.AsOf,
		Balance:     p.Balance,
		HoldSum:     p.HoldSum,
		Available:   p.Available,
		Decay:       p.Decay.Decay,
		DecayStart:  p.Decay.Start,
		LastEntryID: p.LastEntryID,
	}
}

// ContributionResponse represents a contribution in API responses.
type ContributionResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Memo             string          `json:"memo"`
	ContributionDate time.Time       `json:"contribution_date"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	ConfirmedBy      *string         `json:"confirmed_by,omitempty"`
	DeniedAt         *time.Time      `json:"denied_at,omitempty"`
	DeniedBy         *string         `json:"denied_by,omitempty"`
	EntryID          *string         `json:"entry_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ContributionFromDomain converts a domain contribution to a response.
func ContributionFromDomain(c *domain.Contribution) *ContributionResponse {
	return &ContributionResponse{
		ID:               c.ID,
		UserID:           c.UserID,
		Status:           string(c.Status),
		Amount:           c.Amount,
		Memo:             c.Memo,
		ContributionDate: c.ContributionDate,
		ConfirmedAt:      c.ConfirmedAt,
		ConfirmedBy:      c.ConfirmedBy,
		DeniedAt:         c.DeniedAt,
		DeniedBy:         c.DeniedBy,
		EntryID:          c.EntryID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ContributionsFromDomain converts domain contributions to responses.
func ContributionsFromDomain(contributions []*domain.Contribution) []*ContributionResponse {
	result := make([]*ContributionResponse, len(contributions))
	for i, c := range contributions {
		result[i] = ContributionFromDomain(c)
	}
	return result
}

// LinkResponse represents a transfer link in API responses.
type LinkResponse struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	Code                string          `json:"code"`
	Amount              decimal.Decimal `json:"amount"`
	HoldAvailableAmount decimal.Decimal `json:"hold_available_amount"`
	Memo                string          `json:"memo"`
	ValidUntil          time.Time       `json:"valid_until"`
	RedeemedAt          *time.Time      `json:"redeemed_at,omitempty"`
	RedeemedBy          *string         `json:"redeemed_by,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// LinkFromDomain converts a domain transfer link to a response.
func LinkFromDomain(l *domain.TransferLink) *LinkResponse {
	return &LinkResponse{
		ID:                  l.ID,
		UserID:              l.UserID,
		Code:                l.Code,
		Amount:              l.Amount,
		HoldAvailableAmount: l.HoldAvailableAmount,
		Memo:                l.Memo,
		ValidUntil:          l.ValidUntil,
		RedeemedAt:          l.RedeemedAt,
		RedeemedBy:          l.RedeemedBy,
		CreatedAt:           l.CreatedAt,
	}
}

// LinksFromDomain converts domain transfer links to responses.
func LinksFromDomain(links []*domain.TransferLink) []*LinkResponse {
	result := make([]*LinkResponse, len(links))
	for i, l := range links {
		result[i] = LinkFromDomain(l)
	}
	return result
}

// TransferResponse is the booked SEND/RECEIVE pair.
type TransferResponse struct {
	Send    *EntryResponse `json:"send"`
	Receive *EntryResponse `json:"receive"`
}

// TransferFromResult converts a transfer result to a response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Send:    EntryFromDomain(r.Send),
		Receive: EntryFromDomain(r.Receive),
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// IntegrityIssueResponse represents one detected inconsistency.
type IntegrityIssueResponse struct {
	UserID  string `json:"user_id"`
	EntryID string `json:"entry_id,omitempty"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
}

// IntegrityResponse summarizes a ledger verification run.
type IntegrityResponse struct {
	Consistent     bool                     `json:"consistent"`
	UsersChecked   int                      `json:"users_checked"`
	EntriesChecked int                      `json:"entries_checked"`
	Issues         []IntegrityIssueResponse `json:"issues"`
}

// IntegrityFromReport converts an integrity report to a response.
func IntegrityFromReport(r *usecase.IntegrityReport) *IntegrityResponse {
	issues := make([]IntegrityIssueResponse, len(r.Issues))
	for i, issue := range r.Issues {
		issues[i] = IntegrityIssueResponse{
			UserID:  issue.UserID,
			EntryID: issue.EntryID,
			Kind:    issue.Kind,
			Detail:  issue.Detail,
		}
	}
	return &IntegrityResponse{
		Consistent:     r.Consistent(),
		UsersChecked:   r.UsersChecked,
		EntriesChecked: r.EntriesChecked,
		Issues:         issues,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
