package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus is a one-way state machine:
// PENDING -> CONFIRMED | DENIED | DELETED. The three non-pending states are
// terminal.
type ContributionStatus string

const (
	ContributionStatusPending   ContributionStatus = "PENDING"
	ContributionStatusConfirmed ContributionStatus = "CONFIRMED"
	ContributionStatusDenied    ContributionStatus = "DENIED"
	ContributionStatusDeleted   ContributionStatus = "DELETED"
)

// Contribution is a proposed value-creation event awaiting moderator
// confirmation. On confirmation exactly one CREATION entry is booked and
// EntryID links the two; afterwards amount and memo are immutable.
type Contribution struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ContributionDate time.Time
	ConfirmedAt      *time.Time
	DeniedAt         *time.Time
	DeletedAt        *time.Time
	ConfirmedBy      *string
	DeniedBy         *string
	DeletedBy        *string
	EntryID          *string
	ID               string
	UserID           string
	Memo             string
	Status           ContributionStatus
	Amount           decimal.Decimal
}

// Validate checks amount and memo bounds.
func (c *Contribution) Validate() error {
	if c.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return ValidateMemo(c.Memo)
}

// IsPending reports whether the contribution can still be mutated.
func (c *Contribution) IsPending() bool {
	return c.Status == ContributionStatusPending
}

// CanConfirm checks the transition to CONFIRMED for the given moderator.
func (c *Contribution) CanConfirm(moderatorID string) error {
	switch c.Status {
	case ContributionStatusConfirmed:
		return ErrContributionConfirmed
	case ContributionStatusDenied:
		return ErrContributionDenied
	case ContributionStatusDeleted:
		return ErrContributionNotPending
	}

	if c.UserID == moderatorID {
		return ErrSelfConfirmation
	}

	return nil
}
