package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferLink is a shareable, time-bounded claim on part of the sender's
// balance. While active (unredeemed and unexpired) HoldAvailableAmount is
// subtracted from the sender's available balance; redeeming produces a
// SEND/RECEIVE pair and expiry releases the hold implicitly.
type TransferLink struct {
	CreatedAt           time.Time
	ValidUntil          time.Time
	RedeemedAt          *time.Time
	RedeemedBy          *string
	ID                  string
	UserID              string
	Code                string
	Memo                string
	Amount              decimal.Decimal
	HoldAvailableAmount decimal.Decimal
}

// Validate checks amount and memo bounds.
func (l *TransferLink) Validate() error {
	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return ValidateMemo(l.Memo)
}

// IsRedeemed reports whether the link has already been consumed.
func (l *TransferLink) IsRedeemed() bool {
	return l.RedeemedAt != nil
}

// IsExpired reports whether the link is past its validity at the given time.
func (l *TransferLink) IsExpired(at time.Time) bool {
	return at.After(l.ValidUntil)
}

// CanRedeem checks the transition to REDEEMED for the given user.
func (l *TransferLink) CanRedeem(userID string, at time.Time) error {
	if l.IsRedeemed() {
		return ErrLinkRedeemed
	}

	if l.IsExpired(at) {
		return ErrLinkExpired
	}

	if l.UserID == userID {
		return ErrOwnLink
	}

	return nil
}
