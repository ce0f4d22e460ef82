package domain

import "errors"

var (
	// Ledger errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameUser            = errors.New("sender and recipient are the same")
	ErrEntryNotFound       = errors.New("entry not found")

	// Contribution errors
	ErrContributionNotFound   = errors.New("contribution not found")
	ErrContributionNotPending = errors.New("contribution is not pending")
	ErrContributionConfirmed  = errors.New("contribution already confirmed")
	ErrContributionDenied     = errors.New("contribution already denied")
	ErrSelfConfirmation       = errors.New("moderator cannot confirm own contribution")
	ErrNotContributionOwner   = errors.New("contribution belongs to another user")

	// Transfer link errors
	ErrLinkNotFound = errors.New("transfer link not found")
	ErrLinkRedeemed = errors.New("transfer link already redeemed")
	ErrLinkExpired  = errors.New("transfer link expired")
	ErrOwnLink      = errors.New("cannot redeem own transfer link")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserDeleted  = errors.New("user was deleted")
	ErrEmailInUse   = errors.New("email already in use")
)
