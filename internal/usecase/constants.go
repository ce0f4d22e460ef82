package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every ledger-mutating database
	// transaction. The gate serializes mutations, so a runaway transaction
	// would stall the whole community.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLinkValidity is how long a transfer link can be redeemed after
	// creation.
	DefaultLinkValidity = 14 * 24 * time.Hour

	// IdempotencyKeyTTL is how long idempotent responses are retained.
	IdempotencyKeyTTL = 24 * time.Hour
)
