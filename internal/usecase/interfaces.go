package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
)

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	// SetLinkedEntry patches the cross-reference on an already inserted entry.
	// Used to point a SEND at its RECEIVE counterpart once both exist.
	SetLinkedEntry(ctx context.Context, tx Transaction, id, linkedEntryID string) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	// GetLastByUser returns the chain head, i.e. the entry with the latest
	// balance date. Returns domain.ErrEntryNotFound for an empty chain.
	GetLastByUser(ctx context.Context, userID string) (*domain.Entry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Entry, error)
	// ListChain returns a user's full chain ordered by balance date ascending.
	ListChain(ctx context.Context, userID string) ([]*domain.Entry, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// ContributionRepository defines data access for contributions.
type ContributionRepository interface {
	Create(ctx context.Context, contribution *domain.Contribution) error
	GetByID(ctx context.Context, id string) (*domain.Contribution, error)
	// UpdatePending rewrites amount, memo and contribution date of a pending
	// contribution.
	UpdatePending(ctx context.Context, contribution *domain.Contribution) error
	MarkConfirmed(ctx context.Context, tx Transaction, id, moderatorID, entryID string, at time.Time) error
	MarkDenied(ctx context.Context, id, moderatorID string, at time.Time) error
	MarkDeleted(ctx context.Context, id, deletedBy string, at time.Time) error
	ListByUser(ctx context.Context, userID string, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error)
	ListAll(ctx context.Context, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error)
}

// LinkRepository defines data access for transfer links.
type LinkRepository interface {
	Create(ctx context.Context, tx Transaction, link *domain.TransferLink) error
	GetByID(ctx context.Context, id string) (*domain.TransferLink, error)
	GetByCode(ctx context.Context, code string) (*domain.TransferLink, error)
	GetByCodeForUpdate(ctx context.Context, tx Transaction, code string) (*domain.TransferLink, error)
	MarkRedeemed(ctx context.Context, tx Transaction, id, redeemedBy string, at time.Time) error
	// SumActiveHolds returns the total hold amount of the user's unredeemed,
	// unexpired links as of the given time.
	SumActiveHolds(ctx context.Context, userID string, asOf time.Time) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TransferLink, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Notifier delivers user-facing notifications after a mutation has been
// committed. Implementations must not block the caller; delivery is best
// effort and failures never roll back ledger state.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]any)
}
