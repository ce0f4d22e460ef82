package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/infrastructure/metrics"
)

// ContributionUseCase implements the contribution lifecycle: members submit
// pending contributions, moderators confirm or deny them, and confirmation
// books a CREATION entry.
type ContributionUseCase struct {
	txManager        TransactionManager
	contributionRepo ContributionRepository
	userRepo         UserRepository
	outboxRepo       OutboxRepository
	projector        *Projector
	writer           *Writer
	gate             *Gate
	idGen            IDGenerator
	notifier         Notifier
	metrics          *metrics.Metrics
}

func NewContributionUseCase(
	txManager TransactionManager,
	contributionRepo ContributionRepository,
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	projector *Projector,
	writer *Writer,
	gate *Gate,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
) *ContributionUseCase {
	return &ContributionUseCase{
		txManager:        txManager,
		contributionRepo: contributionRepo,
		userRepo:         userRepo,
		outboxRepo:       outboxRepo,
		projector:        projector,
		writer:           writer,
		gate:             gate,
		idGen:            idGen,
		notifier:         notifier,
		metrics:          metrics,
	}
}

// CreateContributionInput represents input for submitting a contribution.
type CreateContributionInput struct {
	UserID           string
	Amount           decimal.Decimal
	Memo             string
	ContributionDate time.Time
}

// Create submits a pending contribution. No ledger entry is booked until a
// moderator confirms it.
func (uc *ContributionUseCase) Create(ctx context.Context, input CreateContributionInput) (*domain.Contribution, error) {
	now := time.Now().UTC()

	contributionDate := input.ContributionDate
	if contributionDate.IsZero() {
		contributionDate = now
	}

	contribution := &domain.Contribution{
		ID:               uc.idGen.Generate(),
		UserID:           input.UserID,
		Amount:           input.Amount,
		Memo:             input.Memo,
		ContributionDate: contributionDate,
		Status:           domain.ContributionStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := contribution.Validate(); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, domain.ErrUserDeleted
	}

	if err := uc.contributionRepo.Create(ctx, contribution); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ContributionsCreated.Inc()
	}

	return contribution, nil
}

// UpdateContributionInput represents input for editing a pending contribution.
type UpdateContributionInput struct {
	ID               string
	UserID           string
	Amount           decimal.Decimal
	Memo             string
	ContributionDate time.Time
}

// Update edits a pending contribution owned by the caller.
func (uc *ContributionUseCase) Update(ctx context.Context, input UpdateContributionInput) (*domain.Contribution, error) {
	contribution, err := uc.contributionRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if contribution.UserID != input.UserID {
		return nil, domain.ErrNotContributionOwner
	}

	if !contribution.IsPending() {
		return nil, domain.ErrContributionNotPending
	}

	contribution.Amount = input.Amount
	contribution.Memo = input.Memo
	if !input.ContributionDate.IsZero() {
		contribution.ContributionDate = input.ContributionDate
	}
	contribution.UpdatedAt = time.Now().UTC()

	if err := contribution.Validate(); err != nil {
		return nil, err
	}

	if err := uc.contributionRepo.UpdatePending(ctx, contribution); err != nil {
		return nil, err
	}

	return contribution, nil
}

// Delete withdraws a pending contribution. Owners can delete their own;
// moderators can delete anyone's.
func (uc *ContributionUseCase) Delete(ctx context.Context, id string, caller *domain.User) error {
	contribution, err := uc.contributionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if contribution.UserID != caller.ID && !caller.Role.CanModerate() {
		return domain.ErrNotContributionOwner
	}

	if !contribution.IsPending() {
		return domain.ErrContributionNotPending
	}

	if err := uc.contributionRepo.MarkDeleted(ctx, id, caller.ID, time.Now().UTC()); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ContributionsDeleted.Inc()
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, domain.EventTypeContributionDeleted, map[string]any{
			"contribution_id": id,
			"user_id":         contribution.UserID,
		})
	}

	return nil
}

// Confirm books a pending contribution as a CREATION entry on the owner's
// chain. The whole operation runs under the gate so the projection it bases
// the new balance on cannot be invalidated by a concurrent mutation, and a
// racing second confirm observes the terminal status and fails.
func (uc *ContributionUseCase) Confirm(ctx context.Context, id, moderatorID string) (*domain.Entry, error) {
	start := time.Now()

	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if uc.metrics != nil {
		uc.metrics.GateWaitDuration.Observe(time.Since(start).Seconds())
	}

	contribution, err := uc.contributionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contribution.CanConfirm(moderatorID); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, contribution.UserID)
	if err != nil {
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, domain.ErrUserDeleted
	}

	now := time.Now().UTC()

	proj, err := uc.projector.Project(ctx, contribution.UserID, now)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.writer.AppendCreation(txCtx, tx, contribution, proj, now)
	if err != nil {
		return nil, err
	}

	if err := uc.contributionRepo.MarkConfirmed(txCtx, tx, id, moderatorID, entry.ID, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   contribution.ID,
		AggregateType: domain.AggregateTypeContribution,
		EventType:     domain.EventTypeContributionConfirmed,
		Payload: map[string]any{
			"contribution_id": contribution.ID,
			"user_id":         contribution.UserID,
			"moderator_id":    moderatorID,
			"entry_id":        entry.ID,
			"amount":          contribution.Amount.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ContributionsConfirmed.Inc()
		uc.metrics.MutationDuration.Observe(time.Since(start).Seconds())
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, domain.EventTypeContributionConfirmed, map[string]any{
			"contribution_id": contribution.ID,
			"user_id":         contribution.UserID,
			"amount":          contribution.Amount.String(),
		})
	}

	return entry, nil
}

// Deny rejects a pending contribution. Denied is terminal; the contribution
// can no longer be confirmed or edited.
func (uc *ContributionUseCase) Deny(ctx context.Context, id, moderatorID string) error {
	contribution, err := uc.contributionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch contribution.Status {
	case domain.ContributionStatusConfirmed:
		return domain.ErrContributionConfirmed
	case domain.ContributionStatusDenied:
		return domain.ErrContributionDenied
	case domain.ContributionStatusDeleted:
		return domain.ErrContributionNotPending
	}

	if contribution.UserID == moderatorID {
		return domain.ErrSelfConfirmation
	}

	if err := uc.contributionRepo.MarkDenied(ctx, id, moderatorID, time.Now().UTC()); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ContributionsDenied.Inc()
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, domain.EventTypeContributionDenied, map[string]any{
			"contribution_id": id,
			"user_id":         contribution.UserID,
		})
	}

	return nil
}

// GetByID returns a single contribution.
func (uc *ContributionUseCase) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	return uc.contributionRepo.GetByID(ctx, id)
}

// ListContributionsInput represents input for listing contributions.
type ListContributionsInput struct {
	UserID   string
	Statuses []domain.ContributionStatus
	Limit    int
	Offset   int
}

// ListByUser returns a user's contributions, optionally filtered by status.
func (uc *ContributionUseCase) ListByUser(ctx context.Context, input ListContributionsInput) ([]*domain.Contribution, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.contributionRepo.ListByUser(ctx, input.UserID, input.Statuses, limit, offset)
}

// ListAll returns contributions across all users, for moderation queues.
func (uc *ContributionUseCase) ListAll(ctx context.Context, input ListContributionsInput) ([]*domain.Contribution, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.contributionRepo.ListAll(ctx, input.Statuses, limit, offset)
}
