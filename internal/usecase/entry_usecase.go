package usecase

import (
	"context"
	"time"

	"github.com/iho/commledger/internal/domain"
)

// EntryUseCase implements read access to chains and projected balances.
type EntryUseCase struct {
	entryRepo EntryRepository
	userRepo  UserRepository
	projector *Projector
}

func NewEntryUseCase(entryRepo EntryRepository, userRepo UserRepository, projector *Projector) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		projector: projector,
	}
}

// GetBalance projects the user's balance at asOf, defaulting to now.
func (uc *EntryUseCase) GetBalance(ctx context.Context, userID string, asOf *time.Time) (*Projection, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	at := time.Now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}

	return uc.projector.Project(ctx, userID, at)
}

// GetEntry returns a single ledger entry.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing a user's entries.
type ListEntriesInput struct {
	UserID string
	Limit  int
	Offset int
}

// EntryPage is a page of entries plus the chain total.
type EntryPage struct {
	Entries []*domain.Entry
	Total   int64
}

// ListEntries returns a page of the user's chain, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) (*EntryPage, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	entries, err := uc.entryRepo.ListByUser(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := uc.entryRepo.CountByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	return &EntryPage{Entries: entries, Total: total}, nil
}
