package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
	"github.com/iho/commledger/internal/usecase/mocks"
)

func newEntryFixture(t *testing.T, rate string) (*usecase.EntryUseCase, *mocks.MockEntryRepository, *mocks.MockUserRepository) {
	t.Helper()

	entryRepo := mocks.NewMockEntryRepository()
	userRepo := mocks.NewMockUserRepository()
	linkRepo := mocks.NewMockLinkRepository()

	projector := usecase.NewProjector(entryRepo, linkRepo, newTestCalculator(t, rate))
	uc := usecase.NewEntryUseCase(entryRepo, userRepo, projector)

	return uc, entryRepo, userRepo
}

func TestEntryUseCase_GetBalance(t *testing.T) {
	uc, entryRepo, userRepo := newEntryFixture(t, "0.50")

	require.NoError(t, userRepo.Create(context.Background(), &domain.User{
		ID: "alice", Email: "alice@example.com", Name: "alice", Role: domain.RoleMember,
	}))

	now := time.Now().UTC()
	seedEntry(t, entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	projection, err := uc.GetBalance(context.Background(), "alice", nil)
	require.NoError(t, err)

	assert.True(t, projection.Balance.LessThan(decimal.NewFromInt(100)),
		"balance %s should have decayed over an hour", projection.Balance)
	assert.True(t, projection.Balance.GreaterThan(decimal.NewFromInt(99)))
	assert.True(t, projection.Decay.Decay.LessThan(decimal.Zero))

	t.Run("at explicit time", func(t *testing.T) {
		asOf := now.Add(-time.Hour)
		projection, err := uc.GetBalance(context.Background(), "alice", &asOf)
		require.NoError(t, err)
		assert.True(t, projection.Balance.Equal(decimal.NewFromInt(100)),
			"no time elapsed means no decay, got %s", projection.Balance)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := uc.GetBalance(context.Background(), "nobody", nil)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestEntryUseCase_ListEntries(t *testing.T) {
	uc, entryRepo, userRepo := newEntryFixture(t, "0")

	require.NoError(t, userRepo.Create(context.Background(), &domain.User{
		ID: "alice", Email: "alice@example.com", Name: "alice", Role: domain.RoleMember,
	}))

	now := time.Now().UTC()
	var prev *string
	for i, balance := range []int64{50, 80, 120} {
		entry := &domain.Entry{
			ID:              fmt.Sprintf("entry-%d", i),
			UserID:          "alice",
			Kind:            domain.EntryKindCreation,
			Amount:          decimal.NewFromInt(balance),
			Balance:         decimal.NewFromInt(balance),
			BalanceDate:     now.Add(time.Duration(i-3) * time.Hour),
			CreatedAt:       now.Add(time.Duration(i-3) * time.Hour),
			PreviousEntryID: prev,
		}
		require.NoError(t, entryRepo.Create(context.Background(), nil, entry))
		prev = &entry.ID
	}

	page, err := uc.ListEntries(context.Background(), usecase.ListEntriesInput{
		UserID: "alice",
		Limit:  2,
	})
	require.NoError(t, err)

	assert.Len(t, page.Entries, 2)
	assert.Equal(t, int64(3), page.Total)
}

func TestEntryUseCase_GetEntry(t *testing.T) {
	uc, entryRepo, _ := newEntryFixture(t, "0")

	entry := seedEntry(t, entryRepo, "alice", decimal.NewFromInt(50), time.Now().UTC())

	got, err := uc.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	_, err = uc.GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}
