package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
	"github.com/iho/commledger/internal/usecase/mocks"
)

type linkFixture struct {
	uc        *usecase.LinkUseCase
	transfers *usecase.TransferUseCase
	entryRepo *mocks.MockEntryRepository
	linkRepo  *mocks.MockLinkRepository
	userRepo  *mocks.MockUserRepository
	cache     *mocks.MockCache
}

func newLinkFixture(t *testing.T, rate string) *linkFixture {
	t.Helper()

	entryRepo := mocks.NewMockEntryRepository()
	linkRepo := mocks.NewMockLinkRepository()
	userRepo := mocks.NewMockUserRepository()
	outbox := mocks.NewMockOutboxRepository()
	notifier := mocks.NewMockNotifier()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	cache := mocks.NewMockCache()

	calc := newTestCalculator(t, rate)
	projector := usecase.NewProjector(entryRepo, linkRepo, calc)
	writer := usecase.NewWriter(entryRepo, idGen)
	gate := usecase.NewGate()

	transfers := usecase.NewTransferUseCase(txMgr, userRepo, linkRepo, outbox, projector, writer, gate, idGen, notifier, nil)
	uc := usecase.NewLinkUseCase(txMgr, userRepo, linkRepo, projector, transfers, gate, calc, idGen, cache, nil, 14*24*time.Hour)

	return &linkFixture{
		uc:        uc,
		transfers: transfers,
		entryRepo: entryRepo,
		linkRepo:  linkRepo,
		userRepo:  userRepo,
		cache:     cache,
	}
}

func (f *linkFixture) addUser(t *testing.T, id string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  id,
		Role:  domain.RoleMember,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	return user
}

func TestLinkUseCase_Create(t *testing.T) {
	f := newLinkFixture(t, "0.10")
	f.addUser(t, "alice")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(40),
		Memo:   "for the market stand",
	})
	require.NoError(t, err)

	assert.Len(t, link.Code, 32)
	assert.True(t, link.HoldAvailableAmount.GreaterThan(link.Amount),
		"hold %s must cover decay until expiry", link.HoldAvailableAmount)
	assert.False(t, link.IsRedeemed())
	assert.False(t, link.IsExpired(now))

	t.Run("hold reduces available balance", func(t *testing.T) {
		_, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
			UserID: "alice",
			Amount: decimal.NewFromInt(60),
			Memo:   "one link too many",
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})
}

func TestLinkUseCase_Redeem(t *testing.T) {
	f := newLinkFixture(t, "0")
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(40),
		Memo:   "for the market stand",
	})
	require.NoError(t, err)

	result, err := f.uc.Redeem(context.Background(), link.Code, "bob")
	require.NoError(t, err)

	assert.True(t, result.Send.Balance.Equal(decimal.NewFromInt(60)))
	assert.True(t, result.Receive.Balance.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, result.Send.LinkID)
	assert.Equal(t, link.ID, *result.Send.LinkID)

	stored, err := f.linkRepo.GetByCode(context.Background(), link.Code)
	require.NoError(t, err)
	assert.True(t, stored.IsRedeemed())

	t.Run("second redeem fails", func(t *testing.T) {
		_, err := f.uc.Redeem(context.Background(), link.Code, "bob")
		assert.ErrorIs(t, err, domain.ErrLinkRedeemed)
	})
}

// The redemption transaction re-reads the link under a row lock; a link
// consumed elsewhere after the pre-check is rejected with no entries booked.
func TestLinkUseCase_RedeemRaceCaughtUnderLock(t *testing.T) {
	f := newLinkFixture(t, "0")
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(40),
		Memo:   "snatched mid flight",
	})
	require.NoError(t, err)

	f.linkRepo.GetByCodeForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, code string) (*domain.TransferLink, error) {
		consumed := *link
		by := "carol"
		consumed.RedeemedAt = &now
		consumed.RedeemedBy = &by
		return &consumed, nil
	}

	_, err = f.uc.Redeem(context.Background(), link.Code, "bob")
	assert.ErrorIs(t, err, domain.ErrLinkRedeemed)

	_, err = f.entryRepo.GetLastByUser(context.Background(), "bob")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

// A link reserving the whole balance must still be redeemable: its own hold
// is released for the availability check.
func TestLinkUseCase_RedeemReleasesOwnHold(t *testing.T) {
	f := newLinkFixture(t, "0")
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(50), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(50),
		Memo:   "everything i have",
	})
	require.NoError(t, err)

	result, err := f.uc.Redeem(context.Background(), link.Code, "bob")
	require.NoError(t, err)

	assert.True(t, result.Send.Balance.IsZero(), "sender balance %s", result.Send.Balance)
	assert.True(t, result.Receive.Balance.Equal(decimal.NewFromInt(50)))
}

func TestLinkUseCase_RedeemRejections(t *testing.T) {
	f := newLinkFixture(t, "0")
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(10),
		Memo:   "own goal attempt",
	})
	require.NoError(t, err)

	t.Run("own link", func(t *testing.T) {
		_, err := f.uc.Redeem(context.Background(), link.Code, "alice")
		assert.ErrorIs(t, err, domain.ErrOwnLink)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.uc.Redeem(context.Background(), "deadbeef", "bob")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("expired link", func(t *testing.T) {
		expired := &domain.TransferLink{
			ID:                  "link-expired",
			UserID:              "alice",
			Code:                "expiredcode",
			Amount:              decimal.NewFromInt(10),
			HoldAvailableAmount: decimal.NewFromInt(10),
			Memo:                "came too late",
			CreatedAt:           now.Add(-30 * 24 * time.Hour),
			ValidUntil:          now.Add(-16 * 24 * time.Hour),
		}
		require.NoError(t, f.linkRepo.Create(context.Background(), nil, expired))

		_, err := f.uc.Redeem(context.Background(), "expiredcode", "bob")
		assert.ErrorIs(t, err, domain.ErrLinkExpired)
	})
}

func TestLinkUseCase_GetByCodeCaches(t *testing.T) {
	f := newLinkFixture(t, "0")
	f.addUser(t, "alice")

	now := time.Now().UTC()
	seedEntry(t, f.entryRepo, "alice", decimal.NewFromInt(100), now.Add(-time.Hour))

	link, err := f.uc.Create(context.Background(), usecase.CreateLinkInput{
		UserID: "alice",
		Amount: decimal.NewFromInt(10),
		Memo:   "cache me if you can",
	})
	require.NoError(t, err)

	first, err := f.uc.GetByCode(context.Background(), link.Code)
	require.NoError(t, err)
	assert.Equal(t, link.ID, first.ID)

	// Second lookup is served from the cache even if the row disappears.
	f.linkRepo.GetByCodeFunc = func(ctx context.Context, code string) (*domain.TransferLink, error) {
		return nil, domain.ErrLinkNotFound
	}

	second, err := f.uc.GetByCode(context.Background(), link.Code)
	require.NoError(t, err)
	assert.Equal(t, link.ID, second.ID)
}
