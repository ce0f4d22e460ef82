package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/infrastructure/metrics"
)

// LinkUseCase implements transfer links: shareable codes that reserve part of
// the creator's balance until redeemed or expired. Redemption goes through
// the transfer execution path.
type LinkUseCase struct {
	txManager    TransactionManager
	userRepo     UserRepository
	linkRepo     LinkRepository
	projector    *Projector
	transfers    *TransferUseCase
	gate         *Gate
	calc         *decay.Calculator
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
	linkValidity time.Duration
}

func NewLinkUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	linkRepo LinkRepository,
	projector *Projector,
	transfers *TransferUseCase,
	gate *Gate,
	calc *decay.Calculator,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
	linkValidity time.Duration,
) *LinkUseCase {
	if linkValidity <= 0 {
		linkValidity = DefaultLinkValidity
	}

	return &LinkUseCase{
		txManager:    txManager,
		userRepo:     userRepo,
		linkRepo:     linkRepo,
		projector:    projector,
		transfers:    transfers,
		gate:         gate,
		calc:         calc,
		idGen:        idGen,
		cache:        cache,
		metrics:      metrics,
		linkValidity: linkValidity,
	}
}

// CreateLinkInput represents input for creating a transfer link.
type CreateLinkInput struct {
	UserID string
	Amount decimal.Decimal
	Memo   string
}

// Create reserves part of the creator's balance behind a shareable code. The
// hold is the amount grossed up by the decay factor over the validity window,
// so the link stays coverable even if it is redeemed on its last valid day.
func (uc *LinkUseCase) Create(ctx context.Context, input CreateLinkInput) (*domain.TransferLink, error) {
	link := &domain.TransferLink{
		ID:     uc.idGen.Generate(),
		UserID: input.UserID,
		Amount: input.Amount,
		Memo:   input.Memo,
	}
	if err := link.Validate(); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, domain.ErrUserDeleted
	}

	start := time.Now()

	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if uc.metrics != nil {
		uc.metrics.GateWaitDuration.Observe(time.Since(start).Seconds())
	}

	now := time.Now().UTC()
	link.CreatedAt = now
	link.ValidUntil = now.Add(uc.linkValidity)
	link.Code = generateLinkCode()

	factor, err := uc.calc.Factor(uc.linkValidity)
	if err != nil {
		return nil, err
	}
	link.HoldAvailableAmount = input.Amount.DivRound(factor, 20)

	// The hold itself must be covered by the available balance.
	if _, err := uc.projector.ProjectDebit(ctx, input.UserID, link.HoldAvailableAmount, now, nil); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.linkRepo.Create(txCtx, tx, link); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LinksCreated.Inc()
	}

	return link, nil
}

// Redeem consumes a link, transferring its amount from the creator to the
// redeemer. The link's own hold is released for the availability check so a
// link remains redeemable even when it reserves the whole balance.
func (uc *LinkUseCase) Redeem(ctx context.Context, code, redeemerID string) (*TransferResult, error) {
	link, err := uc.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := link.CanRedeem(redeemerID, time.Now().UTC()); err != nil {
		return nil, err
	}

	creator, err := uc.userRepo.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, err
	}

	redeemer, err := uc.userRepo.GetByID(ctx, redeemerID)
	if err != nil {
		return nil, err
	}

	result, err := uc.transfers.execute(ctx, creator, redeemer, link.Amount, link.Memo, link)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, linkCacheKey(code))
	}

	if uc.metrics != nil {
		uc.metrics.LinksRedeemed.Inc()
	}

	return result, nil
}

// GetByCode returns a link for previewing before redemption. Lookups are
// cached; mutations invalidate by code.
func (uc *LinkUseCase) GetByCode(ctx context.Context, code string) (*domain.TransferLink, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, linkCacheKey(code)); err == nil && raw != nil {
			var cached domain.TransferLink
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	link, err := uc.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && !link.IsRedeemed() {
		if raw, err := json.Marshal(link); err == nil {
			ttl := time.Until(link.ValidUntil)
			if ttl > 0 {
				_ = uc.cache.Set(ctx, linkCacheKey(code), raw, ttl)
			}
		}
	}

	return link, nil
}

// ListByUser returns the user's links, newest first.
func (uc *LinkUseCase) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TransferLink, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.linkRepo.ListByUser(ctx, userID, limit, offset)
}

func linkCacheKey(code string) string {
	return "link:code:" + code
}

// generateLinkCode returns a 32-character hex code with 128 bits of entropy.
func generateLinkCode() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("link code entropy source failed: %v", err))
	}

	return hex.EncodeToString(buf)
}
