package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/domain"
)

// Projection is a user's balance derived from the chain head at a point in
// time. Nothing is persisted; the next appended entry snapshots the same
// numbers.
type Projection struct {
	// AsOf is the instant the projection is valid at.
	AsOf time.Time
	// LastEntryID is the chain head the projection was derived from, nil for
	// an empty chain.
	LastEntryID *string
	// Balance is the decayed book balance at AsOf.
	Balance decimal.Decimal
	// HoldSum is the total reserved by active transfer links.
	HoldSum decimal.Decimal
	// Available is Balance minus HoldSum.
	Available decimal.Decimal
	// Decay describes the decay applied since the last entry.
	Decay decay.Result
}

// Projector derives balances by decaying the last entry's snapshot forward
// and subtracting link holds. It never writes; callers serialize projection
// and the subsequent append through the gate.
type Projector struct {
	entryRepo EntryRepository
	linkRepo  LinkRepository
	calc      *decay.Calculator
}

func NewProjector(entryRepo EntryRepository, linkRepo LinkRepository, calc *decay.Calculator) *Projector {
	return &Projector{
		entryRepo: entryRepo,
		linkRepo:  linkRepo,
		calc:      calc,
	}
}

// Project returns the user's balance at asOf.
func (p *Projector) Project(ctx context.Context, userID string, asOf time.Time) (*Projection, error) {
	return p.project(ctx, userID, asOf, nil)
}

// ProjectDebit verifies that the user can afford a debit of amount at asOf
// and returns the underlying projection. When the debit redeems a transfer
// link, the link's own hold is released for the check. Fails with
// domain.ErrInsufficientBalance before anything is written.
func (p *Projector) ProjectDebit(ctx context.Context, userID string, amount decimal.Decimal, asOf time.Time, redeeming *domain.TransferLink) (*Projection, error) {
	proj, err := p.project(ctx, userID, asOf, redeeming)
	if err != nil {
		return nil, err
	}

	if proj.Available.Sub(amount).IsNegative() {
		return nil, domain.ErrInsufficientBalance
	}

	return proj, nil
}

func (p *Projector) project(ctx context.Context, userID string, asOf time.Time, redeeming *domain.TransferLink) (*Projection, error) {
	proj := &Projection{
		AsOf:    asOf,
		Balance: decimal.Zero,
		HoldSum: decimal.Zero,
		Decay:   decay.Result{Balance: decimal.Zero, Decay: decimal.Zero, End: asOf},
	}

	last, err := p.entryRepo.GetLastByUser(ctx, userID)
	switch {
	case err == nil:
		res, err := p.calc.Decay(last.Balance, last.BalanceDate, asOf)
		if err != nil {
			return nil, err
		}

		proj.LastEntryID = &last.ID
		proj.Balance = res.Balance
		proj.Decay = res
	case errors.Is(err, domain.ErrEntryNotFound):
		// Empty chain, balance stays zero.
	default:
		return nil, err
	}

	holdSum, err := p.linkRepo.SumActiveHolds(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	if redeeming != nil && redeeming.UserID == userID && !redeeming.IsExpired(asOf) && !redeeming.IsRedeemed() {
		holdSum = holdSum.Sub(redeeming.HoldAvailableAmount)
		if holdSum.IsNegative() {
			holdSum = decimal.Zero
		}
	}

	proj.HoldSum = holdSum
	proj.Available = proj.Balance.Sub(holdSum)

	return proj, nil
}
