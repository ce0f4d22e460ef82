package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/domain"
)

// balanceTolerance absorbs precision drift when recomputing snapshots over
// long chains.
var balanceTolerance = decimal.RequireFromString("0.0000000001")

// IntegrityIssue is a single violation found while walking a chain.
type IntegrityIssue struct {
	UserID  string
	EntryID string
	Kind    string
	Detail  string
}

// IntegrityReport summarizes a full ledger verification.
type IntegrityReport struct {
	UsersChecked   int
	EntriesChecked int
	Issues         []IntegrityIssue
}

// Consistent reports whether no issues were found.
func (r *IntegrityReport) Consistent() bool {
	return len(r.Issues) == 0
}

// IntegrityUseCase re-derives every chain from scratch and compares the
// stored snapshots against the recomputation.
type IntegrityUseCase struct {
	entryRepo EntryRepository
	userRepo  UserRepository
	calc      *decay.Calculator
}

func NewIntegrityUseCase(entryRepo EntryRepository, userRepo UserRepository, calc *decay.Calculator) *IntegrityUseCase {
	return &IntegrityUseCase{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		calc:      calc,
	}
}

// Verify walks all user chains. It reports issues instead of failing fast so
// one corrupted chain does not hide others.
func (uc *IntegrityUseCase) Verify(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		users, err := uc.userRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			if err := uc.verifyChain(ctx, user.ID, report); err != nil {
				return nil, err
			}
			report.UsersChecked++
		}

		if len(users) < pageSize {
			break
		}
	}

	return report, nil
}

func (uc *IntegrityUseCase) verifyChain(ctx context.Context, userID string, report *IntegrityReport) error {
	chain, err := uc.entryRepo.ListChain(ctx, userID)
	if err != nil {
		return err
	}

	var prev *domain.Entry
	for i, entry := range chain {
		report.EntriesChecked++

		uc.checkLinkage(userID, entry, prev, i, report)
		uc.checkPairing(userID, entry, report)
		uc.checkSign(userID, entry, report)

		if entry.Balance.IsNegative() {
			report.Issues = append(report.Issues, IntegrityIssue{
				UserID:  userID,
				EntryID: entry.ID,
				Kind:    "negative_balance",
				Detail:  fmt.Sprintf("balance %s below zero", entry.Balance),
			})
		}

		if err := uc.checkSnapshot(userID, entry, prev, report); err != nil {
			return err
		}

		prev = entry
	}

	return nil
}

func (uc *IntegrityUseCase) checkLinkage(userID string, entry, prev *domain.Entry, index int, report *IntegrityReport) {
	if index == 0 {
		if entry.PreviousEntryID != nil {
			report.Issues = append(report.Issues, IntegrityIssue{
				UserID:  userID,
				EntryID: entry.ID,
				Kind:    "broken_chain",
				Detail:  "first entry references a previous entry",
			})
		}
		return
	}

	if entry.PreviousEntryID == nil || *entry.PreviousEntryID != prev.ID {
		report.Issues = append(report.Issues, IntegrityIssue{
			UserID:  userID,
			EntryID: entry.ID,
			Kind:    "broken_chain",
			Detail:  fmt.Sprintf("previous entry reference does not match chain order (want %s)", prev.ID),
		})
	}

	if entry.BalanceDate.Before(prev.BalanceDate) {
		report.Issues = append(report.Issues, IntegrityIssue{
			UserID:  userID,
			EntryID: entry.ID,
			Kind:    "time_regression",
			Detail:  fmt.Sprintf("balance date %s precedes previous entry's %s", entry.BalanceDate, prev.BalanceDate),
		})
	}
}

func (uc *IntegrityUseCase) checkPairing(userID string, entry *domain.Entry, report *IntegrityReport) {
	if entry.Kind != domain.EntryKindSend && entry.Kind != domain.EntryKindReceive {
		return
	}

	if entry.LinkedEntryID == nil || entry.LinkedUserID == nil {
		report.Issues = append(report.Issues, IntegrityIssue{
			UserID:  userID,
			EntryID: entry.ID,
			Kind:    "unpaired_transfer",
			Detail:  fmt.Sprintf("%s entry is missing its counterpart reference", entry.Kind),
		})
	}
}

// checkSign enforces the amount sign convention: SEND entries are negative,
// CREATION and RECEIVE entries positive.
func (uc *IntegrityUseCase) checkSign(userID string, entry *domain.Entry, report *IntegrityReport) {
	wrong := entry.Amount.IsPositive()
	if entry.Kind != domain.EntryKindSend {
		wrong = entry.Amount.IsNegative()
	}

	if wrong {
		report.Issues = append(report.Issues, IntegrityIssue{
			UserID:  userID,
			EntryID: entry.ID,
			Kind:    "sign_mismatch",
			Detail:  fmt.Sprintf("%s entry has amount %s with the wrong sign", entry.Kind, entry.Amount),
		})
	}
}

func (uc *IntegrityUseCase) checkSnapshot(userID string, entry, prev *domain.Entry, report *IntegrityReport) error {
	opening := decimal.Zero
	openingDate := entry.BalanceDate
	if prev != nil {
		opening = prev.Balance
		openingDate = prev.BalanceDate
	}

	if entry.BalanceDate.Before(openingDate) {
		// Already reported as time_regression; the snapshot cannot be
		// recomputed over a negative interval.
		return nil
	}

	res, err := uc.calc.Decay(opening, openingDate, entry.BalanceDate)
	if err != nil {
		return err
	}

	expected := res.Balance.Add(entry.Amount)

	if expected.Sub(entry.Balance).Abs().GreaterThan(balanceTolerance) {
		report.Issues = append(report.Issues, IntegrityIssue{
			UserID:  userID,
			EntryID: entry.ID,
			Kind:    "balance_mismatch",
			Detail:  fmt.Sprintf("stored balance %s, recomputed %s", entry.Balance, expected),
		})
	}

	return nil
}
