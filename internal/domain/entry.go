package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind describes how a ledger entry moves value.
type EntryKind string

const (
	// EntryKindCreation books a confirmed contribution.
	EntryKindCreation EntryKind = "CREATION"
	// EntryKindSend is the debit half of a transfer.
	EntryKindSend EntryKind = "SEND"
	// EntryKindReceive is the credit half of a transfer.
	EntryKindReceive EntryKind = "RECEIVE"
)

// Entry is an immutable ledger record. Per user, entries form a singly-linked
// chain through PreviousEntryID. Amount is signed: CREATION and RECEIVE
// entries carry positive amounts, SEND entries negative ones, so Balance is
// always the decayed previous balance plus Amount. Balance is the user's
// balance immediately after this entry, computed at BalanceDate with decay
// applied since the previous entry; Decay holds the (negative) amount lost to
// decay over that gap and DecayStart the moment decay began within it.
type Entry struct {
	CreatedAt       time.Time
	BalanceDate     time.Time
	DecayStart      *time.Time
	PreviousEntryID *string
	LinkedEntryID   *string
	LinkedUserID    *string
	LinkID          *string
	ID              string
	UserID          string
	Kind            EntryKind
	Memo            string
	Amount          decimal.Decimal
	Balance         decimal.Decimal
	Decay           decimal.Decimal
}
