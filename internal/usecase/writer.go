package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
)

// Writer appends entries to user chains inside an open transaction. It owns
// the chain invariants: every entry snapshots the projected balance and decay
// of the gap it closes, points at the previous chain head, and SEND/RECEIVE
// pairs reference each other. Callers hold the gate and commit the
// transaction themselves.
type Writer struct {
	entryRepo EntryRepository
	idGen     IDGenerator
}

func NewWriter(entryRepo EntryRepository, idGen IDGenerator) *Writer {
	return &Writer{entryRepo: entryRepo, idGen: idGen}
}

// AppendCreation books a confirmed contribution as a CREATION entry on the
// recipient's chain.
func (w *Writer) AppendCreation(ctx context.Context, tx Transaction, contribution *domain.Contribution, proj *Projection, now time.Time) (*domain.Entry, error) {
	entry := &domain.Entry{
		ID:              w.idGen.Generate(),
		UserID:          contribution.UserID,
		Kind:            domain.EntryKindCreation,
		Memo:            contribution.Memo,
		Amount:          contribution.Amount,
		Balance:         proj.Balance.Add(contribution.Amount),
		Decay:           proj.Decay.Decay,
		DecayStart:      proj.Decay.Start,
		PreviousEntryID: proj.LastEntryID,
		BalanceDate:     now,
		CreatedAt:       now,
	}

	if err := w.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// TransferCommit carries everything needed to book a transfer.
type TransferCommit struct {
	SenderID    string
	RecipientID string
	Amount      decimal.Decimal
	Memo        string
	Sender      *Projection
	Recipient   *Projection
	// Link is set when the transfer redeems a transfer link.
	Link *domain.TransferLink
	Now  time.Time
}

// AppendTransfer books a transfer as a SEND/RECEIVE pair. The SEND is
// inserted first without a counterpart reference, then the RECEIVE pointing
// back at it, and finally the SEND is patched. Readers inside the transaction
// therefore never observe a RECEIVE without its SEND.
func (w *Writer) AppendTransfer(ctx context.Context, tx Transaction, in TransferCommit) (*domain.Entry, *domain.Entry, error) {
	var linkID *string
	if in.Link != nil {
		linkID = &in.Link.ID
	}

	// SEND amounts are stored negative so every entry satisfies
	// balance = decayed previous balance + amount, regardless of kind.
	sendAmount := in.Amount.Neg()

	send := &domain.Entry{
		ID:              w.idGen.Generate(),
		UserID:          in.SenderID,
		Kind:            domain.EntryKindSend,
		Memo:            in.Memo,
		Amount:          sendAmount,
		Balance:         in.Sender.Balance.Add(sendAmount),
		Decay:           in.Sender.Decay.Decay,
		DecayStart:      in.Sender.Decay.Start,
		PreviousEntryID: in.Sender.LastEntryID,
		LinkedUserID:    &in.RecipientID,
		LinkID:          linkID,
		BalanceDate:     in.Now,
		CreatedAt:       in.Now,
	}

	if err := w.entryRepo.Create(ctx, tx, send); err != nil {
		return nil, nil, err
	}

	recv := &domain.Entry{
		ID:              w.idGen.Generate(),
		UserID:          in.RecipientID,
		Kind:            domain.EntryKindReceive,
		Memo:            in.Memo,
		Amount:          in.Amount,
		Balance:         in.Recipient.Balance.Add(in.Amount),
		Decay:           in.Recipient.Decay.Decay,
		DecayStart:      in.Recipient.Decay.Start,
		PreviousEntryID: in.Recipient.LastEntryID,
		LinkedEntryID:   &send.ID,
		LinkedUserID:    &in.SenderID,
		LinkID:          linkID,
		BalanceDate:     in.Now,
		CreatedAt:       in.Now,
	}

	if err := w.entryRepo.Create(ctx, tx, recv); err != nil {
		return nil, nil, err
	}

	if err := w.entryRepo.SetLinkedEntry(ctx, tx, send.ID, recv.ID); err != nil {
		return nil, nil, err
	}

	send.LinkedEntryID = &recv.ID

	return send, recv, nil
}
