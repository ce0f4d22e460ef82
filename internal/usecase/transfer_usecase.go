package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/infrastructure/metrics"
)

// TransferUseCase implements direct transfers between members. Link
// redemptions reuse the same execution path with the link's hold released
// for the balance check.
type TransferUseCase struct {
	txManager  TransactionManager
	userRepo   UserRepository
	linkRepo   LinkRepository
	outboxRepo OutboxRepository
	projector  *Projector
	writer     *Writer
	gate       *Gate
	idGen      IDGenerator
	notifier   Notifier
	metrics    *metrics.Metrics
	retrier    Retrier
}

// WithRetrier retries the transactional part of a transfer on transient
// storage failures. The projection is recomputed on every attempt.
func (uc *TransferUseCase) WithRetrier(retrier Retrier) *TransferUseCase {
	uc.retrier = retrier
	return uc
}

func NewTransferUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	linkRepo LinkRepository,
	outboxRepo OutboxRepository,
	projector *Projector,
	writer *Writer,
	gate *Gate,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		linkRepo:   linkRepo,
		outboxRepo: outboxRepo,
		projector:  projector,
		writer:     writer,
		gate:       gate,
		idGen:      idGen,
		notifier:   notifier,
		metrics:    metrics,
	}
}

// SendTransferInput represents input for a direct transfer. The recipient is
// addressed by ID or by email; ID wins when both are set.
type SendTransferInput struct {
	SenderID       string
	RecipientID    string
	RecipientEmail string
	Amount         decimal.Decimal
	Memo           string
}

// TransferResult is the booked SEND/RECEIVE pair.
type TransferResult struct {
	Send    *domain.Entry
	Receive *domain.Entry
}

// Send moves value from the sender to the recipient.
func (uc *TransferUseCase) Send(ctx context.Context, input SendTransferInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateMemo(input.Memo); err != nil {
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	var recipient *domain.User
	if input.RecipientID != "" {
		recipient, err = uc.userRepo.GetByID(ctx, input.RecipientID)
	} else {
		recipient, err = uc.userRepo.GetByEmail(ctx, input.RecipientEmail)
	}
	if err != nil {
		return nil, err
	}

	return uc.execute(ctx, sender, recipient, input.Amount, input.Memo, nil)
}

// execute books a transfer between two users, optionally consuming a
// transfer link. It serializes through the gate: the availability check and
// the chain append happen with no other mutation in between.
func (uc *TransferUseCase) execute(ctx context.Context, sender, recipient *domain.User, amount decimal.Decimal, memo string, link *domain.TransferLink) (*TransferResult, error) {
	if sender.ID == recipient.ID {
		return nil, domain.ErrSameUser
	}
	if sender.DeletedAt != nil || recipient.DeletedAt != nil {
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

	var send, recv *domain.Entry

	// The projection is recomputed on every attempt so a retried commit
	// never reuses stale chain heads.
	op := func() error {
		now := time.Now().UTC()

		senderProj, err := uc.projector.ProjectDebit(ctx, sender.ID, amount, now, link)
		if err != nil {
			return err
		}

		recipientProj, err := uc.projector.Project(ctx, recipient.ID, now)
		if err != nil {
			return err
		}

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if link != nil {
			// Re-check under the row lock: another process may have
			// redeemed the link after the caller's pre-check.
			locked, err := uc.linkRepo.GetByCodeForUpdate(txCtx, tx, link.Code)
			if err != nil {
				return err
			}
			if err := locked.CanRedeem(recipient.ID, now); err != nil {
				return err
			}
		}

		send, recv, err = uc.writer.AppendTransfer(txCtx, tx, TransferCommit{
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Amount:      amount,
			Memo:        memo,
			Sender:      senderProj,
			Recipient:   recipientProj,
			Link:        link,
			Now:         now,
		})
		if err != nil {
			return err
		}

		if link != nil {
			if err := uc.linkRepo.MarkRedeemed(txCtx, tx, link.ID, recipient.ID, now); err != nil {
				return err
			}
		}

		eventType := domain.EventTypeTransferSent
		payload := map[string]any{
			"send_entry_id":    send.ID,
			"receive_entry_id": recv.ID,
			"sender_id":        sender.ID,
			"recipient_id":     recipient.ID,
			"amount":           amount.String(),
		}
		if link != nil {
			eventType = domain.EventTypeLinkRedeemed
			payload["link_id"] = link.ID
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   send.ID,
			AggregateType: domain.AggregateTypeEntry,
			EventType:     eventType,
			Payload:       payload,
			CreatedAt:     now,
			Published:     false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersBooked.Inc()
		amountFloat, _ := amount.Float64()
		uc.metrics.TransferAmount.Observe(amountFloat)
		uc.metrics.MutationDuration.Observe(time.Since(start).Seconds())
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, domain.EventTypeTransferReceived, map[string]any{
			"recipient_id": recipient.ID,
			"sender_id":    sender.ID,
			"amount":       amount.String(),
			"memo":         memo,
		})
	}

	return &TransferResult{Send: send, Receive: recv}, nil
}
