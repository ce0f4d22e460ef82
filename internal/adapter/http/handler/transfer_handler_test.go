package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/commledger/internal/adapter/http/dto"
	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
	"github.com/iho/commledger/internal/usecase/mocks"
)

type transferEnv struct {
	handler   *TransferHandler
	entryRepo *mocks.MockEntryRepository
	sender    *domain.User
	recipient *domain.User
}

func newTransferEnv(t *testing.T) *transferEnv {
	t.Helper()

	entryRepo := mocks.NewMockEntryRepository()
	linkRepo := mocks.NewMockLinkRepository()
	userRepo := mocks.NewMockUserRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	notifier := mocks.NewMockNotifier()

	sender := &domain.User{ID: "user-sender", Email: "sender@example.org", Name: "Sender", Role: domain.RoleMember}
	recipient := &domain.User{ID: "user-recipient", Email: "recipient@example.org", Name: "Recipient", Role: domain.RoleMember}
	require.NoError(t, userRepo.Create(context.Background(), sender))
	require.NoError(t, userRepo.Create(context.Background(), recipient))

	calc, err := decay.NewCalculator(decimal.RequireFromString("0.10"), nil)
	require.NoError(t, err)

	gate := usecase.NewGate()
	projector := usecase.NewProjector(entryRepo, linkRepo, calc)
	writer := usecase.NewWriter(entryRepo, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, userRepo, linkRepo, outboxRepo, projector, writer, gate, idGen, notifier, nil)

	return &transferEnv{
		handler:   NewTransferHandler(transferUC),
		entryRepo: entryRepo,
		sender:    sender,
		recipient: recipient,
	}
}

func (e *transferEnv) post(t *testing.T, user *domain.User, req dto.CreateTransferRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	httpReq = httpReq.WithContext(domain.ContextWithUser(httpReq.Context(), user))
	rec := httptest.NewRecorder()

	e.handler.Create(rec, httpReq)

	return rec
}

func seedBalance(t *testing.T, repo *mocks.MockEntryRepository, userID string, balance decimal.Decimal) {
	t.Helper()

	entry := &domain.Entry{
		ID:          "seed-" + userID,
		UserID:      userID,
		Kind:        domain.EntryKindCreation,
		Amount:      balance,
		Balance:     balance,
		BalanceDate: time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), nil, entry))
}

func TestTransferHandler_Create_Success(t *testing.T) {
	env := newTransferEnv(t)
	seedBalance(t, env.entryRepo, env.sender.ID, decimal.NewFromInt(100))

	rec := env.post(t, env.sender, dto.CreateTransferRequest{
		RecipientID: env.recipient.ID,
		Amount:      decimal.NewFromInt(40),
		Memo:        "market day produce",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.TransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "SEND", resp.Send.Kind)
	require.Equal(t, "RECEIVE", resp.Receive.Kind)
	require.Equal(t, env.recipient.ID, resp.Receive.UserID)
	require.True(t, resp.Send.Amount.Equal(decimal.NewFromInt(-40)), "send amount %s", resp.Send.Amount)
	require.True(t, resp.Receive.Amount.Equal(decimal.NewFromInt(40)), "receive amount %s", resp.Receive.Amount)
}

func TestTransferHandler_Create_InsufficientBalance(t *testing.T) {
	env := newTransferEnv(t)
	seedBalance(t, env.entryRepo, env.sender.ID, decimal.NewFromInt(10))

	rec := env.post(t, env.sender, dto.CreateTransferRequest{
		RecipientID: env.recipient.ID,
		Amount:      decimal.NewFromInt(40),
		Memo:        "market day produce",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestTransferHandler_Create_MissingRecipient(t *testing.T) {
	env := newTransferEnv(t)

	rec := env.post(t, env.sender, dto.CreateTransferRequest{
		Amount: decimal.NewFromInt(40),
		Memo:   "market day produce",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferHandler_Create_Unauthenticated(t *testing.T) {
	env := newTransferEnv(t)

	httpReq := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	env.handler.Create(rec, httpReq)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
