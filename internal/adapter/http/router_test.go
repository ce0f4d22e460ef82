package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/commledger/internal/adapter/http/handler"
	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/infrastructure/auth"
	"github.com/iho/commledger/internal/usecase"
	"github.com/iho/commledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	env := newRouterEnv(t)
	router := NewRouter(env.cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RequiresAuthentication(t *testing.T) {
	env := newRouterEnv(t)
	router := NewRouter(env.cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNewRouter_AuthenticatedBalance(t *testing.T) {
	env := newRouterEnv(t)
	router := NewRouter(env.cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, env.member))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_ModerationRequiresRole(t *testing.T) {
	env := newRouterEnv(t)
	router := NewRouter(env.cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions/c-1/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, env.member))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member on moderation route, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	env := newRouterEnv(t)
	env.cfg.RateLimit = 1
	env.cfg.RateBurst = 1
	router := NewRouter(env.cfg)

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	env := newRouterEnv(t)
	router := NewRouter(env.cfg)

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/token",
		"GET /api/v1/balance",
		"GET /api/v1/entries/",
		"POST /api/v1/contributions/",
		"POST /api/v1/contributions/{id}/confirm",
		"POST /api/v1/transfers",
		"POST /api/v1/links/",
		"POST /api/v1/links/{code}/redeem",
		"GET /api/v1/ledger/integrity",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

type routerEnv struct {
	cfg    RouterConfig
	member *domain.User
}

func (e *routerEnv) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()

	token, err := e.cfg.JWTManager.Generate(user)
	require.NoError(t, err)

	return token
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	entryRepo := mocks.NewMockEntryRepository()
	contributionRepo := mocks.NewMockContributionRepository()
	linkRepo := mocks.NewMockLinkRepository()
	userRepo := mocks.NewMockUserRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	cache := mocks.NewMockCache()
	notifier := mocks.NewMockNotifier()

	member := &domain.User{ID: "user-member", Email: "member@example.org", Name: "Member", Role: domain.RoleMember}
	require.NoError(t, userRepo.Create(context.Background(), member))

	calc, err := decay.NewCalculator(decimal.RequireFromString("0.50"), nil)
	require.NoError(t, err)

	gate := usecase.NewGate()
	projector := usecase.NewProjector(entryRepo, linkRepo, calc)
	writer := usecase.NewWriter(entryRepo, idGen)

	transferUC := usecase.NewTransferUseCase(txManager, userRepo, linkRepo, outboxRepo, projector, writer, gate, idGen, notifier, nil)
	contributionUC := usecase.NewContributionUseCase(txManager, contributionRepo, userRepo, outboxRepo, projector, writer, gate, idGen, notifier, nil)
	linkUC := usecase.NewLinkUseCase(txManager, userRepo, linkRepo, projector, transferUC, gate, calc, idGen, cache, nil, 0)
	entryUC := usecase.NewEntryUseCase(entryRepo, userRepo, projector)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	integrityUC := usecase.NewIntegrityUseCase(entryRepo, userRepo, calc)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	cfg := RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userUC, jwtManager, nil),
		UserHandler:         handler.NewUserHandler(userUC),
		ContributionHandler: handler.NewContributionHandler(contributionUC),
		TransferHandler:     handler.NewTransferHandler(transferUC),
		LinkHandler:         handler.NewLinkHandler(linkUC),
		EntryHandler:        handler.NewEntryHandler(entryUC),
		IntegrityHandler:    handler.NewIntegrityHandler(integrityUC),
		HealthHandler:       &handler.HealthHandler{},
		JWTManager:          jwtManager,
		Logger:              zerolog.Nop(),
	}

	return &routerEnv{cfg: cfg, member: member}
}
