package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/chainvault/internal/adapter/http/handler"
	apimiddleware "github.com/iho/chainvault/internal/adapter/http/middleware"
	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
	"github.com/iho/chainvault/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/addresses/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

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
		"POST /api/v1/addresses/",
		"GET /api/v1/addresses/",
		"GET /api/v1/addresses/{address}",
		"GET /api/v1/addresses/{address}/balance",
		"GET /api/v1/addresses/{address}/history",
		"POST /api/v1/process-transaction",
		"POST /api/v1/withdraw",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	const chainID = int64(11155111)

	txManager := mocks.NewMockTransactionManager()
	addressRepo := mocks.NewMockAddressRepository()
	balanceRepo := mocks.NewMockBalanceRepository()
	txRepo := mocks.NewMockTransactionRepository()
	processedRepo := mocks.NewMockProcessedRepository()
	assets := domain.AssetRegistry{Native: "ETH", Token: "USDC"}

	addressUC := usecase.NewAddressUseCase(txManager, addressRepo, &mocks.MockKeyDeriver{})
	balanceUC := usecase.NewBalanceUseCase(addressRepo, balanceRepo, txRepo, chainID)
	depositUC := usecase.NewDepositUseCase(txManager, addressRepo, balanceRepo, txRepo, processedRepo,
		&mocks.MockTransferDetector{}, mocks.NewMockIDGenerator(), chainID)
	historyUC := usecase.NewHistoryUseCase(addressRepo, txRepo, chainID)
	withdrawUC := usecase.NewWithdrawUseCase(txManager, addressRepo, balanceRepo, txRepo, processedRepo,
		&mocks.MockWallet{}, &mocks.MockPendingSink{}, assets, chainID)

	cfg := RouterConfig{
		AddressHandler:     handler.NewAddressHandler(addressUC, "sepolia"),
		BalanceHandler:     handler.NewBalanceHandler(balanceUC, "sepolia", "ETH"),
		TransactionHandler: handler.NewTransactionHandler(depositUC, historyUC, "sepolia", "ETH"),
		WithdrawHandler:    handler.NewWithdrawHandler(withdrawUC, "sepolia"),
		HealthHandler:      &handler.HealthHandler{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
