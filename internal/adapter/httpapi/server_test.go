package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/accounting"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/auth"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/charts"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/funds"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/history"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/wallet"
)

// In-memory repositories backing a full server for handler tests.

type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	wallets map[uuid.UUID]*domain.Wallet
	assets  map[string]*domain.Asset
	entries []*domain.LedgerEntry
	rates   []*domain.ExchangeRate
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]*domain.User),
		wallets: make(map[uuid.UUID]*domain.Wallet),
		assets:  make(map[string]*domain.Asset),
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	c.Holdings = make([]domain.Holding, len(w.Holdings))
	copy(c.Holdings, w.Holdings)
	return &c
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = copyUser(u)
	return nil
}

func (m *memStore) Save(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.users[u.ID] = copyUser(u)
	return nil
}

type memWalletRepo struct{ store *memStore }

func (m *memWalletRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Wallet, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if w, ok := m.store.wallets[id]; ok && w.UserID == ownerID {
		return copyWallet(w), nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *memWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.wallets[w.ID] = copyWallet(w)
	return nil
}

func (m *memWalletRepo) Save(ctx context.Context, w *domain.Wallet) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.wallets[w.ID]; !ok {
		return domain.ErrWalletNotFound
	}
	m.store.wallets[w.ID] = copyWallet(w)
	return nil
}

func (m *memWalletRepo) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.Wallet
	for _, w := range m.store.wallets {
		if w.UserID == ownerID {
			out = append(out, copyWallet(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memAssetRepo struct{ store *memStore }

func (m *memAssetRepo) GetByName(ctx context.Context, name string) (*domain.Asset, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if a, ok := m.store.assets[name]; ok {
		c := *a
		return &c, nil
	}
	return nil, domain.ErrAssetNotFound
}

func (m *memAssetRepo) List(ctx context.Context) ([]*domain.Asset, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.Asset
	for _, a := range m.store.assets {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memAssetRepo) Upsert(ctx context.Context, a *domain.Asset) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := *a
	m.store.assets[a.Name] = &c
	return nil
}

func (m *memAssetRepo) Delete(ctx context.Context, name string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.assets[name]; !ok {
		return domain.ErrAssetNotFound
	}
	delete(m.store.assets, name)
	return nil
}

func (m *memAssetRepo) PriceSnapshot(ctx context.Context) (map[string]decimal.Decimal, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	prices := make(map[string]decimal.Decimal, len(m.store.assets))
	for name, a := range m.store.assets {
		prices[name] = a.CurrentPrice
	}
	return prices, nil
}

type memLedgerRepo struct{ store *memStore }

func (m *memLedgerRepo) Append(ctx context.Context, e *domain.LedgerEntry) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := *e
	m.store.entries = append(m.store.entries, &c)
	return nil
}

func (m *memLedgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LedgerEntry, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.LedgerEntry
	for i := len(m.store.entries) - 1; i >= 0; i-- {
		if m.store.entries[i].UserID == userID {
			c := *m.store.entries[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, from, to time.Time) ([]*domain.LedgerEntry, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.LedgerEntry
	for _, e := range m.store.entries {
		if e.WalletID != nil && *e.WalletID == walletID && !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLedgerRepo) ListByUserWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.LedgerEntry, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.LedgerEntry
	for _, e := range m.store.entries {
		if e.UserID == userID && !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type memRateRepo struct{ store *memStore }

func (m *memRateRepo) GetLatest(ctx context.Context, currency string) (*domain.ExchangeRate, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for i := len(m.store.rates) - 1; i >= 0; i-- {
		if m.store.rates[i].Currency == currency {
			c := *m.store.rates[i]
			return &c, nil
		}
	}
	return nil, domain.ErrRateNotFound
}

func (m *memRateRepo) Add(ctx context.Context, r *domain.ExchangeRate) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := *r
	m.store.rates = append(m.store.rates, &c)
	return nil
}

type memAccountingStore struct {
	users   domain.UserRepository
	wallets domain.WalletRepository
	ledger  domain.LedgerRepository
}

func (m *memAccountingStore) SaveTrade(ctx context.Context, u *domain.User, w *domain.Wallet, e *domain.LedgerEntry) error {
	if err := m.users.Save(ctx, u); err != nil {
		return err
	}
	if err := m.wallets.Save(ctx, w); err != nil {
		return err
	}
	return m.ledger.Append(ctx, e)
}

func (m *memAccountingStore) SaveCashMovement(ctx context.Context, u *domain.User, e *domain.LedgerEntry) error {
	if err := m.users.Save(ctx, u); err != nil {
		return err
	}
	return m.ledger.Append(ctx, e)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := newMemStore()
	walletRepo := &memWalletRepo{store: store}
	assetRepo := &memAssetRepo{store: store}
	ledgerRepo := &memLedgerRepo{store: store}
	rateRepo := &memRateRepo{store: store}
	accountingStore := &memAccountingStore{users: store, wallets: walletRepo, ledger: ledgerRepo}

	store.assets["Bitcoin"] = &domain.Asset{Name: "Bitcoin", Symbol: "BTC", CurrentPrice: d("250000"), UpdatedAt: time.Now()}
	store.assets["Ethereum"] = &domain.Asset{Name: "Ethereum", Symbol: "ETH", CurrentPrice: d("12000"), UpdatedAt: time.Now()}

	authService := auth.NewAuthService(store, []byte("test-secret"), time.Hour)
	accountingService := accounting.NewAccountingService(store, walletRepo, assetRepo, accountingStore)
	fundsService := funds.NewFundsService(store, walletRepo, assetRepo, accountingStore)
	walletService := wallet.NewWalletService(walletRepo, assetRepo, ledgerRepo)
	historyService := history.NewHistoryService(ledgerRepo)
	chartsService := charts.NewChartsService(walletRepo, assetRepo, ledgerRepo)

	return NewServer(
		&ServerConfig{
			Addr:              "127.0.0.1:0",
			ReadTimeout:       time.Second,
			WriteTimeout:      time.Second,
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
		authService,
		accountingService,
		fundsService,
		walletService,
		historyService,
		chartsService,
		assetRepo,
		rateRepo,
	)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func register(t *testing.T, s *Server, email string) string {
	t.Helper()

	w := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	register(t, s, "ana@example.com")

	w := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	register(t, s, "dup@example.com")

	w := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"name":     "Other",
		"email":    "dup@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/user"},
		{"GET", "/api/wallets"},
		{"GET", "/api/history"},
		{"GET", "/api/charts/allocation"},
	}

	for _, p := range paths {
		w := doJSON(t, s, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}

	w := doJSON(t, s, "GET", "/api/user", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDepositBuySellFlow(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "flow@example.com")

	// Fund the account
	w := doJSON(t, s, "POST", "/api/user/deposit", token, map[string]string{"amount": "300000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Create a wallet
	w = doJSON(t, s, "POST", "/api/wallets", token, map[string]string{"name": "Long Term"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &created)

	// Buy 1 BTC at 250000
	w = doJSON(t, s, "POST", fmt.Sprintf("/api/wallets/%s/assets", created.ID), token, map[string]string{
		"assetName": "Bitcoin",
		"quantity":  "1",
		"unitPrice": "250000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var buyResp struct {
		RemainingCash decimal.Decimal `json:"remainingCash"`
		Wallet        struct {
			TotalContributed decimal.Decimal `json:"totalContributed"`
		} `json:"wallet"`
	}
	decodeBody(t, w, &buyResp)
	assert.True(t, buyResp.RemainingCash.Equal(d("50000")), "remainingCash = %s", buyResp.RemainingCash)
	assert.True(t, buyResp.Wallet.TotalContributed.Equal(d("250000")))

	// Sell 0.5 BTC at 300000: proceeds 150000, realized profit 25000
	w = doJSON(t, s, "POST", fmt.Sprintf("/api/wallets/%s/sell", created.ID), token, map[string]string{
		"assetName": "Bitcoin",
		"quantity":  "0.5",
		"unitPrice": "300000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sellResp struct {
		RealizedProfit decimal.Decimal `json:"realizedProfit"`
		Proceeds       decimal.Decimal `json:"proceeds"`
	}
	decodeBody(t, w, &sellResp)
	assert.True(t, sellResp.Proceeds.Equal(d("150000")))
	assert.True(t, sellResp.RealizedProfit.Equal(d("25000")))

	// History has deposit, creation, buy and sell entries
	w = doJSON(t, s, "GET", "/api/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []ledgerEntryResponse
	decodeBody(t, w, &entries)
	require.Len(t, entries, 4)
	assert.Equal(t, "sell", entries[0].Type)

	// Overview reflects the remaining position
	w = doJSON(t, s, "GET", "/api/user/overview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview struct {
		CashBalance decimal.Decimal `json:"cashBalance"`
	}
	decodeBody(t, w, &overview)
	assert.True(t, overview.CashBalance.Equal(d("200000")), "cashBalance = %s", overview.CashBalance)
}

func TestBuy_UnknownAsset(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "unknown@example.com")

	doJSON(t, s, "POST", "/api/user/deposit", token, map[string]string{"amount": "1000"})
	w := doJSON(t, s, "POST", "/api/wallets", token, map[string]string{"name": "W"})
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, s, "POST", fmt.Sprintf("/api/wallets/%s/assets", created.ID), token, map[string]string{
		"assetName": "Dogecoin",
		"quantity":  "1",
		"unitPrice": "1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "poor@example.com")

	w := doJSON(t, s, "POST", "/api/user/withdraw", token, map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestWalletOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := register(t, s, "owner@example.com")
	other := register(t, s, "other@example.com")

	w := doJSON(t, s, "POST", "/api/wallets", owner, map[string]string{"name": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, s, "GET", "/api/wallets/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExchangeRateRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "fx@example.com")

	w := doJSON(t, s, "GET", "/api/exchange-rate?currency=USD", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, "POST", "/api/exchange-rate", token, map[string]string{
		"currency": "USD",
		"rate":     "5.43",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, "GET", "/api/exchange-rate?currency=USD", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Rate decimal.Decimal `json:"rate"`
	}
	decodeBody(t, w, &resp)
	assert.True(t, resp.Rate.Equal(d("5.43")))
}

func TestAssetAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "admin@example.com")

	w := doJSON(t, s, "POST", "/api/assets", token, map[string]string{
		"name":         "Solana",
		"symbol":       "SOL",
		"currentPrice": "800",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, "GET", "/api/assets/Solana", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, "DELETE", "/api/assets/Solana", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, "GET", "/api/assets/Solana", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket
	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "10.0.0.2:4321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
