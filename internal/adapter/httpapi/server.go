// Package httpapi provides the HTTP API server implementation.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/accounting"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/auth"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/charts"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/funds"
)

// Service interfaces for dependency injection and testing

// AuthServiceInterface defines the interface for auth operations
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	VerifyToken(tokenString string) (uuid.UUID, error)
}

// AccountingServiceInterface defines the interface for the accounting engine
type AccountingServiceInterface interface {
	Buy(ctx context.Context, userID, walletID uuid.UUID, assetName string, quantity, unitPrice decimal.Decimal) (*accounting.BuyResult, error)
	Sell(ctx context.Context, userID, walletID uuid.UUID, assetName string, quantity, unitPrice decimal.Decimal) (*accounting.SellResult, error)
	RefreshPrices(ctx context.Context, userID, walletID uuid.UUID) (*domain.Wallet, error)
	GetBalance(ctx context.Context, userID, walletID uuid.UUID) (*domain.Balance, error)
}

// FundsServiceInterface defines the interface for cash movements
type FundsServiceInterface interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	GetOverview(ctx context.Context, userID uuid.UUID) (*funds.Overview, error)
}

// WalletServiceInterface defines the interface for wallet lifecycle and views
type WalletServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Wallet, error)
	Get(ctx context.Context, userID, walletID uuid.UUID) (*domain.Wallet, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error)
	ListAssets(ctx context.Context, userID, walletID uuid.UUID) ([]domain.Holding, error)
}

// HistoryServiceInterface defines the interface for the transaction log view
type HistoryServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.LedgerEntry, error)
}

// ChartsServiceInterface defines the interface for chart aggregation
type ChartsServiceInterface interface {
	WalletAllocation(ctx context.Context, userID, walletID uuid.UUID) (*charts.PieChart, error)
	OverallAllocation(ctx context.Context, userID uuid.UUID) (*charts.PieChart, error)
	WalletPerformance(ctx context.Context, userID, walletID uuid.UUID) (*charts.PerformanceSeries, error)
	OverallPerformance(ctx context.Context, userID uuid.UUID) (*charts.PerformanceSeries, error)
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server

	authService       AuthServiceInterface
	accountingService AccountingServiceInterface
	fundsService      FundsServiceInterface
	walletService     WalletServiceInterface
	historyService    HistoryServiceInterface
	chartsService     ChartsServiceInterface
	assetRepo         domain.AssetRepository
	rateRepo          domain.ExchangeRateRepository

	config *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	authService AuthServiceInterface,
	accountingService AccountingServiceInterface,
	fundsService FundsServiceInterface,
	walletService WalletServiceInterface,
	historyService HistoryServiceInterface,
	chartsService ChartsServiceInterface,
	assetRepo domain.AssetRepository,
	rateRepo domain.ExchangeRateRepository,
) *Server {
	s := &Server{
		router:            mux.NewRouter(),
		authService:       authService,
		accountingService: accountingService,
		fundsService:      fundsService,
		walletService:     walletService,
		historyService:    historyService,
		chartsService:     chartsService,
		assetRepo:         assetRepo,
		rateRepo:          rateRepo,
		config:            config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Middleware order matters: logging first, rate limiting after CORS
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Public auth endpoints
	s.router.HandleFunc("/api/auth/register", s.handleRegister).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")

	// Everything else requires a valid bearer token
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(s.authService))

	// User ledger endpoints
	api.HandleFunc("/user", s.handleGetMe).Methods("GET")
	api.HandleFunc("/user/overview", s.handleGetOverview).Methods("GET")
	api.HandleFunc("/user/deposit", s.handleDeposit).Methods("POST")
	api.HandleFunc("/user/withdraw", s.handleWithdraw).Methods("POST")

	// Wallet endpoints
	api.HandleFunc("/wallets", s.handleCreateWallet).Methods("POST")
	api.HandleFunc("/wallets", s.handleListWallets).Methods("GET")
	api.HandleFunc("/wallets/{id}", s.handleGetWallet).Methods("GET")
	api.HandleFunc("/wallets/{id}/balance", s.handleGetWalletBalance).Methods("GET")
	api.HandleFunc("/wallets/{id}/assets", s.handleListWalletAssets).Methods("GET")
	api.HandleFunc("/wallets/{id}/assets", s.handleBuy).Methods("POST")
	api.HandleFunc("/wallets/{id}/sell", s.handleSell).Methods("POST")
	api.HandleFunc("/wallets/{id}/refresh", s.handleRefreshPrices).Methods("POST")

	// Transaction log endpoint
	api.HandleFunc("/history", s.handleGetHistory).Methods("GET")

	// Chart endpoints
	api.HandleFunc("/charts/allocation", s.handleOverallAllocation).Methods("GET")
	api.HandleFunc("/charts/performance", s.handleOverallPerformance).Methods("GET")
	api.HandleFunc("/charts/wallets/{id}/allocation", s.handleWalletAllocation).Methods("GET")
	api.HandleFunc("/charts/wallets/{id}/performance", s.handleWalletPerformance).Methods("GET")

	// Price reference table endpoints
	api.HandleFunc("/assets", s.handleListAssets).Methods("GET")
	api.HandleFunc("/assets", s.handleUpsertAsset).Methods("POST")
	api.HandleFunc("/assets/{name}", s.handleGetAsset).Methods("GET")
	api.HandleFunc("/assets/{name}", s.handleDeleteAsset).Methods("DELETE")

	// Exchange rate endpoints
	api.HandleFunc("/exchange-rate", s.handleGetExchangeRate).Methods("GET")
	api.HandleFunc("/exchange-rate", s.handleAddExchangeRate).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "cryptofolio",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
