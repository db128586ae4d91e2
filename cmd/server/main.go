package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hugodutra/cryptofolio-backend/internal/adapter/httpapi"
	"github.com/hugodutra/cryptofolio-backend/internal/adapter/repository/postgres"
	"github.com/hugodutra/cryptofolio-backend/internal/config"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/accounting"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/auth"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/charts"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/funds"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/history"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/seeder"
	"github.com/hugodutra/cryptofolio-backend/internal/usecase/wallet"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Setup database
	db, err := postgres.NewDB(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Initialize repositories (Postgres)
	userRepo := postgres.NewUserRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	rateRepo := postgres.NewExchangeRateRepository(db)
	accountingStore := postgres.NewAccountingStore(db)

	// 4. Initialize services (use cases)
	authService := auth.NewAuthService(userRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenExpiry)
	accountingService := accounting.NewAccountingService(userRepo, walletRepo, assetRepo, accountingStore)
	fundsService := funds.NewFundsService(userRepo, walletRepo, assetRepo, accountingStore)
	walletService := wallet.NewWalletService(walletRepo, assetRepo, ledgerRepo)
	historyService := history.NewHistoryService(ledgerRepo)
	chartsService := charts.NewChartsService(walletRepo, assetRepo, ledgerRepo)

	// Seed the price reference table and run it
	assetSeeder := seeder.NewAssetSeeder(assetRepo)
	if err := assetSeeder.Seed(context.Background()); err != nil {
		log.Fatalf("Failed to seed reference assets: %v", err)
	}
	log.Println("Reference assets seeded successfully")

	// 5. Start HTTP server
	server := httpapi.NewServer(
		&httpapi.ServerConfig{
			Addr:              cfg.Server.Addr(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
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

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(server, cfg)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, cfg *config.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")
}
