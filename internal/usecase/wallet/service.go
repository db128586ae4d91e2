package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// WalletService handles wallet lifecycle and read views. Every operation is
// scoped by the owning user's ID; reads return wallets repriced against the
// current reference snapshot without persisting the refreshed values.
type WalletService struct {
	WalletRepo domain.WalletRepository
	AssetRepo  domain.AssetRepository
	LedgerRepo domain.LedgerRepository
}

// NewWalletService creates a new WalletService instance
func NewWalletService(
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	ledgerRepo domain.LedgerRepository,
) *WalletService {
	return &WalletService{
		WalletRepo: walletRepo,
		AssetRepo:  assetRepo,
		LedgerRepo: ledgerRepo,
	}
}

// Create creates an empty wallet for the user and appends a creation entry
// to the transaction log.
func (s *WalletService) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Wallet, error) {
	w := &domain.Wallet{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             name,
		Holdings:         []domain.Holding{},
		TotalValue:       decimal.Zero,
		TotalContributed: decimal.Zero,
		Profit:           decimal.Zero,
		ProfitPercent:    decimal.Zero,
		CreatedAt:        time.Now(),
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	if err := s.WalletRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.EntryTypeCreation,
		Description: fmt.Sprintf("Created wallet %s", name),
		Amount:      decimal.Zero,
		WalletID:    &w.ID,
		WalletName:  name,
		Timestamp:   time.Now(),
	}
	if err := s.LedgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return w, nil
}

// Get returns the user's wallet repriced against the current snapshot.
func (s *WalletService) Get(ctx context.Context, userID, walletID uuid.UUID) (*domain.Wallet, error) {
	w, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	return w.RepricedCopy(prices, time.Now()), nil
}

// List returns all of the user's wallets repriced against the current snapshot.
func (s *WalletService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	wallets, err := s.WalletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]*domain.Wallet, len(wallets))
	for i, w := range wallets {
		views[i] = w.RepricedCopy(prices, now)
	}
	return views, nil
}

// ListAssets returns the wallet's repriced holdings.
func (s *WalletService) ListAssets(ctx context.Context, userID, walletID uuid.UUID) ([]domain.Holding, error) {
	view, err := s.Get(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	return view.Holdings, nil
}
