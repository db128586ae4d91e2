package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
	"github.com/hugodutra/cryptofolio-backend/internal/lock"
)

// BuyResult is returned by Buy: a confirmation message, the user's remaining
// cash balance and the updated wallet snapshot.
type BuyResult struct {
	Message       string
	RemainingCash decimal.Decimal
	Wallet        *domain.Wallet
}

// SellResult is returned by Sell with the realized profit/loss and proceeds.
type SellResult struct {
	Message        string
	RealizedProfit decimal.Decimal
	Proceeds       decimal.Decimal
}

// AccountingService is the wallet accounting engine: it owns the buy, sell,
// price-refresh and balance operations and their invariants. Operations on
// the same wallet are serialized through a per-wallet mutex, and each
// operation's cross-entity writes go through the AccountingStore in a single
// storage transaction.
type AccountingService struct {
	UserRepo   domain.UserRepository
	WalletRepo domain.WalletRepository
	AssetRepo  domain.AssetRepository
	Store      domain.AccountingStore

	walletLocks *lock.KeyedMutex
}

// NewAccountingService creates a new AccountingService instance
func NewAccountingService(
	userRepo domain.UserRepository,
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	store domain.AccountingStore,
) *AccountingService {
	return &AccountingService{
		UserRepo:    userRepo,
		WalletRepo:  walletRepo,
		AssetRepo:   assetRepo,
		Store:       store,
		walletLocks: lock.NewKeyedMutex(),
	}
}

// Buy purchases quantity units of assetName at unitPrice into the wallet.
// Logic:
//  1. Validate quantity and unit price are positive
//  2. Load wallet (ownership-checked), user and the asset's reference price;
//     a symbol missing from the price table fails with ErrAssetNotFound
//  3. Debit the cost from the user's cash balance (ErrInsufficientFunds if
//     it cannot cover) and add it to the lifetime contribution
//  4. Merge the position at weighted-average cost and recompute the wallet
//  5. Append a buy ledger entry and commit everything atomically
func (s *AccountingService) Buy(ctx context.Context, userID, walletID uuid.UUID, assetName string, quantity, unitPrice decimal.Decimal) (*BuyResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	s.walletLocks.Lock(walletID)
	defer s.walletLocks.Unlock(walletID)

	wallet, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	asset, err := s.AssetRepo.GetByName(ctx, assetName)
	if err != nil {
		return nil, err
	}

	cost := quantity.Mul(unitPrice)
	if err := user.Debit(cost); err != nil {
		return nil, err
	}
	user.LifetimeContribution = user.LifetimeContribution.Add(cost)

	if err := wallet.ApplyBuy(assetName, quantity, unitPrice, asset.CurrentPrice); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.EntryTypeBuy,
		Description: fmt.Sprintf("Bought %s %s", quantity.String(), assetName),
		Amount:      cost,
		WalletID:    &walletID,
		WalletName:  wallet.Name,
		Timestamp:   time.Now(),
	}

	if err := s.Store.SaveTrade(ctx, user, wallet, entry); err != nil {
		return nil, err
	}

	return &BuyResult{
		Message:       fmt.Sprintf("Purchase of %s %s completed", quantity.String(), assetName),
		RemainingCash: user.CashBalance,
		Wallet:        wallet,
	}, nil
}

// Sell disposes of quantity units of assetName at unitPrice.
// The realized profit/loss is priced against the position's average cost.
// The proceeds are credited to the user's cash balance; the lifetime
// contribution is not reduced; it tracks cumulative capital deployed,
// not the net position.
func (s *AccountingService) Sell(ctx context.Context, userID, walletID uuid.UUID, assetName string, quantity, unitPrice decimal.Decimal) (*SellResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	s.walletLocks.Lock(walletID)
	defer s.walletLocks.Unlock(walletID)

	wallet, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proceeds, realized, err := wallet.ApplySell(assetName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	if err := user.Credit(proceeds); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.EntryTypeSell,
		Description: fmt.Sprintf("Sold %s %s", quantity.String(), assetName),
		Amount:      proceeds,
		Profit:      &realized,
		WalletID:    &walletID,
		WalletName:  wallet.Name,
		Timestamp:   time.Now(),
	}

	if err := s.Store.SaveTrade(ctx, user, wallet, entry); err != nil {
		return nil, err
	}

	var outcome string
	if realized.IsNegative() {
		outcome = fmt.Sprintf("loss of %s", realized.Abs().StringFixed(2))
	} else {
		outcome = fmt.Sprintf("profit of %s", realized.StringFixed(2))
	}

	return &SellResult{
		Message:        fmt.Sprintf("Sale of %s %s completed with a %s", quantity.String(), assetName, outcome),
		RealizedProfit: realized,
		Proceeds:       proceeds,
	}, nil
}

// RefreshPrices refreshes every holding's cached price from the reference
// table and recomputes the wallet's derived fields. Assets missing from the
// table keep their previously cached price. Pure recomputation: no user
// balance change and no ledger entry.
func (s *AccountingService) RefreshPrices(ctx context.Context, userID, walletID uuid.UUID) (*domain.Wallet, error) {
	s.walletLocks.Lock(walletID)
	defer s.walletLocks.Unlock(walletID)

	wallet, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	wallet.Reprice(prices, time.Now())

	if err := s.WalletRepo.Save(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetBalance returns the wallet's derived totals computed against the
// current price snapshot without mutating stored state.
func (s *AccountingService) GetBalance(ctx context.Context, userID, walletID uuid.UUID) (*domain.Balance, error) {
	wallet, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	balance := wallet.BalanceWith(prices, time.Now())
	return &balance, nil
}
