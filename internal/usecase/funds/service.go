package funds

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
	"github.com/hugodutra/cryptofolio-backend/internal/lock"
)

var oneHundred = decimal.NewFromInt(100)

// Overview aggregates a user's position across all wallets.
type Overview struct {
	CashBalance      decimal.Decimal
	TotalContributed decimal.Decimal
	WalletsValue     decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercent    decimal.Decimal
}

// FundsService handles the user ledger: fiat deposits, withdrawals and the
// cross-wallet overview. Cash movements per user are serialized through a
// per-user mutex and committed with their ledger entry in one transaction.
type FundsService struct {
	UserRepo   domain.UserRepository
	WalletRepo domain.WalletRepository
	AssetRepo  domain.AssetRepository
	Store      domain.AccountingStore

	userLocks *lock.KeyedMutex
}

// NewFundsService creates a new FundsService instance
func NewFundsService(
	userRepo domain.UserRepository,
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	store domain.AccountingStore,
) *FundsService {
	return &FundsService{
		UserRepo:   userRepo,
		WalletRepo: walletRepo,
		AssetRepo:  assetRepo,
		Store:      store,
		userLocks:  lock.NewKeyedMutex(),
	}
}

// Deposit adds amount to the user's free cash balance and appends a deposit
// ledger entry. Returns the new balance.
func (s *FundsService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := user.Credit(amount); err != nil {
		return decimal.Zero, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.EntryTypeDeposit,
		Description: fmt.Sprintf("Deposited %s", amount.StringFixed(2)),
		Amount:      amount,
		Timestamp:   time.Now(),
	}

	if err := s.Store.SaveCashMovement(ctx, user, entry); err != nil {
		return decimal.Zero, err
	}

	return user.CashBalance, nil
}

// Withdraw removes amount from the user's free cash balance and appends a
// withdraw ledger entry. Fails with ErrInsufficientFunds when the balance
// cannot cover the amount, leaving state untouched. Returns the new balance.
func (s *FundsService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := user.Debit(amount); err != nil {
		return decimal.Zero, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.EntryTypeWithdraw,
		Description: fmt.Sprintf("Withdrew %s", amount.StringFixed(2)),
		Amount:      amount,
		Timestamp:   time.Now(),
	}

	if err := s.Store.SaveCashMovement(ctx, user, entry); err != nil {
		return decimal.Zero, err
	}

	return user.CashBalance, nil
}

// GetOverview computes the user's aggregate position: free cash plus the
// repriced value, contribution and profit summed over every wallet.
func (s *FundsService) GetOverview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallets, err := s.WalletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	walletsValue := decimal.Zero
	contributed := decimal.Zero
	for _, w := range wallets {
		balance := w.BalanceWith(prices, now)
		walletsValue = walletsValue.Add(balance.TotalValue)
		contributed = contributed.Add(balance.TotalContributed)
	}

	profit := walletsValue.Sub(contributed)
	profitPercent := decimal.Zero
	if contributed.IsPositive() {
		profitPercent = profit.Div(contributed).Mul(oneHundred)
	}

	return &Overview{
		CashBalance:      user.CashBalance,
		TotalContributed: contributed,
		WalletsValue:     walletsValue,
		Profit:           profit,
		ProfitPercent:    profitPercent,
	}, nil
}
