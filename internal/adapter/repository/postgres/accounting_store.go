package postgres

import (
	"context"
	"fmt"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// accountingStore implements domain.AccountingStore. Each call runs inside
// one database transaction so the user balance, the wallet state and the
// ledger append land together or not at all.
type accountingStore struct {
	db *DB
}

// NewAccountingStore creates a new accounting store
func NewAccountingStore(db *DB) domain.AccountingStore {
	return &accountingStore{db: db}
}

// SaveTrade persists the outcome of a buy or sell
func (s *accountingStore) SaveTrade(ctx context.Context, user *domain.User, wallet *domain.Wallet, entry *domain.LedgerEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := saveUserExec(ctx, dbTx, user); err != nil {
		return err
	}
	if err := saveWalletExec(ctx, dbTx, wallet); err != nil {
		return err
	}
	if err := appendEntryExec(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveCashMovement persists the outcome of a deposit or withdrawal
func (s *accountingStore) SaveCashMovement(ctx context.Context, user *domain.User, entry *domain.LedgerEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := saveUserExec(ctx, dbTx, user); err != nil {
		return err
	}
	if err := appendEntryExec(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
