package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// walletRepository implements domain.WalletRepository.
// A wallet is stored as one row in wallets plus one row per holding in
// wallet_holdings; derived totals are recomputed on load rather than stored.
type walletRepository struct {
	db *DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *DB) domain.WalletRepository {
	return &walletRepository{db: db}
}

// GetByID retrieves a wallet by its ID, checked against the owner.
// A wallet owned by a different user is reported as not found.
func (r *walletRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `
		SELECT id, user_id, name, total_contributed, created_at, last_refreshed_at
		FROM wallets
		WHERE id = $1 AND user_id = $2
	`

	wallet, err := r.scanWallet(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, err
	}

	if err := r.loadHoldings(ctx, wallet); err != nil {
		return nil, err
	}

	wallet.Recompute()
	return wallet, nil
}

// ListByUser retrieves all wallets owned by a user
func (r *walletRepository) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	query := `
		SELECT id, user_id, name, total_contributed, created_at, last_refreshed_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := r.scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	for _, wallet := range wallets {
		if err := r.loadHoldings(ctx, wallet); err != nil {
			return nil, err
		}
		wallet.Recompute()
	}

	return wallets, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *walletRepository) scanWallet(row rowScanner) (*domain.Wallet, error) {
	var wallet domain.Wallet
	var contributedStr string
	var refreshedAt sql.NullTime

	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Name,
		&contributedStr,
		&wallet.CreatedAt,
		&refreshedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if wallet.TotalContributed, err = decimal.NewFromString(contributedStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_contributed: %w", err)
	}
	if refreshedAt.Valid {
		t := refreshedAt.Time
		wallet.LastRefreshedAt = &t
	}

	return &wallet, nil
}

func (r *walletRepository) loadHoldings(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		SELECT asset_name, quantity, average_cost, current_price
		FROM wallet_holdings
		WHERE wallet_id = $1
		ORDER BY asset_name
	`

	rows, err := r.db.QueryContext(ctx, query, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.Holding
		var quantityStr, avgCostStr string
		var priceStr sql.NullString

		if err := rows.Scan(&h.AssetName, &quantityStr, &avgCostStr, &priceStr); err != nil {
			return fmt.Errorf("failed to scan holding: %w", err)
		}

		if h.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return fmt.Errorf("failed to parse quantity: %w", err)
		}
		if h.AverageCost, err = decimal.NewFromString(avgCostStr); err != nil {
			return fmt.Errorf("failed to parse average_cost: %w", err)
		}
		h.CostBasis = h.Quantity.Mul(h.AverageCost)

		if priceStr.Valid {
			price, err := decimal.NewFromString(priceStr.String)
			if err != nil {
				return fmt.Errorf("failed to parse current_price: %w", err)
			}
			h.CurrentPrice = &price
		}

		wallet.Holdings = append(wallet.Holdings, h)
	}
	return rows.Err()
}

// Create creates a new wallet
func (r *walletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, name, total_contributed, created_at, last_refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Name,
		wallet.TotalContributed.String(),
		wallet.CreatedAt,
		nullableTime(wallet.LastRefreshedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// Save persists the wallet's holdings and contributed total in a single
// database transaction: the holding rows are replaced wholesale.
func (r *walletRepository) Save(ctx context.Context, wallet *domain.Wallet) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := saveWalletExec(ctx, dbTx, wallet); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func saveWalletExec(ctx context.Context, ex execer, wallet *domain.Wallet) error {
	updateQuery := `
		UPDATE wallets
		SET total_contributed = $2, last_refreshed_at = $3
		WHERE id = $1
	`

	result, err := ex.ExecContext(ctx, updateQuery,
		wallet.ID,
		wallet.TotalContributed.String(),
		nullableTime(wallet.LastRefreshedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrWalletNotFound
	}

	if _, err := ex.ExecContext(ctx, `DELETE FROM wallet_holdings WHERE wallet_id = $1`, wallet.ID); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	insertQuery := `
		INSERT INTO wallet_holdings (wallet_id, asset_name, quantity, average_cost, current_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, h := range wallet.Holdings {
		var price interface{}
		if h.CurrentPrice != nil {
			price = h.CurrentPrice.String()
		}
		_, err := ex.ExecContext(ctx, insertQuery,
			wallet.ID,
			h.AssetName,
			h.Quantity.String(),
			h.AverageCost.String(),
			price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}

	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
