package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository.
// The ledger_entries table is append-only; no update or delete is exposed.
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Append adds an entry to the log
func (r *ledgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	return appendEntryExec(ctx, r.db, entry)
}

func appendEntryExec(ctx context.Context, ex execer, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, user_id, entry_type, description, amount, profit, wallet_id, wallet_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var profit interface{}
	if entry.Profit != nil {
		profit = entry.Profit.String()
	}
	var walletID interface{}
	if entry.WalletID != nil {
		walletID = *entry.WalletID
	}

	_, err := ex.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Type),
		entry.Description,
		entry.Amount.String(),
		profit,
		walletID,
		entry.WalletName,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

const ledgerColumns = `id, user_id, entry_type, description, amount, profit, wallet_id, wallet_name, created_at`

// ListByUser retrieves a user's entries, most recent first
func (r *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryEntries(ctx, query, userID)
}

// ListByWallet retrieves a wallet's entries within [from, to], oldest first
func (r *ledgerRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, from, to time.Time) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE wallet_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at
	`
	return r.queryEntries(ctx, query, walletID, from, to)
}

// ListByUserWindow retrieves a user's entries within [from, to], oldest first
func (r *ledgerRepository) ListByUserWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at
	`
	return r.queryEntries(ctx, query, userID, from, to)
}

func (r *ledgerRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanLedgerEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var entryType string
	var amountStr string
	var profitStr sql.NullString
	var walletID sql.NullString
	var walletName sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entryType,
		&entry.Description,
		&amountStr,
		&profitStr,
		&walletID,
		&walletName,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	entry.Type = domain.EntryType(entryType)
	if entry.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if entry.Profit, err = parseNullDecimal(profitStr); err != nil {
		return nil, fmt.Errorf("failed to parse profit: %w", err)
	}
	if walletID.Valid {
		id, err := uuid.Parse(walletID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse wallet_id: %w", err)
		}
		entry.WalletID = &id
	}
	if walletName.Valid {
		entry.WalletName = walletName.String
	}

	return &entry, nil
}
