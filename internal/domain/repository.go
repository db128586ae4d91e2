package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Save persists the user's mutable balance fields
	Save(ctx context.Context, user *User) error
}

// WalletRepository defines the interface for wallet persistence operations.
// Every read is scoped by the owning user: a wallet that exists but belongs
// to another user is reported as ErrWalletNotFound.
type WalletRepository interface {
	// GetByID retrieves a wallet by its ID, checked against the owner
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Wallet, error)

	// Create creates a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// Save persists the wallet's holdings and derived totals
	Save(ctx context.Context, wallet *Wallet) error

	// ListByUser retrieves all wallets owned by a user
	ListByUser(ctx context.Context, ownerID uuid.UUID) ([]*Wallet, error)
}

// AssetRepository defines the interface for the price reference table
type AssetRepository interface {
	// GetByName retrieves an asset by name
	GetByName(ctx context.Context, name string) (*Asset, error)

	// List retrieves all assets
	List(ctx context.Context) ([]*Asset, error)

	// Upsert creates or updates an asset
	Upsert(ctx context.Context, asset *Asset) error

	// Delete removes an asset from the reference table
	Delete(ctx context.Context, name string) error

	// PriceSnapshot returns the current reference price per asset name
	PriceSnapshot(ctx context.Context) (map[string]decimal.Decimal, error)
}

// LedgerRepository defines the interface for the append-only transaction log.
// There is deliberately no update or delete.
type LedgerRepository interface {
	// Append adds an entry to the log
	Append(ctx context.Context, entry *LedgerEntry) error

	// ListByUser retrieves a user's entries, most recent first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*LedgerEntry, error)

	// ListByWallet retrieves a wallet's entries within [from, to],
	// oldest first, for chart aggregation
	ListByWallet(ctx context.Context, walletID uuid.UUID, from, to time.Time) ([]*LedgerEntry, error)

	// ListByUserWindow retrieves a user's entries within [from, to],
	// oldest first, for chart aggregation
	ListByUserWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*LedgerEntry, error)
}

// ExchangeRateRepository defines the interface for fiat display quotes
type ExchangeRateRepository interface {
	// GetLatest retrieves the most recent rate for a currency
	GetLatest(ctx context.Context, currency string) (*ExchangeRate, error)

	// Add appends a new rate entry
	Add(ctx context.Context, rate *ExchangeRate) error
}

// AccountingStore commits the cross-entity writes of one accounting
// operation atomically: the user balance update, the wallet update and the
// ledger append either all land or none do. This closes the partial-write
// window between the user write and the wallet write.
type AccountingStore interface {
	// SaveTrade persists the outcome of a buy or sell
	SaveTrade(ctx context.Context, user *User, wallet *Wallet, entry *LedgerEntry) error

	// SaveCashMovement persists the outcome of a deposit or withdrawal
	SaveCashMovement(ctx context.Context, user *User, entry *LedgerEntry) error
}
