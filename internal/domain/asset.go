package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Asset represents a row in the price reference table. The accounting engine
// only reads CurrentPrice; the market statistics are display data maintained
// by the seeding/admin surface.
type Asset struct {
	Name         string // primary key, e.g. "Bitcoin"
	Symbol       string // e.g. "BTC"
	CurrentPrice decimal.Decimal
	Change24h    *decimal.Decimal
	MarketCap    *decimal.Decimal
	Volume24h    *decimal.Decimal
	UpdatedAt    time.Time
}

// Validate ensures the asset adheres to domain rules.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	if a.CurrentPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("asset price must be positive")
	}
	return nil
}

// ExchangeRate represents a fiat display-conversion quote (e.g. USD).
// Rates are append-only; reads return the most recent entry. The rate is a
// pure view-layer transform and never feeds the accounting engine.
type ExchangeRate struct {
	Currency string
	Rate     decimal.Decimal
	Date     time.Time
}

// Validate ensures the exchange rate adheres to domain rules.
func (e *ExchangeRate) Validate() error {
	if e.Currency == "" {
		return errors.New("currency cannot be empty")
	}
	if e.Rate.LessThanOrEqual(decimal.Zero) {
		return errors.New("rate must be positive")
	}
	return nil
}
