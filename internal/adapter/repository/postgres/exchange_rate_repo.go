package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// exchangeRateRepository implements domain.ExchangeRateRepository
type exchangeRateRepository struct {
	db *DB
}

// NewExchangeRateRepository creates a new exchange rate repository
func NewExchangeRateRepository(db *DB) domain.ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

// GetLatest retrieves the most recent rate for a currency
func (r *exchangeRateRepository) GetLatest(ctx context.Context, currency string) (*domain.ExchangeRate, error) {
	query := `
		SELECT currency, rate, quoted_at
		FROM exchange_rates
		WHERE currency = $1
		ORDER BY quoted_at DESC
		LIMIT 1
	`

	var rate domain.ExchangeRate
	var rateStr string

	err := r.db.QueryRowContext(ctx, query, currency).Scan(&rate.Currency, &rateStr, &rate.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	if rate.Rate, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("failed to parse rate: %w", err)
	}

	return &rate, nil
}

// Add appends a new rate entry
func (r *exchangeRateRepository) Add(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (currency, rate, quoted_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, rate.Currency, rate.Rate.String(), rate.Date)
	if err != nil {
		return fmt.Errorf("failed to add exchange rate: %w", err)
	}

	return nil
}
