package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByName retrieves an asset by name
func (r *assetRepository) GetByName(ctx context.Context, name string) (*domain.Asset, error) {
	query := `
		SELECT name, symbol, current_price, change_24h, market_cap, volume_24h, updated_at
		FROM assets
		WHERE name = $1
	`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// List retrieves all assets ordered by name
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT name, symbol, current_price, change_24h, market_cap, volume_24h, updated_at
		FROM assets
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var priceStr string
	var changeStr, capStr, volumeStr sql.NullString

	err := row.Scan(
		&asset.Name,
		&asset.Symbol,
		&priceStr,
		&changeStr,
		&capStr,
		&volumeStr,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if asset.CurrentPrice, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("failed to parse current_price: %w", err)
	}
	if asset.Change24h, err = parseNullDecimal(changeStr); err != nil {
		return nil, fmt.Errorf("failed to parse change_24h: %w", err)
	}
	if asset.MarketCap, err = parseNullDecimal(capStr); err != nil {
		return nil, fmt.Errorf("failed to parse market_cap: %w", err)
	}
	if asset.Volume24h, err = parseNullDecimal(volumeStr); err != nil {
		return nil, fmt.Errorf("failed to parse volume_24h: %w", err)
	}

	return &asset, nil
}

func parseNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullDecimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// Upsert creates or updates an asset keyed by name
func (r *assetRepository) Upsert(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (name, symbol, current_price, change_24h, market_cap, volume_24h, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			current_price = EXCLUDED.current_price,
			change_24h = EXCLUDED.change_24h,
			market_cap = EXCLUDED.market_cap,
			volume_24h = EXCLUDED.volume_24h,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.Name,
		asset.Symbol,
		asset.CurrentPrice.String(),
		nullDecimalArg(asset.Change24h),
		nullDecimalArg(asset.MarketCap),
		nullDecimalArg(asset.Volume24h),
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert asset: %w", err)
	}

	return nil
}

// Delete removes an asset from the reference table
func (r *assetRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}

	return nil
}

// PriceSnapshot returns the current reference price per asset name
func (r *assetRepository) PriceSnapshot(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, current_price FROM assets`)
	if err != nil {
		return nil, fmt.Errorf("failed to load price snapshot: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal)
	for rows.Next() {
		var name, priceStr string
		if err := rows.Scan(&name, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		prices[name] = price
	}
	return prices, rows.Err()
}
