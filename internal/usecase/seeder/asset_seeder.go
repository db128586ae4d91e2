package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// seedAsset defines one starter row for the price reference table.
type seedAsset struct {
	Name   string
	Symbol string
	Price  string
}

// starterAssets is the reference set installed on first boot. Prices are
// placeholders until the admin surface updates them.
var starterAssets = []seedAsset{
	{"Bitcoin", "BTC", "350000"},
	{"Ethereum", "ETH", "18000"},
	{"Solana", "SOL", "800"},
	{"Cardano", "ADA", "2.50"},
	{"Polkadot", "DOT", "35"},
	{"Chainlink", "LINK", "90"},
}

// AssetSeeder ensures the price reference table has a usable starter set.
type AssetSeeder struct {
	repo domain.AssetRepository
}

// NewAssetSeeder creates a new AssetSeeder instance
func NewAssetSeeder(repo domain.AssetRepository) *AssetSeeder {
	return &AssetSeeder{repo: repo}
}

// Seed inserts every starter asset that is not already present. Existing
// rows are never overwritten, so admin-maintained prices survive restarts.
func (s *AssetSeeder) Seed(ctx context.Context) error {
	for _, sa := range starterAssets {
		_, err := s.repo.GetByName(ctx, sa.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAssetNotFound) {
			return err
		}

		price, err := decimal.NewFromString(sa.Price)
		if err != nil {
			return err
		}

		asset := &domain.Asset{
			Name:         sa.Name,
			Symbol:       sa.Symbol,
			CurrentPrice: price,
			UpdatedAt:    time.Now(),
		}
		if err := asset.Validate(); err != nil {
			return err
		}
		if err := s.repo.Upsert(ctx, asset); err != nil {
			return err
		}
	}
	return nil
}
