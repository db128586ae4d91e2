package charts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// chartPalette is the fixed segment color cycle used by the frontend.
var chartPalette = []string{
	"#00e4ca", "#9b87f5", "#ff9332", "#1199fa", "#2ebd85", "#ff4c4c",
	"#00b8d9", "#6554c0", "#ff8800", "#36b37e", "#ff5630", "#6554c0",
}

// performanceMonths is the window covered by performance charts: the current
// calendar month and the five before it.
const performanceMonths = 6

// PieChart carries the data for an allocation pie chart.
type PieChart struct {
	Labels []string
	Values []decimal.Decimal
	Colors []string
}

// PerformanceSeries carries monthly contributed-vs-balance data points for
// a line or bar chart. Labels are calendar months, oldest first; both series
// are running accumulations over the transaction log.
type PerformanceSeries struct {
	Labels      []string
	Contributed []decimal.Decimal
	Balance     []decimal.Decimal
}

// ChartsService aggregates wallet and ledger data into chart payloads.
// Performance charts are derived purely from the append-only log.
type ChartsService struct {
	WalletRepo domain.WalletRepository
	AssetRepo  domain.AssetRepository
	LedgerRepo domain.LedgerRepository
}

// NewChartsService creates a new ChartsService instance
func NewChartsService(
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	ledgerRepo domain.LedgerRepository,
) *ChartsService {
	return &ChartsService{
		WalletRepo: walletRepo,
		AssetRepo:  assetRepo,
		LedgerRepo: ledgerRepo,
	}
}

// WalletAllocation returns the per-asset allocation pie for one wallet,
// repriced against the current snapshot.
func (s *ChartsService) WalletAllocation(ctx context.Context, userID, walletID uuid.UUID) (*PieChart, error) {
	w, err := s.WalletRepo.GetByID(ctx, walletID, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	view := w.RepricedCopy(prices, time.Now())

	chart := &PieChart{
		Labels: make([]string, 0, len(view.Holdings)),
		Values: make([]decimal.Decimal, 0, len(view.Holdings)),
		Colors: make([]string, 0, len(view.Holdings)),
	}
	for i, h := range view.Holdings {
		chart.Labels = append(chart.Labels, h.AssetName)
		chart.Values = append(chart.Values, h.AllocationPercent)
		chart.Colors = append(chart.Colors, chartPalette[i%len(chartPalette)])
	}
	return chart, nil
}

// OverallAllocation returns each wallet's share of the user's total wallet
// value. An empty portfolio yields an empty chart.
func (s *ChartsService) OverallAllocation(ctx context.Context, userID uuid.UUID) (*PieChart, error) {
	wallets, err := s.WalletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.AssetRepo.PriceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	values := make([]decimal.Decimal, len(wallets))
	total := decimal.Zero
	for i, w := range wallets {
		values[i] = w.BalanceWith(prices, now).TotalValue
		total = total.Add(values[i])
	}

	chart := &PieChart{Labels: []string{}, Values: []decimal.Decimal{}, Colors: []string{}}
	if total.IsZero() {
		return chart, nil
	}

	hundred := decimal.NewFromInt(100)
	for i, w := range wallets {
		chart.Labels = append(chart.Labels, w.Name)
		chart.Values = append(chart.Values, values[i].Div(total).Mul(hundred))
		chart.Colors = append(chart.Colors, chartPalette[i%len(chartPalette)])
	}
	return chart, nil
}

// WalletPerformance aggregates the wallet's buy and sell entries into the
// six-month contributed-vs-balance series.
func (s *ChartsService) WalletPerformance(ctx context.Context, userID, walletID uuid.UUID) (*PerformanceSeries, error) {
	// Ownership check before touching the log.
	if _, err := s.WalletRepo.GetByID(ctx, walletID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	from := monthStart(now).AddDate(0, -(performanceMonths - 1), 0)

	entries, err := s.LedgerRepo.ListByWallet(ctx, walletID, from, now)
	if err != nil {
		return nil, err
	}

	return aggregate(entries, from, now, false), nil
}

// OverallPerformance aggregates the user's complete log, deposits and
// withdrawals included, into the six-month series.
func (s *ChartsService) OverallPerformance(ctx context.Context, userID uuid.UUID) (*PerformanceSeries, error) {
	now := time.Now()
	from := monthStart(now).AddDate(0, -(performanceMonths - 1), 0)

	entries, err := s.LedgerRepo.ListByUserWindow(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}

	return aggregate(entries, from, now, true), nil
}

// aggregate walks calendar months from 'from' through 'to' accumulating the
// ledger into the two running series. Buys add their cost to both series; a
// sell removes the cost basis of the sold units from the balance (proceeds
// minus realized profit). Deposits and withdrawals only participate in the
// overall chart.
func aggregate(entries []*domain.LedgerEntry, from, to time.Time, includeCash bool) *PerformanceSeries {
	series := &PerformanceSeries{}

	contributed := decimal.Zero
	balance := decimal.Zero

	for month := monthStart(from); !month.After(to); month = month.AddDate(0, 1, 0) {
		for _, e := range entries {
			if e.Timestamp.Year() != month.Year() || e.Timestamp.Month() != month.Month() {
				continue
			}
			switch e.Type {
			case domain.EntryTypeBuy:
				contributed = contributed.Add(e.Amount)
				balance = balance.Add(e.Amount)
			case domain.EntryTypeSell:
				realized := decimal.Zero
				if e.Profit != nil {
					realized = *e.Profit
				}
				balance = balance.Sub(e.Amount.Sub(realized))
			case domain.EntryTypeDeposit:
				if includeCash {
					balance = balance.Add(e.Amount)
				}
			case domain.EntryTypeWithdraw:
				if includeCash {
					balance = balance.Sub(e.Amount)
				}
			}
		}

		series.Labels = append(series.Labels, monthLabel(month))
		series.Contributed = append(series.Contributed, contributed)
		series.Balance = append(series.Balance, balance)
	}

	return series
}

// monthStart truncates t to the first instant of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthLabel formats a month as "Jan/26".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s/%02d", t.Month().String()[:3], t.Year()%100)
}
