package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet() *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Long Term",
		CreatedAt: time.Now(),
	}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestApplyBuy_FirstPurchaseCreatesHolding(t *testing.T) {
	w := newTestWallet()

	err := w.ApplyBuy("Bitcoin", d("0.5"), d("250000"), d("250000"))
	require.NoError(t, err)

	h, ok := w.Holding("Bitcoin")
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(d("0.5")))
	assert.True(t, h.AverageCost.Equal(d("250000")))
	assert.True(t, h.CostBasis.Equal(d("125000")))
	require.NotNil(t, h.CurrentPrice)
	assert.True(t, h.CurrentPrice.Equal(d("250000")))

	assert.True(t, w.TotalContributed.Equal(d("125000")))
	assert.True(t, w.TotalValue.Equal(d("125000")))
	assert.True(t, w.Profit.IsZero())
}

func TestApplyBuy_WeightedAverageMerge(t *testing.T) {
	// Holding 0.5 BTC at average 250000; buying 0.5 more at 270000 must
	// land on quantity 1.0 with average 260000.
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("0.5"), d("250000"), d("250000")))

	err := w.ApplyBuy("Bitcoin", d("0.5"), d("270000"), d("265000"))
	require.NoError(t, err)

	h, ok := w.Holding("Bitcoin")
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(d("1")))
	assert.True(t, h.AverageCost.Equal(d("260000")), "got %s", h.AverageCost)
	assert.True(t, h.CostBasis.Equal(d("260000")))
	// Cached price follows the reference table, not the trade price.
	assert.True(t, h.CurrentPrice.Equal(d("265000")))
}

func TestApplyBuy_AverageCostIsWeightedMeanOfAllBuys(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Ethereum", d("2"), d("3000"), d("3000")))
	require.NoError(t, w.ApplyBuy("Ethereum", d("1"), d("3600"), d("3600")))
	require.NoError(t, w.ApplyBuy("Ethereum", d("3"), d("3200"), d("3200")))

	// (2*3000 + 1*3600 + 3*3200) / 6 = 19200 / 6 = 3200
	h, _ := w.Holding("Ethereum")
	assert.True(t, h.AverageCost.Equal(d("3200")), "got %s", h.AverageCost)
}

func TestApplyBuy_RejectsNonPositiveInput(t *testing.T) {
	w := newTestWallet()
	assert.ErrorIs(t, w.ApplyBuy("Bitcoin", decimal.Zero, d("100"), d("100")), ErrInvalidAmount)
	assert.ErrorIs(t, w.ApplyBuy("Bitcoin", d("1"), decimal.Zero, d("100")), ErrInvalidAmount)
	assert.ErrorIs(t, w.ApplyBuy("Bitcoin", d("-1"), d("100"), d("100")), ErrInvalidAmount)
}

func TestApplySell_RealizedProfitUsesAverageCost(t *testing.T) {
	// Selling 0.2 BTC at 300000 from a 260000 average must realize
	// 0.2 * (300000 - 260000) = 8000, regardless of the reference price.
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("290000")))

	proceeds, realized, err := w.ApplySell("Bitcoin", d("0.2"), d("300000"))
	require.NoError(t, err)

	assert.True(t, proceeds.Equal(d("60000")))
	assert.True(t, realized.Equal(d("8000")), "got %s", realized)
}

func TestApplySell_AverageCostUnchangedForRemainder(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("260000")))

	_, _, err := w.ApplySell("Bitcoin", d("0.4"), d("300000"))
	require.NoError(t, err)

	h, ok := w.Holding("Bitcoin")
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(d("0.6")))
	assert.True(t, h.AverageCost.Equal(d("260000")))
	assert.True(t, h.CostBasis.Equal(d("156000")))
}

func TestApplySell_FullSellRemovesHolding(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Solana", d("10"), d("150"), d("150")))
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("260000")))

	_, _, err := w.ApplySell("Solana", d("10"), d("180"))
	require.NoError(t, err)

	_, ok := w.Holding("Solana")
	assert.False(t, ok, "fully sold holding must be removed")
	assert.Len(t, w.Holdings, 1)
}

func TestApplySell_Preconditions(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("0.5"), d("260000"), d("260000")))

	_, _, err := w.ApplySell("Ethereum", d("1"), d("3000"))
	assert.ErrorIs(t, err, ErrAssetNotInWallet)

	_, _, err = w.ApplySell("Bitcoin", d("0.6"), d("300000"))
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	_, _, err = w.ApplySell("Bitcoin", d("0.1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Failed preconditions leave the position untouched.
	h, _ := w.Holding("Bitcoin")
	assert.True(t, h.Quantity.Equal(d("0.5")))
}

func TestRecompute_AllocationPercentsSumToHundred(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("0.5"), d("260000"), d("260000")))
	require.NoError(t, w.ApplyBuy("Ethereum", d("10"), d("3000"), d("3000")))
	require.NoError(t, w.ApplyBuy("Solana", d("100"), d("150"), d("150")))

	sum := decimal.Zero
	for _, h := range w.Holdings {
		sum = sum.Add(h.AllocationPercent)
	}
	diff := sum.Sub(d("100")).Abs()
	assert.True(t, diff.LessThan(d("0.0001")), "allocation percents sum to %s", sum)
}

func TestRecompute_ZeroTotalValueLeavesPercentsUnchanged(t *testing.T) {
	w := newTestWallet()
	w.Holdings = []Holding{{
		AssetName:         "Bitcoin",
		Quantity:          d("1"),
		AverageCost:       decimal.Zero,
		CostBasis:         decimal.Zero,
		AllocationPercent: d("100"),
	}}

	w.Recompute()

	assert.True(t, w.TotalValue.IsZero())
	assert.True(t, w.Holdings[0].AllocationPercent.Equal(d("100")),
		"prior percentage must survive a zero total")
	assert.True(t, w.ProfitPercent.IsZero())
}

func TestReprice_UpdatesPricesAndKeepsMissingOnes(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("260000")))
	require.NoError(t, w.ApplyBuy("Obscurecoin", d("100"), d("2"), d("2")))

	now := time.Now()
	w.Reprice(map[string]decimal.Decimal{"Bitcoin": d("280000")}, now)

	btc, _ := w.Holding("Bitcoin")
	require.NotNil(t, btc.CurrentPrice)
	assert.True(t, btc.CurrentPrice.Equal(d("280000")))
	require.NotNil(t, btc.CurrentValue)
	assert.True(t, btc.CurrentValue.Equal(d("280000")))

	// Obscurecoin kept the price cached at buy time.
	obs, _ := w.Holding("Obscurecoin")
	require.NotNil(t, obs.CurrentPrice)
	assert.True(t, obs.CurrentPrice.Equal(d("2")))

	assert.True(t, w.TotalValue.Equal(d("280200")))
	require.NotNil(t, w.LastRefreshedAt)
}

func TestReprice_IdempotentWithoutPriceChange(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("260000")))
	require.NoError(t, w.ApplyBuy("Ethereum", d("5"), d("3000"), d("3000")))

	prices := map[string]decimal.Decimal{"Bitcoin": d("270000"), "Ethereum": d("3100")}
	now := time.Now()

	w.Reprice(prices, now)
	first := *w
	firstHoldings := make([]Holding, len(w.Holdings))
	copy(firstHoldings, w.Holdings)

	w.Reprice(prices, now)

	assert.True(t, w.TotalValue.Equal(first.TotalValue))
	assert.True(t, w.Profit.Equal(first.Profit))
	assert.True(t, w.ProfitPercent.Equal(first.ProfitPercent))
	for i, h := range w.Holdings {
		assert.True(t, h.AllocationPercent.Equal(firstHoldings[i].AllocationPercent))
		assert.True(t, h.CurrentValue.Equal(*firstHoldings[i].CurrentValue))
	}
}

func TestBalanceWith_DoesNotMutateWallet(t *testing.T) {
	w := newTestWallet()
	require.NoError(t, w.ApplyBuy("Bitcoin", d("1"), d("260000"), d("260000")))

	before, _ := w.Holding("Bitcoin")
	balance := w.BalanceWith(map[string]decimal.Decimal{"Bitcoin": d("300000")}, time.Now())

	assert.True(t, balance.TotalValue.Equal(d("300000")))
	assert.True(t, balance.Profit.Equal(d("40000")))

	after, _ := w.Holding("Bitcoin")
	assert.True(t, after.CurrentPrice.Equal(*before.CurrentPrice),
		"projection must not touch stored state")
	assert.True(t, w.TotalValue.Equal(d("260000")))
	assert.Nil(t, w.LastRefreshedAt)
}

func TestWallet_Validate(t *testing.T) {
	w := newTestWallet()
	assert.NoError(t, w.Validate())

	w.Name = ""
	assert.Error(t, w.Validate())

	w = newTestWallet()
	w.UserID = uuid.Nil
	assert.Error(t, w.Validate())

	w = newTestWallet()
	w.Holdings = []Holding{
		{AssetName: "Bitcoin", Quantity: d("1")},
		{AssetName: "Bitcoin", Quantity: d("2")},
	}
	assert.Error(t, w.Validate(), "duplicate asset names must be rejected")
}

func TestUser_DebitCredit(t *testing.T) {
	u := &User{
		ID:          uuid.New(),
		Name:        "Ana",
		Email:       "ana@example.com",
		CashBalance: d("10000"),
	}

	require.NoError(t, u.Debit(d("3000")))
	assert.True(t, u.CashBalance.Equal(d("7000")))

	assert.ErrorIs(t, u.Debit(d("7001")), ErrInsufficientFunds)
	assert.True(t, u.CashBalance.Equal(d("7000")), "failed debit must not mutate")

	assert.ErrorIs(t, u.Credit(decimal.Zero), ErrInvalidAmount)
	require.NoError(t, u.Credit(d("500")))
	assert.True(t, u.CashBalance.Equal(d("7500")))
}

func TestLedgerEntry_Validate(t *testing.T) {
	entry := &LedgerEntry{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      EntryTypeDeposit,
		Amount:    d("100"),
		Timestamp: time.Now(),
	}
	assert.NoError(t, entry.Validate())

	entry.Type = "transfer"
	assert.Error(t, entry.Validate())

	entry.Type = EntryTypeSell
	assert.Error(t, entry.Validate(), "sell entries must carry realized profit")

	profit := d("8000")
	entry.Profit = &profit
	assert.NoError(t, entry.Validate())
}
