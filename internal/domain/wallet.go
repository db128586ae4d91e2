package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Holding represents a wallet's position in a single asset.
// AssetName is unique within a wallet and is the merge key for buys.
// CurrentPrice and CurrentValue are nil until a reference price has been
// observed for the asset; until then the position is valued at cost.
type Holding struct {
	AssetName         string
	Quantity          decimal.Decimal
	AverageCost       decimal.Decimal // weighted-average unit acquisition price
	CostBasis         decimal.Decimal // Quantity * AverageCost, maintained incrementally
	AllocationPercent decimal.Decimal // share of wallet total value
	CurrentPrice      *decimal.Decimal
	CurrentValue      *decimal.Decimal
}

// Value returns the holding's current value: Quantity * CurrentPrice when a
// reference price has been observed, otherwise the cost basis. Every total
// on the wallet derives from this single fallback rule.
func (h *Holding) Value() decimal.Decimal {
	if h.CurrentPrice != nil {
		return h.Quantity.Mul(*h.CurrentPrice)
	}
	return h.CostBasis
}

// Wallet represents a named collection of holdings owned by exactly one user.
// TotalValue, Profit and ProfitPercent are derived fields: Recompute makes
// them a pure function of the holdings list and must run after any mutation.
type Wallet struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	Holdings         []Holding
	TotalValue       decimal.Decimal
	TotalContributed decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercent    decimal.Decimal
	CreatedAt        time.Time
	LastRefreshedAt  *time.Time
}

// Validate ensures the wallet adheres to domain rules.
func (w *Wallet) Validate() error {
	if w.Name == "" {
		return errors.New("wallet name cannot be empty")
	}
	if w.UserID == uuid.Nil {
		return errors.New("wallet must have an owner")
	}
	seen := make(map[string]bool, len(w.Holdings))
	for _, h := range w.Holdings {
		if seen[h.AssetName] {
			return errors.New("duplicate holding for asset " + h.AssetName)
		}
		seen[h.AssetName] = true
		if h.Quantity.LessThanOrEqual(decimal.Zero) {
			return errors.New("holding quantity must be positive")
		}
	}
	return nil
}

// holding returns a pointer to the holding for assetName, or nil.
func (w *Wallet) holding(assetName string) *Holding {
	for i := range w.Holdings {
		if w.Holdings[i].AssetName == assetName {
			return &w.Holdings[i]
		}
	}
	return nil
}

// Holding returns a copy of the position in assetName and whether it exists.
func (w *Wallet) Holding(assetName string) (Holding, bool) {
	if h := w.holding(assetName); h != nil {
		return *h, true
	}
	return Holding{}, false
}

// Recompute derives TotalValue, Profit, ProfitPercent and every holding's
// CurrentValue and AllocationPercent from the holdings list.
// Allocation percentages are left unchanged when the total value is zero,
// and the profit percentage is zero when nothing was contributed.
func (w *Wallet) Recompute() {
	total := decimal.Zero
	for i := range w.Holdings {
		h := &w.Holdings[i]
		if h.CurrentPrice != nil {
			v := h.Quantity.Mul(*h.CurrentPrice)
			h.CurrentValue = &v
		}
		total = total.Add(h.Value())
	}

	w.TotalValue = total
	w.Profit = total.Sub(w.TotalContributed)
	if w.TotalContributed.IsPositive() {
		w.ProfitPercent = w.Profit.Div(w.TotalContributed).Mul(oneHundred)
	} else {
		w.ProfitPercent = decimal.Zero
	}

	if total.IsPositive() {
		for i := range w.Holdings {
			w.Holdings[i].AllocationPercent = w.Holdings[i].Value().Div(total).Mul(oneHundred)
		}
	}
}

// ApplyBuy merges a purchase of quantity units at unitPrice into the wallet.
// referencePrice is the asset's current price from the reference table and
// becomes the holding's cached price. An existing position is merged with a
// weighted-average cost basis:
//
//	newAverageCost = (oldCostBasis + quantity*unitPrice) / newQuantity
//
// The cost of the purchase is added to TotalContributed and all derived
// fields are recomputed.
func (w *Wallet) ApplyBuy(assetName string, quantity, unitPrice, referencePrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	cost := quantity.Mul(unitPrice)
	price := referencePrice

	if h := w.holding(assetName); h != nil {
		newQuantity := h.Quantity.Add(quantity)
		newBasis := h.CostBasis.Add(cost)
		h.Quantity = newQuantity
		h.CostBasis = newBasis
		h.AverageCost = newBasis.Div(newQuantity)
		h.CurrentPrice = &price
	} else {
		w.Holdings = append(w.Holdings, Holding{
			AssetName:    assetName,
			Quantity:     quantity,
			AverageCost:  unitPrice,
			CostBasis:    cost,
			CurrentPrice: &price,
		})
	}

	w.TotalContributed = w.TotalContributed.Add(cost)
	w.Recompute()
	return nil
}

// ApplySell removes quantity units of assetName at unitPrice.
// The realized profit/loss is priced against the position's average cost,
// not the current reference price: all lots are fungible at the running
// average. Selling never changes the average cost of the remaining units;
// the holding is removed entirely when its quantity reaches zero.
// Returns the sale proceeds and the realized profit/loss.
func (w *Wallet) ApplySell(assetName string, quantity, unitPrice decimal.Decimal) (proceeds, realized decimal.Decimal, err error) {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}

	h := w.holding(assetName)
	if h == nil {
		return decimal.Zero, decimal.Zero, ErrAssetNotInWallet
	}
	if quantity.GreaterThan(h.Quantity) {
		return decimal.Zero, decimal.Zero, ErrInsufficientQuantity
	}

	proceeds = quantity.Mul(unitPrice)
	realized = proceeds.Sub(quantity.Mul(h.AverageCost))

	h.Quantity = h.Quantity.Sub(quantity)
	h.CostBasis = h.Quantity.Mul(h.AverageCost)

	if h.Quantity.IsZero() {
		for i := range w.Holdings {
			if w.Holdings[i].AssetName == assetName {
				w.Holdings = append(w.Holdings[:i], w.Holdings[i+1:]...)
				break
			}
		}
	}

	w.Recompute()
	return proceeds, realized, nil
}

// Reprice refreshes each holding's cached price from the reference table
// snapshot and recomputes all derived fields. Holdings whose asset is
// missing from the snapshot keep their previously cached price; this is
// never an error.
func (w *Wallet) Reprice(prices map[string]decimal.Decimal, at time.Time) {
	for i := range w.Holdings {
		if p, ok := prices[w.Holdings[i].AssetName]; ok {
			price := p
			w.Holdings[i].CurrentPrice = &price
		}
	}
	w.Recompute()
	w.LastRefreshedAt = &at
}

// Balance is the read-only projection of a wallet's derived totals.
type Balance struct {
	TotalValue       decimal.Decimal
	TotalContributed decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercent    decimal.Decimal
}

// RepricedCopy returns a deep copy of the wallet repriced against the given
// snapshot, leaving the stored wallet untouched. Used for read-only views.
func (w *Wallet) RepricedCopy(prices map[string]decimal.Decimal, at time.Time) *Wallet {
	clone := *w
	clone.Holdings = make([]Holding, len(w.Holdings))
	copy(clone.Holdings, w.Holdings)
	clone.Reprice(prices, at)
	return &clone
}

// BalanceWith computes the wallet's balance against a price snapshot without
// mutating the wallet: Reprice applied transiently to a copy.
func (w *Wallet) BalanceWith(prices map[string]decimal.Decimal, at time.Time) Balance {
	clone := w.RepricedCopy(prices, at)
	return Balance{
		TotalValue:       clone.TotalValue,
		TotalContributed: clone.TotalContributed,
		Profit:           clone.Profit,
		ProfitPercent:    clone.ProfitPercent,
	}
}
