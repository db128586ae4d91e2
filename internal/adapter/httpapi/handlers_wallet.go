package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

type holdingResponse struct {
	AssetName         string           `json:"assetName"`
	Quantity          decimal.Decimal  `json:"quantity"`
	AverageCost       decimal.Decimal  `json:"averageCost"`
	CostBasis         decimal.Decimal  `json:"costBasis"`
	AllocationPercent decimal.Decimal  `json:"allocationPercent"`
	CurrentPrice      *decimal.Decimal `json:"currentPrice,omitempty"`
	CurrentValue      *decimal.Decimal `json:"currentValue,omitempty"`
}

type walletResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Holdings         []holdingResponse `json:"holdings"`
	TotalValue       decimal.Decimal   `json:"totalValue"`
	TotalContributed decimal.Decimal   `json:"totalContributed"`
	Profit           decimal.Decimal   `json:"profit"`
	ProfitPercent    decimal.Decimal   `json:"profitPercent"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastRefreshedAt  *time.Time        `json:"lastRefreshedAt,omitempty"`
}

func toHoldingResponse(h domain.Holding) holdingResponse {
	return holdingResponse{
		AssetName:         h.AssetName,
		Quantity:          h.Quantity,
		AverageCost:       h.AverageCost,
		CostBasis:         h.CostBasis,
		AllocationPercent: h.AllocationPercent,
		CurrentPrice:      h.CurrentPrice,
		CurrentValue:      h.CurrentValue,
	}
}

func toWalletResponse(w *domain.Wallet) walletResponse {
	holdings := make([]holdingResponse, len(w.Holdings))
	for i, h := range w.Holdings {
		holdings[i] = toHoldingResponse(h)
	}
	return walletResponse{
		ID:               w.ID.String(),
		Name:             w.Name,
		Holdings:         holdings,
		TotalValue:       w.TotalValue,
		TotalContributed: w.TotalContributed,
		Profit:           w.Profit,
		ProfitPercent:    w.ProfitPercent,
		CreatedAt:        w.CreatedAt,
		LastRefreshedAt:  w.LastRefreshedAt,
	}
}

// walletIDFrom parses the {id} path variable.
func walletIDFrom(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

// handleCreateWallet handles POST /api/wallets - Create an empty wallet
func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Wallet name is required")
		return
	}

	wallet, err := s.walletService.Create(r.Context(), userID, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toWalletResponse(wallet))
}

// handleListWallets handles GET /api/wallets - All wallets, repriced
func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	wallets, err := s.walletService.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]walletResponse, len(wallets))
	for i, wallet := range wallets {
		views[i] = toWalletResponse(wallet)
	}
	respondJSON(w, http.StatusOK, views)
}

// handleGetWallet handles GET /api/wallets/{id} - One wallet, repriced
func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	wallet, err := s.walletService.Get(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toWalletResponse(wallet))
}

// handleGetWalletBalance handles GET /api/wallets/{id}/balance - Derived totals
func (s *Server) handleGetWalletBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	balance, err := s.accountingService.GetBalance(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"totalValue":       balance.TotalValue,
		"totalContributed": balance.TotalContributed,
		"profit":           balance.Profit,
		"profitPercent":    balance.ProfitPercent,
	})
}

// handleListWalletAssets handles GET /api/wallets/{id}/assets - Repriced holdings
func (s *Server) handleListWalletAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	holdings, err := s.walletService.ListAssets(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]holdingResponse, len(holdings))
	for i, h := range holdings {
		views[i] = toHoldingResponse(h)
	}
	respondJSON(w, http.StatusOK, views)
}

// handleBuy handles POST /api/wallets/{id}/assets - Buy into the wallet
func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	var req struct {
		AssetName string          `json:"assetName"`
		Quantity  decimal.Decimal `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}
	if req.AssetName == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Asset name is required")
		return
	}

	result, err := s.accountingService.Buy(r.Context(), userID, walletID, req.AssetName, req.Quantity, req.UnitPrice)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       result.Message,
		"remainingCash": result.RemainingCash,
		"wallet":        toWalletResponse(result.Wallet),
	})
}

// handleSell handles POST /api/wallets/{id}/sell - Sell out of the wallet
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	var req struct {
		AssetName string          `json:"assetName"`
		Quantity  decimal.Decimal `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}
	if req.AssetName == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Asset name is required")
		return
	}

	result, err := s.accountingService.Sell(r.Context(), userID, walletID, req.AssetName, req.Quantity, req.UnitPrice)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        result.Message,
		"realizedProfit": result.RealizedProfit,
		"proceeds":       result.Proceeds,
	})
}

// handleRefreshPrices handles POST /api/wallets/{id}/refresh - Reprice holdings
func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	walletID, ok := walletIDFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet ID")
		return
	}

	wallet, err := s.accountingService.RefreshPrices(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toWalletResponse(wallet))
}
