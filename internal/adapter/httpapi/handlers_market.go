package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

type assetResponse struct {
	Name         string           `json:"name"`
	Symbol       string           `json:"symbol"`
	CurrentPrice decimal.Decimal  `json:"currentPrice"`
	Change24h    *decimal.Decimal `json:"change24h,omitempty"`
	MarketCap    *decimal.Decimal `json:"marketCap,omitempty"`
	Volume24h    *decimal.Decimal `json:"volume24h,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func toAssetResponse(a *domain.Asset) assetResponse {
	return assetResponse{
		Name:         a.Name,
		Symbol:       a.Symbol,
		CurrentPrice: a.CurrentPrice,
		Change24h:    a.Change24h,
		MarketCap:    a.MarketCap,
		Volume24h:    a.Volume24h,
		UpdatedAt:    a.UpdatedAt,
	}
}

// handleListAssets handles GET /api/assets - The price reference table
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assetRepo.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]assetResponse, len(assets))
	for i, a := range assets {
		views[i] = toAssetResponse(a)
	}
	respondJSON(w, http.StatusOK, views)
}

// handleGetAsset handles GET /api/assets/{name}
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	asset, err := s.assetRepo.GetByName(r.Context(), name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toAssetResponse(asset))
}

// handleUpsertAsset handles POST /api/assets - Create or update a reference row
func (s *Server) handleUpsertAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string           `json:"name"`
		Symbol       string           `json:"symbol"`
		CurrentPrice decimal.Decimal  `json:"currentPrice"`
		Change24h    *decimal.Decimal `json:"change24h"`
		MarketCap    *decimal.Decimal `json:"marketCap"`
		Volume24h    *decimal.Decimal `json:"volume24h"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	asset := &domain.Asset{
		Name:         req.Name,
		Symbol:       req.Symbol,
		CurrentPrice: req.CurrentPrice,
		Change24h:    req.Change24h,
		MarketCap:    req.MarketCap,
		Volume24h:    req.Volume24h,
		UpdatedAt:    time.Now(),
	}
	if err := asset.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	if err := s.assetRepo.Upsert(r.Context(), asset); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toAssetResponse(asset))
}

// handleDeleteAsset handles DELETE /api/assets/{name}
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.assetRepo.Delete(r.Context(), name); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleGetExchangeRate handles GET /api/exchange-rate?currency=USD
func (s *Server) handleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "USD"
	}

	rate, err := s.rateRepo.GetLatest(r.Context(), currency)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"currency": rate.Currency,
		"rate":     rate.Rate,
		"date":     rate.Date,
	})
}

// handleAddExchangeRate handles POST /api/exchange-rate - Append a quote
func (s *Server) handleAddExchangeRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string          `json:"currency"`
		Rate     decimal.Decimal `json:"rate"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	rate := &domain.ExchangeRate{
		Currency: req.Currency,
		Rate:     req.Rate,
		Date:     time.Now(),
	}
	if err := rate.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	if err := s.rateRepo.Add(r.Context(), rate); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"currency": rate.Currency,
		"rate":     rate.Rate,
		"date":     rate.Date,
	})
}
