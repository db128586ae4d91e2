package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/usecase/charts"
)

type pieChartResponse struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
	Colors []string          `json:"colors"`
}

func toPieChartResponse(c *charts.PieChart) pieChartResponse {
	return pieChartResponse{Labels: c.Labels, Values: c.Values, Colors: c.Colors}
}

type performanceResponse struct {
	Labels      []string          `json:"labels"`
	Contributed []decimal.Decimal `json:"contributed"`
	Balance     []decimal.Decimal `json:"balance"`
}

func toPerformanceResponse(s *charts.PerformanceSeries) performanceResponse {
	return performanceResponse{Labels: s.Labels, Contributed: s.Contributed, Balance: s.Balance}
}

// handleOverallAllocation handles GET /api/charts/allocation
func (s *Server) handleOverallAllocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	chart, err := s.chartsService.OverallAllocation(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPieChartResponse(chart))
}

// handleOverallPerformance handles GET /api/charts/performance
func (s *Server) handleOverallPerformance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	series, err := s.chartsService.OverallPerformance(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPerformanceResponse(series))
}

// handleWalletAllocation handles GET /api/charts/wallets/{id}/allocation
func (s *Server) handleWalletAllocation(w http.ResponseWriter, r *http.Request) {
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

	chart, err := s.chartsService.WalletAllocation(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPieChartResponse(chart))
}

// handleWalletPerformance handles GET /api/charts/wallets/{id}/performance
func (s *Server) handleWalletPerformance(w http.ResponseWriter, r *http.Request) {
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

	series, err := s.chartsService.WalletPerformance(r.Context(), userID, walletID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPerformanceResponse(series))
}
