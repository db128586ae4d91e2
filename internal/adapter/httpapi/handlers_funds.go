package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// handleDeposit handles POST /api/user/deposit - Add fiat to the cash balance
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	balance, err := s.fundsService.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cashBalance": balance,
	})
}

// handleWithdraw handles POST /api/user/withdraw - Remove fiat from the cash balance
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	balance, err := s.fundsService.Withdraw(r.Context(), userID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cashBalance": balance,
	})
}

// handleGetOverview handles GET /api/user/overview - Aggregate position
func (s *Server) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	overview, err := s.fundsService.GetOverview(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cashBalance":      overview.CashBalance,
		"totalContributed": overview.TotalContributed,
		"walletsValue":     overview.WalletsValue,
		"profit":           overview.Profit,
		"profitPercent":    overview.ProfitPercent,
	})
}
