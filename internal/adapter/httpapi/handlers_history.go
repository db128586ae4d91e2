package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

type ledgerEntryResponse struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Profit      *decimal.Decimal `json:"profit,omitempty"`
	WalletID    *string          `json:"walletId,omitempty"`
	WalletName  string           `json:"walletName,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

func toLedgerEntryResponse(e *domain.LedgerEntry) ledgerEntryResponse {
	resp := ledgerEntryResponse{
		ID:          e.ID.String(),
		Type:        string(e.Type),
		Description: e.Description,
		Amount:      e.Amount,
		Profit:      e.Profit,
		WalletName:  e.WalletName,
		Timestamp:   e.Timestamp,
	}
	if e.WalletID != nil {
		id := e.WalletID.String()
		resp.WalletID = &id
	}
	return resp
}

// handleGetHistory handles GET /api/history - The user's transaction log
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	entries, err := s.historyService.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]ledgerEntryResponse, len(entries))
	for i, e := range entries {
		views[i] = toLedgerEntryResponse(e)
	}
	respondJSON(w, http.StatusOK, views)
}
