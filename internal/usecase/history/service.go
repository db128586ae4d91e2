package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

// HistoryService exposes read access to the append-only transaction log.
type HistoryService struct {
	LedgerRepo domain.LedgerRepository
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(ledgerRepo domain.LedgerRepository) *HistoryService {
	return &HistoryService{LedgerRepo: ledgerRepo}
}

// List returns the user's ledger entries, most recent first.
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID) ([]*domain.LedgerEntry, error) {
	return s.LedgerRepo.ListByUser(ctx, userID)
}
