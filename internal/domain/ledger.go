package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies an accounting event in the transaction log.
type EntryType string

const (
	EntryTypeCreation EntryType = "creation"
	EntryTypeBuy      EntryType = "buy"
	EntryTypeSell     EntryType = "sell"
	EntryTypeDeposit  EntryType = "deposit"
	EntryTypeWithdraw EntryType = "withdraw"
)

// LedgerEntry represents one immutable record in the append-only transaction
// log. Entries are never edited or removed; insertion order is chronological
// order. Profit is only set for sell entries and carries the realized
// profit/loss of the sale. WalletID is nil for deposits and withdrawals.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        EntryType
	Description string
	Amount      decimal.Decimal
	Profit      *decimal.Decimal
	WalletID    *uuid.UUID
	WalletName  string
	Timestamp   time.Time
}

// Validate ensures the ledger entry adheres to domain rules.
func (e *LedgerEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return errors.New("ledger entry must reference a user")
	}
	switch e.Type {
	case EntryTypeCreation, EntryTypeBuy, EntryTypeSell, EntryTypeDeposit, EntryTypeWithdraw:
	default:
		return errors.New("unknown ledger entry type: " + string(e.Type))
	}
	if e.Amount.IsNegative() {
		return errors.New("ledger entry amount cannot be negative")
	}
	if e.Type == EntryTypeSell && e.Profit == nil {
		return errors.New("sell entry must carry a realized profit/loss")
	}
	return nil
}
