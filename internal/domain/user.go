package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an account holder in the domain layer.
// CashBalance is the free fiat balance available for purchases.
// LifetimeContribution is the cumulative fiat capital committed to purchases;
// it grows on every buy and is never reduced by sells or withdrawals.
type User struct {
	ID                   uuid.UUID
	Name                 string
	Email                string
	PasswordHash         string
	CashBalance          decimal.Decimal
	LifetimeContribution decimal.Decimal
	CreatedAt            time.Time
}

// Validate ensures the user adheres to domain rules.
func (u *User) Validate() error {
	if u.Name == "" {
		return errors.New("user name cannot be empty")
	}
	if u.Email == "" {
		return errors.New("user email cannot be empty")
	}
	if u.CashBalance.IsNegative() {
		return errors.New("cash balance cannot be negative")
	}
	if u.LifetimeContribution.IsNegative() {
		return errors.New("lifetime contribution cannot be negative")
	}
	return nil
}

// Credit increases the free cash balance by amount.
func (u *User) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	u.CashBalance = u.CashBalance.Add(amount)
	return nil
}

// Debit decreases the free cash balance by amount.
// Returns ErrInsufficientFunds when the balance cannot cover it.
func (u *User) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(u.CashBalance) {
		return ErrInsufficientFunds
	}
	u.CashBalance = u.CashBalance.Sub(amount)
	return nil
}
