package domain

import "errors"

// Sentinel errors surfaced at operation boundaries. Repositories and services
// wrap these with context; the transport layer maps them to status codes.
var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrWalletNotFound indicates the wallet does not exist or is not owned
	// by the caller. Ownership failures are deliberately indistinguishable
	// from absence.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrAssetNotFound indicates the asset is missing from the price
	// reference table.
	ErrAssetNotFound = errors.New("asset not found in price reference table")

	// ErrAssetNotInWallet indicates the wallet holds no position in the asset.
	ErrAssetNotInWallet = errors.New("asset not held in wallet")

	// ErrInsufficientFunds indicates the user's cash balance cannot cover
	// the operation.
	ErrInsufficientFunds = errors.New("insufficient cash balance")

	// ErrInsufficientQuantity indicates a sell exceeds the held quantity.
	ErrInsufficientQuantity = errors.New("insufficient asset quantity")

	// ErrInvalidAmount indicates a missing or non-positive numeric input.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrRateNotFound indicates no exchange rate has been recorded yet.
	ErrRateNotFound = errors.New("exchange rate not found")
)
