package domain

import "errors"

var (
	// Ledger errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Order book errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidTransition = errors.New("illegal order status transition")

	// Catalog errors
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Party errors
	ErrPartyNotFound = errors.New("party not found")
	ErrNotASeller    = errors.New("party has no storefront")
	ErrAlreadySeller = errors.New("party already has a storefront")

	// Payment errors
	ErrPaymentRejected = errors.New("payment rejected")
)
