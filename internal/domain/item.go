package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a priced, quantity-tracked inventory record owned by a seller's
// storefront. Orders snapshot its name and price; the live record keeps moving.
type Item struct {
	ID        int64
	SellerID  int64
	Name      string
	Price     decimal.Decimal
	Quantity  int64
	Visible   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks a new or updated item.
func (i *Item) Validate() error {
	if i.Price.IsNegative() {
		return ErrInvalidAmount
	}
	if i.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Purchasable reports whether the item can appear in a checkout.
func (i *Item) Purchasable(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Quantity < quantity {
		return ErrInsufficientStock
	}
	return nil
}
