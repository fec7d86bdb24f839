package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// legalTransitions is the order lifecycle graph:
// PENDING -> PAID -> COMPLETED, PENDING -> CANCELLED.
// COMPLETED and CANCELLED are terminal.
var legalTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusCompleted},
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s OrderStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// ParseOrderStatus parses a stored status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is a purchase record. ItemName, Quantity and TotalPrice are frozen at
// creation time and never recomputed, even if the live item changes afterwards.
// Buyer, seller and item are correlated by numeric id only; an order referencing
// an id that no longer resolves is tolerated by every query, not treated as an error.
type Order struct {
	ID         int64
	BuyerID    int64
	SellerID   int64
	ItemID     int64
	ItemName   string
	Quantity   int64
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
}

// Validate checks the frozen snapshot before the order is stored.
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if o.TotalPrice.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
