package domain

import "time"

// Event types
const (
	EventTypeAccountOpened  = "account.opened"
	EventTypeOrderCreated   = "order.created"
	EventTypeOrderPaid      = "order.paid"
	EventTypeOrderCompleted = "order.completed"
	EventTypeOrderCancelled = "order.cancelled"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeOrder   = "order"
)

// OutboxEvent represents an event staged for publishing. Events are appended
// in the same unit of work as the mutation they describe.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountOpenedEvent payload
type AccountOpenedEvent struct {
	AccountID      int64  `json:"account_id"`
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"`
}

// OrderCreatedEvent payload
type OrderCreatedEvent struct {
	OrderID    int64  `json:"order_id"`
	BuyerID    int64  `json:"buyer_id"`
	SellerID   int64  `json:"seller_id"`
	ItemName   string `json:"item_name"`
	Quantity   int64  `json:"quantity"`
	TotalPrice string `json:"total_price"`
}

// OrderPaidEvent payload
type OrderPaidEvent struct {
	OrderID         int64  `json:"order_id"`
	BuyerAccountID  int64  `json:"buyer_account_id"`
	SellerAccountID int64  `json:"seller_account_id"`
	TotalPrice      string `json:"total_price"`
}

// OrderCompletedEvent payload
type OrderCompletedEvent struct {
	OrderID int64 `json:"order_id"`
}

// OrderCancelledEvent payload
type OrderCancelledEvent struct {
	OrderID int64 `json:"order_id"`
}
