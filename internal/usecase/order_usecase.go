package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/metrics"
)

// OrderBookUseCase owns orders, drives their lifecycle and answers the
// sales and activity aggregations.
type OrderBookUseCase struct {
	txManager TxManager
	orders    OrderRepository
	items     ItemRepository
	outbox    OutboxRepository
	idGen     IDGenerator
	clock     Clock
	metrics   *metrics.Metrics
}

// NewOrderBookUseCase creates a new OrderBookUseCase.
func NewOrderBookUseCase(
	txManager TxManager,
	orders OrderRepository,
	items ItemRepository,
	outbox OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	m *metrics.Metrics,
) *OrderBookUseCase {
	return &OrderBookUseCase{
		txManager: txManager,
		orders:    orders,
		items:     items,
		outbox:    outbox,
		idGen:     idGen,
		clock:     clock,
		metrics:   m,
	}
}

// CreateOrderInput carries a frozen purchase snapshot. The name, quantity and
// total price were taken by the caller before this call; nothing here is
// validated against live inventory or account existence.
type CreateOrderInput struct {
	BuyerID    int64
	SellerID   int64
	ItemID     int64
	ItemName   string
	Quantity   int64
	TotalPrice decimal.Decimal
}

// CreateOrder stores a new PENDING order with the next sequential id.
func (uc *OrderBookUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	now := uc.clock.Now()

	order := &domain.Order{
		BuyerID:    input.BuyerID,
		SellerID:   input.SellerID,
		ItemID:     input.ItemID,
		ItemName:   input.ItemName,
		Quantity:   input.Quantity,
		TotalPrice: input.TotalPrice,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.orders.Create(ctx, tx, order); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   formatID(order.ID),
		AggregateType: domain.AggregateTypeOrder,
		EventType:     domain.EventTypeOrderCreated,
		Payload: domain.OrderCreatedEvent{
			OrderID:    order.ID,
			BuyerID:    order.BuyerID,
			SellerID:   order.SellerID,
			ItemName:   order.ItemName,
			Quantity:   order.Quantity,
			TotalPrice: order.TotalPrice.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrdersCreated.Inc()
	}

	return order, nil
}

// PlaceOrderInput represents a checkout request before the snapshot is taken.
type PlaceOrderInput struct {
	BuyerID  int64
	SellerID int64
	ItemID   int64
	Quantity int64
}

// PlaceOrder is the checkout boundary: it snapshots the live item's name and
// unit price, freezes total price = quantity x unit price, and creates the
// PENDING order. The snapshot is never recomputed afterwards.
func (uc *OrderBookUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := uc.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID != input.SellerID || !item.Visible {
		return nil, domain.ErrItemNotFound
	}
	if err := item.Purchasable(input.Quantity); err != nil {
		return nil, err
	}

	return uc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:    input.BuyerID,
		SellerID:   input.SellerID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Quantity:   input.Quantity,
		TotalPrice: item.Price.Mul(decimal.NewFromInt(input.Quantity)),
	})
}

// GetOrder retrieves an order by id.
func (uc *OrderBookUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

// SetStatus requests a lifecycle transition and rejects illegal edges. The
// store-level status write stays unconditional; this is the boundary where
// the transition table is checked.
func (uc *OrderBookUseCase) SetStatus(ctx context.Context, orderID int64, next domain.OrderStatus) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order, err := uc.orders.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if !order.Status.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}

	if err := uc.orders.UpdateStatus(ctx, tx, orderID, next); err != nil {
		return err
	}

	var (
		eventType string
		payload   any
	)
	switch next {
	case domain.OrderStatusPaid:
		eventType = domain.EventTypeOrderPaid
		payload = domain.OrderPaidEvent{OrderID: orderID, TotalPrice: order.TotalPrice.String()}
	case domain.OrderStatusCompleted:
		eventType = domain.EventTypeOrderCompleted
		payload = domain.OrderCompletedEvent{OrderID: orderID}
	case domain.OrderStatusCancelled:
		eventType = domain.EventTypeOrderCancelled
		payload = domain.OrderCancelledEvent{OrderID: orderID}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   formatID(orderID),
		AggregateType: domain.AggregateTypeOrder,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     uc.clock.Now(),
	}
	if err := uc.outbox.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkCompleted moves a PAID order to COMPLETED.
func (uc *OrderBookUseCase) MarkCompleted(ctx context.Context, orderID int64) error {
	return uc.SetStatus(ctx, orderID, domain.OrderStatusCompleted)
}

// Cancel moves a PENDING order to CANCELLED.
func (uc *OrderBookUseCase) Cancel(ctx context.Context, orderID int64) error {
	return uc.SetStatus(ctx, orderID, domain.OrderStatusCancelled)
}

// OrdersByBuyer returns the buyer's orders in insertion order.
func (uc *OrderBookUseCase) OrdersByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	return uc.orders.ListByBuyer(ctx, buyerID)
}

// OrdersBySeller returns the seller's orders in insertion order.
func (uc *OrderBookUseCase) OrdersBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	return uc.orders.ListBySeller(ctx, sellerID)
}

// OrdersByStatus returns a user's orders with the given status, with the user
// matched as buyer or as seller.
func (uc *OrderBookUseCase) OrdersByStatus(ctx context.Context, userID int64, status domain.OrderStatus, asBuyer bool) ([]*domain.Order, error) {
	var (
		all []*domain.Order
		err error
	)
	if asBuyer {
		all, err = uc.orders.ListByBuyer(ctx, userID)
	} else {
		all, err = uc.orders.ListBySeller(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	var filtered []*domain.Order
	for _, o := range all {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}

	return filtered, nil
}

// PaidNotCompleted returns all orders sitting in PAID.
func (uc *OrderBookUseCase) PaidNotCompleted(ctx context.Context) ([]*domain.Order, error) {
	return uc.orders.ListByStatus(ctx, domain.OrderStatusPaid)
}

// OrdersInWindow returns orders of any status created within the trailing
// window of whole days.
func (uc *OrderBookUseCase) OrdersInWindow(ctx context.Context, sinceDays int) ([]*domain.Order, error) {
	return uc.orders.ListSince(ctx, domain.TrailingDays(uc.clock.Now(), sinceDays))
}

// ItemSales is one row of the top-sold ranking.
type ItemSales struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

// TopSoldItems ranks items by total quantity across PAID and COMPLETED
// orders, grouped by item name. Two sellers listing the same name are merged.
// Sorted by quantity descending, ties by name ascending, truncated to m.
func (uc *OrderBookUseCase) TopSoldItems(ctx context.Context, m int) ([]ItemSales, error) {
	all, err := uc.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	sales := make(map[string]int64)
	for _, o := range all {
		if o.Status == domain.OrderStatusPaid || o.Status == domain.OrderStatusCompleted {
			sales[o.ItemName] += o.Quantity
		}
	}

	names := make([]string, 0, len(sales))
	for name := range sales {
		names = append(names, name)
	}
	sort.Strings(names)

	ranked := make([]ItemSales, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, ItemSales{ItemName: name, Quantity: sales[name]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})

	if m >= 0 && len(ranked) > m {
		ranked = ranked[:m]
	}

	return ranked, nil
}

// UserActivity is one row of the active-buyers or active-sellers ranking.
type UserActivity struct {
	UserID int64 `json:"user_id"`
	Count  int64 `json:"count"`
}

// MostActiveBuyersToday counts today's orders of any status per buyer,
// sorted descending by count. The full list is returned; callers truncate.
func (uc *OrderBookUseCase) MostActiveBuyersToday(ctx context.Context) ([]UserActivity, error) {
	return uc.activeToday(ctx, func(o *domain.Order) int64 { return o.BuyerID })
}

// MostActiveSellersToday counts today's orders of any status per seller,
// sorted descending by count.
func (uc *OrderBookUseCase) MostActiveSellersToday(ctx context.Context) ([]UserActivity, error) {
	return uc.activeToday(ctx, func(o *domain.Order) int64 { return o.SellerID })
}

func (uc *OrderBookUseCase) activeToday(ctx context.Context, key func(*domain.Order) int64) ([]UserActivity, error) {
	since := domain.StartOfDay(uc.clock.Now())

	todays, err := uc.orders.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64)
	for _, o := range todays {
		counts[key(o)]++
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ranked := make([]UserActivity, 0, len(ids))
	for _, id := range ids {
		ranked = append(ranked, UserActivity{UserID: id, Count: counts[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	return ranked, nil
}

// SpendingInWindow sums the total price of the buyer's PAID and COMPLETED
// orders created within the trailing window.
func (uc *OrderBookUseCase) SpendingInWindow(ctx context.Context, buyerID int64, sinceDays int) (decimal.Decimal, error) {
	since := domain.TrailingDays(uc.clock.Now(), sinceDays)

	all, err := uc.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, o := range all {
		if o.CreatedAt.Before(since) {
			continue
		}
		if o.Status == domain.OrderStatusPaid || o.Status == domain.OrderStatusCompleted {
			total = total.Add(o.TotalPrice)
		}
	}

	return total, nil
}

// LoyalCustomers maps buyer id to purchase count for the seller's PAID and
// COMPLETED orders this month, keeping only buyers with more than one.
func (uc *OrderBookUseCase) LoyalCustomers(ctx context.Context, sellerID int64) (map[int64]int64, error) {
	since := domain.StartOfMonth(uc.clock.Now())

	all, err := uc.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64)
	for _, o := range all {
		if o.CreatedAt.Before(since) {
			continue
		}
		if o.Status == domain.OrderStatusPaid || o.Status == domain.OrderStatusCompleted {
			counts[o.BuyerID]++
		}
	}

	loyal := make(map[int64]int64)
	for buyerID, n := range counts {
		if n > 1 {
			loyal[buyerID] = n
		}
	}

	return loyal, nil
}
