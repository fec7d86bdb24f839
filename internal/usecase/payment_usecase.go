package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/metrics"
)

// PaymentUseCase sequences one purchase: ledger debit, ledger credit,
// inventory decrement and the PENDING -> PAID transition, as a single unit of
// work. A failure partway through is compensated in full.
type PaymentUseCase struct {
	txManager TxManager
	accounts  AccountRepository
	entries   TransactionRepository
	orders    OrderRepository
	items     ItemRepository
	outbox    OutboxRepository
	idGen     IDGenerator
	clock     Clock
	metrics   *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TxManager,
	accounts AccountRepository,
	entries TransactionRepository,
	orders OrderRepository,
	items ItemRepository,
	outbox OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager: txManager,
		accounts:  accounts,
		entries:   entries,
		orders:    orders,
		items:     items,
		outbox:    outbox,
		idGen:     idGen,
		clock:     clock,
		metrics:   m,
	}
}

// PayInput identifies the order and the two accounts money moves between.
type PayInput struct {
	OrderID         int64
	BuyerID         int64
	BuyerAccountID  int64
	SellerAccountID int64
}

// Pay executes one purchase against a PENDING order.
//
// Locks are taken in a fixed global order: both accounts sorted by id, then
// the item, then the order. Every payer follows the same tiers, so two
// concurrent purchases over overlapping entities cannot deadlock.
//
// On success the buyer balance decreased and the seller balance increased by
// exactly the order's total price, exactly two new ledger entries exist, the
// item's live quantity dropped by the order quantity (best effort; a vanished
// item is skipped, not fatal), and the order is PAID.
func (uc *PaymentUseCase) Pay(ctx context.Context, input PayInput) error {
	order, err := uc.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return err
	}

	// Cheap precondition pass before any lock is taken.
	if err := uc.checkPreconditions(order, input); err != nil {
		return uc.reject(err)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	accountIDs := uniqueIDs(input.BuyerAccountID, input.SellerAccountID)

	accounts, err := uc.accounts.GetByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return uc.reject(err)
	}
	if len(accounts) != len(accountIDs) {
		return uc.reject(domain.ErrAccountNotFound)
	}

	accountMap := make(map[int64]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}
	buyer := accountMap[input.BuyerAccountID]
	seller := accountMap[input.SellerAccountID]

	// The live item may already be gone; the decrement is then skipped.
	item, err := uc.items.GetByIDForUpdate(ctx, tx, order.ItemID)
	if err != nil && !errors.Is(err, domain.ErrItemNotFound) {
		return err
	}

	order, err = uc.orders.GetByIDForUpdate(ctx, tx, input.OrderID)
	if err != nil {
		return err
	}

	// Re-check under locks; the order may have moved since the first read.
	if err := uc.checkPreconditions(order, input); err != nil {
		return uc.reject(err)
	}
	if err := buyer.ValidateDebit(order.TotalPrice); err != nil {
		return uc.reject(err)
	}

	now := uc.clock.Now()

	buyerBalance := buyer.ApplyDebit(order.TotalPrice)
	if err := uc.accounts.UpdateBalance(ctx, tx, buyer.ID, buyerBalance, now); err != nil {
		return err
	}
	debitEntry := &domain.Transaction{
		AccountID:   buyer.ID,
		Kind:        domain.KindDebit,
		Amount:      order.TotalPrice,
		Description: "Purchase: " + order.ItemName,
		CreatedAt:   now,
	}
	if err := uc.entries.Create(ctx, tx, debitEntry); err != nil {
		return err
	}

	// Buying from yourself nets to zero; the credit must start from the
	// already-debited balance, not the stale pre-debit copy.
	if seller.ID == buyer.ID {
		seller.Balance = buyerBalance
	}
	if err := uc.accounts.UpdateBalance(ctx, tx, seller.ID, seller.ApplyCredit(order.TotalPrice), now); err != nil {
		return err
	}
	creditEntry := &domain.Transaction{
		AccountID:   seller.ID,
		Kind:        domain.KindCredit,
		Amount:      order.TotalPrice,
		Description: "Sale: " + order.ItemName,
		CreatedAt:   now,
	}
	if err := uc.entries.Create(ctx, tx, creditEntry); err != nil {
		return err
	}

	if item != nil {
		// Stock may have been discarded since checkout; the decrement bottoms
		// out at zero rather than driving live stock negative.
		item.Quantity -= order.Quantity
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		item.UpdatedAt = now
		if err := uc.items.Update(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := uc.orders.UpdateStatus(ctx, tx, order.ID, domain.OrderStatusPaid); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   formatID(order.ID),
		AggregateType: domain.AggregateTypeOrder,
		EventType:     domain.EventTypeOrderPaid,
		Payload: domain.OrderPaidEvent{
			OrderID:         order.ID,
			BuyerAccountID:  buyer.ID,
			SellerAccountID: seller.ID,
			TotalPrice:      order.TotalPrice.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsSettled.Inc()
		amount, _ := order.TotalPrice.Float64()
		uc.metrics.PaymentAmount.Observe(amount)
	}

	return nil
}

// checkPreconditions verifies the order is payable by this buyer. Balance is
// checked separately, under lock.
func (uc *PaymentUseCase) checkPreconditions(order *domain.Order, input PayInput) error {
	if order.Status != domain.OrderStatusPending {
		return fmt.Errorf("order %d is %s, not %s", order.ID, order.Status, domain.OrderStatusPending)
	}
	if order.BuyerID != input.BuyerID {
		return fmt.Errorf("order %d does not belong to buyer %d", order.ID, input.BuyerID)
	}
	if !order.TotalPrice.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return nil
}

func (uc *PaymentUseCase) reject(cause error) error {
	if uc.metrics != nil {
		uc.metrics.PaymentErrors.WithLabelValues(errorLabel(cause)).Inc()
	}
	return fmt.Errorf("%w: %w", domain.ErrPaymentRejected, cause)
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "precondition_failed"
	}
}

func uniqueIDs(ids ...int64) []int64 {
	seen := make(map[int64]bool, len(ids))

	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	return out
}
