package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/adapter/repository/memory"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/clock"
	"github.com/mdaffar/marketledger/internal/usecase"
	"github.com/mdaffar/marketledger/internal/usecase/mocks"
)

type paymentFixture struct {
	uc       *usecase.PaymentUseCase
	accounts *memory.AccountRepository
	entries  *memory.TransactionRepository
	orders   *memory.OrderRepository
	items    *memory.ItemRepository
	outbox   *memory.OutboxRepository
	manager  *memory.TxManager
	clock    *clock.Fixed
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		accounts: memory.NewAccountRepository(),
		entries:  memory.NewTransactionRepository(),
		orders:   memory.NewOrderRepository(),
		items:    memory.NewItemRepository(),
		outbox:   memory.NewOutboxRepository(),
		manager:  memory.NewTxManager(),
		clock:    clock.NewFixed(testNow),
	}
	f.uc = usecase.NewPaymentUseCase(
		f.manager,
		f.accounts,
		f.entries,
		f.orders,
		f.items,
		f.outbox,
		memory.NewULIDGenerator(),
		f.clock,
		nil,
	)
	return f
}

func (f *paymentFixture) newAccount(t *testing.T, name string, balance int64) *domain.Account {
	t.Helper()
	ctx := context.Background()
	account := &domain.Account{Name: name, Balance: decimal.NewFromInt(balance), CreatedAt: testNow, UpdatedAt: testNow}
	tx, err := f.manager.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := f.accounts.Create(ctx, tx, account); err != nil {
		t.Fatalf("accounts.Create: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return account
}

func (f *paymentFixture) newItem(t *testing.T, sellerID int64, name string, quantity int64) *domain.Item {
	t.Helper()
	item := &domain.Item{
		SellerID:  sellerID,
		Name:      name,
		Price:     decimal.NewFromInt(30),
		Quantity:  quantity,
		Visible:   true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if err := f.items.Create(context.Background(), item); err != nil {
		t.Fatalf("items.Create: %v", err)
	}
	return item
}

func (f *paymentFixture) newOrder(t *testing.T, buyerID, itemID int64, itemName string, quantity, total int64, status domain.OrderStatus) *domain.Order {
	t.Helper()
	ctx := context.Background()
	order := &domain.Order{
		BuyerID:    buyerID,
		SellerID:   1,
		ItemID:     itemID,
		ItemName:   itemName,
		Quantity:   quantity,
		TotalPrice: decimal.NewFromInt(total),
		Status:     status,
		CreatedAt:  testNow,
	}
	tx, err := f.manager.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := f.orders.Create(ctx, tx, order); err != nil {
		t.Fatalf("orders.Create: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return order
}

func (f *paymentFixture) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	account, err := f.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("accounts.GetByID(%d): %v", id, err)
	}
	return account.Balance
}

func TestPaymentUseCase_Pay(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	buyerAcc := f.newAccount(t, "alice", 100)
	sellerAcc := f.newAccount(t, "bob", 5)
	item := f.newItem(t, 1, "gadget", 5)
	order := f.newOrder(t, 10, item.ID, "gadget", 2, 60, domain.OrderStatusPending)

	err := f.uc.Pay(ctx, usecase.PayInput{
		OrderID:         order.ID,
		BuyerID:         10,
		BuyerAccountID:  buyerAcc.ID,
		SellerAccountID: sellerAcc.ID,
	})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if got := f.balance(t, buyerAcc.ID); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected buyer balance 40, got %s", got)
	}
	if got := f.balance(t, sellerAcc.ID); !got.Equal(decimal.NewFromInt(65)) {
		t.Errorf("expected seller balance 65, got %s", got)
	}

	buyerEntries, err := f.entries.ListByAccountSince(ctx, buyerAcc.ID, testNow)
	if err != nil {
		t.Fatalf("ListByAccountSince: %v", err)
	}
	if len(buyerEntries) != 1 {
		t.Fatalf("expected 1 buyer entry, got %d", len(buyerEntries))
	}
	if buyerEntries[0].Kind != domain.KindDebit || buyerEntries[0].Description != "Purchase: gadget" {
		t.Errorf("unexpected buyer entry %+v", buyerEntries[0])
	}
	if !buyerEntries[0].Amount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected buyer entry amount 60, got %s", buyerEntries[0].Amount)
	}

	sellerEntries, err := f.entries.ListByAccountSince(ctx, sellerAcc.ID, testNow)
	if err != nil {
		t.Fatalf("ListByAccountSince: %v", err)
	}
	if len(sellerEntries) != 1 {
		t.Fatalf("expected 1 seller entry, got %d", len(sellerEntries))
	}
	if sellerEntries[0].Kind != domain.KindCredit || sellerEntries[0].Description != "Sale: gadget" {
		t.Errorf("unexpected seller entry %+v", sellerEntries[0])
	}

	liveItem, err := f.items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("items.GetByID: %v", err)
	}
	if liveItem.Quantity != 3 {
		t.Errorf("expected stock 3, got %d", liveItem.Quantity)
	}

	paid, err := f.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("orders.GetByID: %v", err)
	}
	if paid.Status != domain.OrderStatusPaid {
		t.Errorf("expected PAID, got %s", paid.Status)
	}

	events, err := f.outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("GetUnpublished: %v", err)
	}
	if len(events) != 1 || events[0].EventType != domain.EventTypeOrderPaid {
		t.Errorf("expected one %s event, got %v", domain.EventTypeOrderPaid, events)
	}
}

func TestPaymentUseCase_Pay_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, f *paymentFixture) usecase.PayInput
		wantCause error
	}{
		{
			name: "insufficient funds",
			setup: func(t *testing.T, f *paymentFixture) usecase.PayInput {
				buyer := f.newAccount(t, "alice", 10)
				seller := f.newAccount(t, "bob", 0)
				item := f.newItem(t, 1, "gadget", 5)
				order := f.newOrder(t, 10, item.ID, "gadget", 2, 60, domain.OrderStatusPending)
				return usecase.PayInput{OrderID: order.ID, BuyerID: 10, BuyerAccountID: buyer.ID, SellerAccountID: seller.ID}
			},
			wantCause: domain.ErrInsufficientFunds,
		},
		{
			name: "order already paid",
			setup: func(t *testing.T, f *paymentFixture) usecase.PayInput {
				buyer := f.newAccount(t, "alice", 100)
				seller := f.newAccount(t, "bob", 0)
				item := f.newItem(t, 1, "gadget", 5)
				order := f.newOrder(t, 10, item.ID, "gadget", 2, 60, domain.OrderStatusPaid)
				return usecase.PayInput{OrderID: order.ID, BuyerID: 10, BuyerAccountID: buyer.ID, SellerAccountID: seller.ID}
			},
		},
		{
			name: "order of another buyer",
			setup: func(t *testing.T, f *paymentFixture) usecase.PayInput {
				buyer := f.newAccount(t, "alice", 100)
				seller := f.newAccount(t, "bob", 0)
				item := f.newItem(t, 1, "gadget", 5)
				order := f.newOrder(t, 77, item.ID, "gadget", 2, 60, domain.OrderStatusPending)
				return usecase.PayInput{OrderID: order.ID, BuyerID: 10, BuyerAccountID: buyer.ID, SellerAccountID: seller.ID}
			},
		},
		{
			name: "missing seller account",
			setup: func(t *testing.T, f *paymentFixture) usecase.PayInput {
				buyer := f.newAccount(t, "alice", 100)
				item := f.newItem(t, 1, "gadget", 5)
				order := f.newOrder(t, 10, item.ID, "gadget", 2, 60, domain.OrderStatusPending)
				return usecase.PayInput{OrderID: order.ID, BuyerID: 10, BuyerAccountID: buyer.ID, SellerAccountID: 99}
			},
			wantCause: domain.ErrAccountNotFound,
		},
		{
			name: "zero total",
			setup: func(t *testing.T, f *paymentFixture) usecase.PayInput {
				buyer := f.newAccount(t, "alice", 100)
				seller := f.newAccount(t, "bob", 0)
				item := f.newItem(t, 1, "gadget", 5)
				order := f.newOrder(t, 10, item.ID, "gadget", 2, 0, domain.OrderStatusPending)
				return usecase.PayInput{OrderID: order.ID, BuyerID: 10, BuyerAccountID: buyer.ID, SellerAccountID: seller.ID}
			},
			wantCause: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newPaymentFixture(t)
			input := tt.setup(t, f)

			err := f.uc.Pay(ctx, input)
			if !errors.Is(err, domain.ErrPaymentRejected) {
				t.Fatalf("expected ErrPaymentRejected, got %v", err)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("expected cause %v, got %v", tt.wantCause, err)
			}

			// A rejected payment must leave no trace.
			order, getErr := f.orders.GetByID(ctx, input.OrderID)
			if getErr != nil {
				t.Fatalf("orders.GetByID: %v", getErr)
			}
			wantStatus := domain.OrderStatusPending
			if tt.name == "order already paid" {
				wantStatus = domain.OrderStatusPaid
			}
			if order.Status != wantStatus {
				t.Errorf("expected status %s, got %s", wantStatus, order.Status)
			}
			entries, listErr := f.entries.ListSince(ctx, testNow)
			if listErr != nil {
				t.Fatalf("ListSince: %v", listErr)
			}
			if len(entries) != 0 {
				t.Errorf("expected no ledger entries, got %d", len(entries))
			}
		})
	}
}

func TestPaymentUseCase_Pay_MissingOrder(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	err := f.uc.Pay(ctx, usecase.PayInput{OrderID: 42, BuyerID: 10, BuyerAccountID: 1, SellerAccountID: 2})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaymentUseCase_Pay_VanishedItemIsTolerated(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	buyer := f.newAccount(t, "alice", 100)
	seller := f.newAccount(t, "bob", 0)
	order := f.newOrder(t, 10, 99, "gadget", 2, 60, domain.OrderStatusPending)

	err := f.uc.Pay(ctx, usecase.PayInput{
		OrderID:         order.ID,
		BuyerID:         10,
		BuyerAccountID:  buyer.ID,
		SellerAccountID: seller.ID,
	})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if got := f.balance(t, buyer.ID); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected buyer balance 40, got %s", got)
	}
	paid, err := f.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("orders.GetByID: %v", err)
	}
	if paid.Status != domain.OrderStatusPaid {
		t.Errorf("expected PAID, got %s", paid.Status)
	}
}

func TestPaymentUseCase_Pay_SelfPurchaseNetsToZero(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	account := f.newAccount(t, "alice", 100)
	item := f.newItem(t, 1, "gadget", 5)
	order := f.newOrder(t, 10, item.ID, "gadget", 1, 30, domain.OrderStatusPending)

	err := f.uc.Pay(ctx, usecase.PayInput{
		OrderID:         order.ID,
		BuyerID:         10,
		BuyerAccountID:  account.ID,
		SellerAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if got := f.balance(t, account.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("self purchase must net to zero, got %s", got)
	}

	entries, err := f.entries.ListByAccountSince(ctx, account.ID, testNow)
	if err != nil {
		t.Fatalf("ListByAccountSince: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected debit and credit entries, got %d", len(entries))
	}
}

func TestPaymentUseCase_Pay_DiscardedStockBottomsOutAtZero(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	buyer := f.newAccount(t, "alice", 100)
	seller := f.newAccount(t, "bob", 0)
	// Stock shrank below the order's quantity between checkout and pay.
	item := f.newItem(t, 1, "gadget", 2)
	order := f.newOrder(t, 10, item.ID, "gadget", 4, 60, domain.OrderStatusPending)

	err := f.uc.Pay(ctx, usecase.PayInput{
		OrderID:         order.ID,
		BuyerID:         10,
		BuyerAccountID:  buyer.ID,
		SellerAccountID: seller.ID,
	})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	liveItem, err := f.items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("items.GetByID: %v", err)
	}
	if liveItem.Quantity != 0 {
		t.Errorf("expected stock clamped to 0, got %d", liveItem.Quantity)
	}
	if got := f.balance(t, buyer.ID); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected buyer balance 40, got %s", got)
	}
}

func TestPaymentUseCase_Pay_ConcurrentCrossPaymentsConserveMoney(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	alice := f.newAccount(t, "alice", 1000)
	bob := f.newAccount(t, "bob", 1000)
	item := f.newItem(t, 1, "gadget", 100)

	// Opposite-direction payments over the same account pair, all at once.
	// The sorted lock acquisition must keep them from deadlocking.
	const pairs = 10
	aliceOrders := make([]int64, pairs)
	bobOrders := make([]int64, pairs)
	for i := 0; i < pairs; i++ {
		aliceOrders[i] = f.newOrder(t, 10, item.ID, "gadget", 1, 10, domain.OrderStatusPending).ID
		bobOrders[i] = f.newOrder(t, 20, item.ID, "gadget", 1, 10, domain.OrderStatusPending).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*pairs)
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func(orderID int64) {
			defer wg.Done()
			errs <- f.uc.Pay(ctx, usecase.PayInput{
				OrderID:         orderID,
				BuyerID:         10,
				BuyerAccountID:  alice.ID,
				SellerAccountID: bob.ID,
			})
		}(aliceOrders[i])
		go func(orderID int64) {
			defer wg.Done()
			errs <- f.uc.Pay(ctx, usecase.PayInput{
				OrderID:         orderID,
				BuyerID:         20,
				BuyerAccountID:  bob.ID,
				SellerAccountID: alice.ID,
			})
		}(bobOrders[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Pay: %v", err)
		}
	}

	total := f.balance(t, alice.ID).Add(f.balance(t, bob.ID))
	if !total.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("money must be conserved, total is %s", total)
	}
	// Flows are symmetric, so each account ends where it started.
	if got := f.balance(t, alice.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected alice at 1000, got %s", got)
	}

	entries, err := f.entries.ListSince(ctx, testNow)
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(entries) != 4*pairs {
		t.Errorf("expected %d entries, got %d", 4*pairs, len(entries))
	}

	liveItem, err := f.items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("items.GetByID: %v", err)
	}
	if liveItem.Quantity != 100-2*pairs {
		t.Errorf("expected stock %d, got %d", 100-2*pairs, liveItem.Quantity)
	}
}

func TestPaymentUseCase_Pay_FailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	buyer := f.newAccount(t, "alice", 100)
	seller := f.newAccount(t, "bob", 0)
	item := f.newItem(t, 1, "gadget", 5)
	order := f.newOrder(t, 10, item.ID, "gadget", 2, 60, domain.OrderStatusPending)

	// The credit entry fails after the debit already went through.
	entries := mocks.NewMockTransactionRepository()
	entries.CreateFunc = func(ctx context.Context, tx usecase.Tx, entry *domain.Transaction) error {
		if entry.Kind == domain.KindCredit {
			return errors.New("entry store unavailable")
		}
		return nil
	}
	uc := usecase.NewPaymentUseCase(
		f.manager,
		f.accounts,
		entries,
		f.orders,
		f.items,
		f.outbox,
		memory.NewULIDGenerator(),
		f.clock,
		nil,
	)

	err := uc.Pay(ctx, usecase.PayInput{
		OrderID:         order.ID,
		BuyerID:         10,
		BuyerAccountID:  buyer.ID,
		SellerAccountID: seller.ID,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if got := f.balance(t, buyer.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("buyer balance must be restored to 100, got %s", got)
	}
	if got := f.balance(t, seller.ID); !got.IsZero() {
		t.Errorf("seller balance must stay 0, got %s", got)
	}

	liveItem, getErr := f.items.GetByID(ctx, item.ID)
	if getErr != nil {
		t.Fatalf("items.GetByID: %v", getErr)
	}
	if liveItem.Quantity != 5 {
		t.Errorf("stock must be restored to 5, got %d", liveItem.Quantity)
	}

	got, getErr := f.orders.GetByID(ctx, order.ID)
	if getErr != nil {
		t.Fatalf("orders.GetByID: %v", getErr)
	}
	if got.Status != domain.OrderStatusPending {
		t.Errorf("order must stay PENDING, got %s", got.Status)
	}
}
