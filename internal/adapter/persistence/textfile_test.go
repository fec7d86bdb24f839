package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mdaffar/marketledger/internal/adapter/repository/memory"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/clock"
	"github.com/mdaffar/marketledger/internal/usecase"
)

type fixture struct {
	snapshotter *Snapshotter
	ledger      *usecase.LedgerUseCase
	orders      *memory.OrderRepository
	manager     *memory.TxManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	manager := memory.NewTxManager()
	accounts := memory.NewAccountRepository()
	orders := memory.NewOrderRepository()
	c := clock.NewFixed(time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC))

	ledger := usecase.NewLedgerUseCase(
		manager,
		accounts,
		memory.NewTransactionRepository(),
		memory.NewOutboxRepository(),
		memory.NewULIDGenerator(),
		c,
		nil,
	)

	return &fixture{
		snapshotter: NewSnapshotter(manager, accounts, orders, ledger, zerolog.Nop(), nil),
		ledger:      ledger,
		orders:      orders,
		manager:     manager,
	}
}

func (f *fixture) createOrder(t *testing.T, order *domain.Order) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.manager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))
}

func TestSnapshotter_AccountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accounts.txt")

	src := newFixture(t)
	for _, a := range []struct {
		name    string
		balance int64
	}{
		{"alice", 100},
		{"bob", 0},
		{"carol", 250},
	} {
		_, err := src.ledger.OpenAccount(ctx, usecase.OpenAccountInput{
			Name:           a.name,
			InitialBalance: decimal.NewFromInt(a.balance),
		})
		require.NoError(t, err)
	}

	require.NoError(t, src.snapshotter.SaveAccounts(ctx, path, "Main Ledger"))

	dst := newFixture(t)
	displayName, err := dst.snapshotter.LoadAccounts(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "Main Ledger", displayName)

	accounts, err := dst.ledger.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	require.Equal(t, int64(1), accounts[0].ID)
	require.Equal(t, "alice", accounts[0].Name)
	require.True(t, accounts[0].Balance.Equal(decimal.NewFromInt(100)))
	require.Equal(t, "bob", accounts[1].Name)
	require.True(t, accounts[1].Balance.IsZero())
	require.True(t, accounts[2].Balance.Equal(decimal.NewFromInt(250)))

	// A restored positive balance is a fresh initial deposit.
	entries, err := dst.ledger.TransactionsSince(ctx, accounts[0].ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, usecase.DescriptionInitialDeposit, entries[0].Description)
}

func TestSnapshotter_OrdersRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.txt")

	createdAt := time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)

	src := newFixture(t)
	src.createOrder(t, &domain.Order{
		BuyerID:    2,
		SellerID:   1,
		ItemID:     7,
		ItemName:   "gadget",
		Quantity:   3,
		TotalPrice: decimal.RequireFromString("89.97"),
		Status:     domain.OrderStatusPaid,
		CreatedAt:  createdAt,
	})
	src.createOrder(t, &domain.Order{
		BuyerID:    3,
		SellerID:   1,
		ItemID:     8,
		ItemName:   "widget",
		Quantity:   1,
		TotalPrice: decimal.NewFromInt(10),
		Status:     domain.OrderStatusPending,
		CreatedAt:  createdAt.Add(time.Hour),
	})

	require.NoError(t, src.snapshotter.SaveOrders(ctx, path, "Order Book"))

	dst := newFixture(t)
	displayName, err := dst.snapshotter.LoadOrders(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "Order Book", displayName)

	restored, err := dst.orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 2)

	first := restored[0]
	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), first.BuyerID)
	require.Equal(t, int64(1), first.SellerID)
	require.Equal(t, int64(7), first.ItemID)
	require.Equal(t, "gadget", first.ItemName)
	require.Equal(t, int64(3), first.Quantity)
	require.True(t, first.TotalPrice.Equal(decimal.RequireFromString("89.97")))
	require.Equal(t, domain.OrderStatusPaid, first.Status)
	require.True(t, first.CreatedAt.Equal(createdAt))

	require.Equal(t, domain.OrderStatusPending, restored[1].Status)
}

func TestSnapshotter_LoadAccounts_Malformed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"missing header", "only one line"},
		{"short record", "Ledger\n1\n1,alice\n"},
		{"bad balance", "Ledger\n1\n1,alice,not-a-number\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "accounts.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			f := newFixture(t)
			_, err := f.snapshotter.LoadAccounts(ctx, path)
			require.Error(t, err)
		})
	}
}

func TestSnapshotter_LoadOrders_Malformed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"short record", "Book\n1,2,3\n"},
		{"bad status", "Book\n1,2,1,7,gadget,3,89.97,SHIPPED,1706779800\n"},
		{"bad timestamp", "Book\n1,2,1,7,gadget,3,89.97,PAID,never\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "orders.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			f := newFixture(t)
			_, err := f.snapshotter.LoadOrders(ctx, path)
			require.Error(t, err)

			// Nothing from a bad snapshot may leak into the book.
			orders, listErr := f.orders.List(ctx)
			require.NoError(t, listErr)
			require.Empty(t, orders)
		})
	}
}

func TestSnapshotter_LoadMissingFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.snapshotter.LoadAccounts(ctx, filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
