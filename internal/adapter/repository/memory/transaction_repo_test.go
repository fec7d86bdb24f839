package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mdaffar/marketledger/internal/domain"
)

func TestTransactionRepository_AppendAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	manager := NewTxManager()

	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	tx, err := manager.Begin(ctx)
	require.NoError(t, err)
	for i, e := range []*domain.Transaction{
		{AccountID: 1, Kind: domain.KindCredit, Amount: decimal.NewFromInt(100), Description: "Top-up", CreatedAt: base},
		{AccountID: 1, Kind: domain.KindDebit, Amount: decimal.NewFromInt(30), Description: "Withdrawal", CreatedAt: base.Add(time.Hour)},
		{AccountID: 2, Kind: domain.KindCredit, Amount: decimal.NewFromInt(5), Description: "Top-up", CreatedAt: base.Add(2 * time.Hour)},
	} {
		require.NoError(t, repo.Create(ctx, tx, e))
		require.Equal(t, int64(i+1), e.ID)
	}
	require.NoError(t, tx.Commit(ctx))

	forAccount, err := repo.ListByAccountSince(ctx, 1, base)
	require.NoError(t, err)
	require.Len(t, forAccount, 2)
	require.Equal(t, domain.KindCredit, forAccount[0].Kind)
	require.Equal(t, domain.KindDebit, forAccount[1].Kind)

	windowed, err := repo.ListByAccountSince(ctx, 1, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, windowed, 1)

	all, err := repo.ListSince(ctx, base)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestTransactionRepository_RollbackRemovesEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	manager := NewTxManager()

	tx, err := manager.Begin(ctx)
	require.NoError(t, err)
	entry := &domain.Transaction{
		AccountID:   1,
		Kind:        domain.KindCredit,
		Amount:      decimal.NewFromInt(100),
		Description: "Top-up",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, tx, entry))
	require.NoError(t, tx.Rollback(ctx))

	entries, err := repo.ListByAccountSince(ctx, 1, time.Time{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestTransactionRepository_RejectsInvalidEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	manager := NewTxManager()

	tx, err := manager.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	entry := &domain.Transaction{
		AccountID:   1,
		Kind:        domain.KindCredit,
		Amount:      decimal.Zero,
		Description: "Top-up",
		CreatedAt:   time.Now(),
	}
	require.Error(t, repo.Create(ctx, tx, entry))
}
