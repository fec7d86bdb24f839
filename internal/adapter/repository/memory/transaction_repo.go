package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository as an
// append-only log. Entries are never updated; the only removal path is the
// compensation of a rolled-back unit of work.
type TransactionRepository struct {
	mu      sync.RWMutex
	entries []domain.Transaction
	nextID  int64
}

// NewTransactionRepository creates an empty TransactionRepository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create validates and appends the entry, assigning the next sequential id.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, entry *domain.Transaction) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, *entry)

	id := entry.ID
	mtx.onRollback(func() { r.remove(id) })

	return nil
}

func (r *TransactionRepository) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// ListByAccountSince returns the account's entries with CreatedAt >= since,
// in insertion order.
func (r *TransactionRepository) ListByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error) {
	return r.scan(func(e *domain.Transaction) bool {
		return e.AccountID == accountID && !e.CreatedAt.Before(since)
	})
}

// ListSince returns all entries with CreatedAt >= since, in insertion order.
func (r *TransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Transaction, error) {
	return r.scan(func(e *domain.Transaction) bool {
		return !e.CreatedAt.Before(since)
	})
}

func (r *TransactionRepository) scan(keep func(*domain.Transaction) bool) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Transaction
	for i := range r.entries {
		if keep(&r.entries[i]) {
			entry := r.entries[i]
			out = append(out, &entry)
		}
	}

	return out, nil
}
