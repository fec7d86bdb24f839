package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

type accountRecord struct {
	mu      sync.Mutex
	account domain.Account
}

// AccountRepository implements usecase.AccountRepository with per-account
// locks. The store mutex only guards the index; exclusive access to a single
// account never serializes operations on unrelated accounts.
type AccountRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*accountRecord
	seq    []int64
	nextID int64
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID: make(map[int64]*accountRecord),
	}
}

// Create assigns the next sequential id, starting at 1.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	account.ID = r.nextID

	r.byID[account.ID] = &accountRecord{account: *account}
	r.seq = append(r.seq, account.ID)

	id := account.ID
	mtx.onRollback(func() { r.removeLast(id) })

	return nil
}

// removeLast compensates a rolled-back Create. Ids are never reused, so the
// removed account's id stays burned.
func (r *AccountRepository) removeLast(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, id)
	for i := len(r.seq) - 1; i >= 0; i-- {
		if r.seq[i] == id {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			return
		}
	}
}

// GetByID returns a copy of the account.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	account := rec.account
	return &account, nil
}

// GetByIDForUpdate locks the account for the duration of the Tx and returns
// a copy to mutate against.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Account, error) {
	accounts, err := r.GetByIDsForUpdate(ctx, tx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return accounts[0], nil
}

// GetByIDsForUpdate locks the requested accounts in ascending id order, the
// fixed global ordering that keeps concurrent multi-account operations from
// deadlocking. Missing ids are skipped; callers compare lengths.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Tx, ids []int64) ([]*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var accounts []*domain.Account
	for _, id := range sorted {
		rec, err := r.record(id)
		if err != nil {
			continue
		}

		rec.mu.Lock()
		mtx.onRelease(rec.mu.Unlock)

		account := rec.account
		accounts = append(accounts, &account)
	}

	return accounts, nil
}

// UpdateBalance overwrites the balance of an account the Tx already holds.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	rec, err := r.record(id)
	if err != nil {
		return err
	}

	prevBalance := rec.account.Balance
	prevUpdated := rec.account.UpdatedAt

	rec.account.Balance = balance
	rec.account.UpdatedAt = updatedAt

	mtx.onRollback(func() {
		rec.account.Balance = prevBalance
		rec.account.UpdatedAt = prevUpdated
	})

	return nil
}

// List returns copies of all accounts in creation order.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	// Snapshot the index first; holding the store lock while taking entity
	// locks could cycle with a writer queued on the store lock.
	r.mu.RLock()
	recs := make([]*accountRecord, 0, len(r.seq))
	for _, id := range r.seq {
		recs = append(recs, r.byID[id])
	}
	r.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		account := rec.account
		rec.mu.Unlock()
		accounts = append(accounts, &account)
	}

	return accounts, nil
}

func (r *AccountRepository) record(id int64) (*accountRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return rec, nil
}
