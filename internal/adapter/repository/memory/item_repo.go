package memory

import (
	"context"
	"sync"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

type itemRecord struct {
	mu   sync.Mutex
	item domain.Item
}

// ItemRepository implements usecase.ItemRepository with per-item locks.
type ItemRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*itemRecord
	seq    []int64
	nextID int64
}

// NewItemRepository creates an empty ItemRepository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{
		byID: make(map[int64]*itemRecord),
	}
}

// Create assigns the next sequential id, starting at 1.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID

	r.byID[item.ID] = &itemRecord{item: *item}
	r.seq = append(r.seq, item.ID)

	return nil
}

// GetByID returns a copy of the item.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	item := rec.item
	return &item, nil
}

// GetByIDForUpdate locks the item for the duration of the Tx.
func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Item, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	mtx.onRelease(rec.mu.Unlock)

	item := rec.item
	return &item, nil
}

// Update overwrites an item the Tx already holds.
func (r *ItemRepository) Update(ctx context.Context, tx usecase.Tx, item *domain.Item) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	rec, err := r.record(item.ID)
	if err != nil {
		return err
	}

	prev := rec.item
	rec.item = *item

	mtx.onRollback(func() { rec.item = prev })

	return nil
}

// ListBySeller returns the seller's items in listing order.
func (r *ItemRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Item, error) {
	r.mu.RLock()
	recs := make([]*itemRecord, 0, len(r.seq))
	for _, id := range r.seq {
		recs = append(recs, r.byID[id])
	}
	r.mu.RUnlock()

	var out []*domain.Item
	for _, rec := range recs {
		rec.mu.Lock()
		item := rec.item
		rec.mu.Unlock()

		if item.SellerID == sellerID {
			i := item
			out = append(out, &i)
		}
	}

	return out, nil
}

func (r *ItemRepository) record(id int64) (*itemRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return rec, nil
}
