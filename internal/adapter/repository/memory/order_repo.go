package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

type orderRecord struct {
	mu    sync.Mutex
	order domain.Order
}

// OrderRepository implements usecase.OrderRepository with per-order locks.
// UpdateStatus is deliberately loose: it overwrites any existing order's
// status and leaves the lifecycle graph to the callers.
type OrderRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*orderRecord
	seq    []int64
	nextID int64
}

// NewOrderRepository creates an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		byID: make(map[int64]*orderRecord),
	}
}

// Create assigns the next sequential id, starting at 1.
func (r *OrderRepository) Create(ctx context.Context, tx usecase.Tx, order *domain.Order) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	order.ID = r.nextID

	r.byID[order.ID] = &orderRecord{order: *order}
	r.seq = append(r.seq, order.ID)

	id := order.ID
	mtx.onRollback(func() { r.removeLast(id) })

	return nil
}

// removeLast compensates a rolled-back Create. Ids are never reused, so the
// removed order's id stays burned.
func (r *OrderRepository) removeLast(id int64) {
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

// GetByID returns a copy of the order.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	order := rec.order
	return &order, nil
}

// GetByIDForUpdate locks the order for the duration of the Tx.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Order, error) {
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

	order := rec.order
	return &order, nil
}

// UpdateStatus unconditionally overwrites the status of an existing order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx usecase.Tx, id int64, status domain.OrderStatus) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	rec, err := r.record(id)
	if err != nil {
		return err
	}

	prev := rec.order.Status
	rec.order.Status = status

	mtx.onRollback(func() { rec.order.Status = prev })

	return nil
}

// ListByBuyer returns the buyer's orders in insertion order.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	return r.scan(func(o *domain.Order) bool { return o.BuyerID == buyerID })
}

// ListBySeller returns the seller's orders in insertion order.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	return r.scan(func(o *domain.Order) bool { return o.SellerID == sellerID })
}

// ListByStatus returns all orders with the given status in insertion order.
func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return r.scan(func(o *domain.Order) bool { return o.Status == status })
}

// ListSince returns all orders with CreatedAt >= since in insertion order.
func (r *OrderRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	return r.scan(func(o *domain.Order) bool { return !o.CreatedAt.Before(since) })
}

// List returns copies of all orders in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.scan(func(*domain.Order) bool { return true })
}

func (r *OrderRepository) scan(keep func(*domain.Order) bool) ([]*domain.Order, error) {
	// Snapshot the index first; holding the store lock while taking entity
	// locks could cycle with a writer queued on the store lock.
	r.mu.RLock()
	recs := make([]*orderRecord, 0, len(r.seq))
	for _, id := range r.seq {
		recs = append(recs, r.byID[id])
	}
	r.mu.RUnlock()

	var out []*domain.Order
	for _, rec := range recs {
		rec.mu.Lock()
		order := rec.order
		rec.mu.Unlock()

		if keep(&order) {
			o := order
			out = append(out, &o)
		}
	}

	return out, nil
}

func (r *OrderRepository) record(id int64) (*orderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return rec, nil
}
