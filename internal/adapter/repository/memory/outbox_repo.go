package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository. Events staged in a
// rolled-back unit of work are compensated away with the rest of the writes
// and never reach the publisher.
type OutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
}

// NewOutboxRepository creates an empty OutboxRepository.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

// Create stages an event in the unit of work.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Tx, event *domain.OutboxEvent) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *event
	r.events = append(r.events, &stored)

	id := event.ID
	mtx.onRollback(func() { r.remove(id) })

	return nil
}

func (r *OutboxRepository) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if r.events[i].ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return
		}
	}
}

// GetUnpublished returns up to limit unpublished events in staging order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range r.events {
		if e.Published {
			continue
		}
		event := *e
		out = append(out, &event)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}

	return nil
}
