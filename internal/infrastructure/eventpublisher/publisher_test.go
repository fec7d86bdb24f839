package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdaffar/marketledger/internal/adapter/repository/memory"
	"github.com/mdaffar/marketledger/internal/domain"
)

type stubPublisher struct {
	published []*domain.OutboxEvent
	failOn    string
}

func (p *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if event.ID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func stageEvents(t *testing.T, outbox *memory.OutboxRepository, ids ...string) {
	t.Helper()
	ctx := context.Background()
	manager := memory.NewTxManager()

	tx, err := manager.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, id := range ids {
		event := &domain.OutboxEvent{
			ID:            id,
			AggregateID:   "1",
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypeOrderPaid,
			Payload:       domain.OrderPaidEvent{OrderID: 1, TotalPrice: "60"},
			CreatedAt:     time.Now(),
		}
		if err := outbox.Create(ctx, tx, event); err != nil {
			t.Fatalf("outbox.Create: %v", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestEventPublisher_ProcessEvents(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutboxRepository()
	stageEvents(t, outbox, "evt-1", "evt-2")

	pub := &stubPublisher{}
	ep := NewEventPublisher(Config{
		OutboxRepo: outbox,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
	})

	if err := ep.processEvents(ctx); err != nil {
		t.Fatalf("processEvents: %v", err)
	}

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.published))
	}

	remaining, err := outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("GetUnpublished: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected all events marked published, %d remain", len(remaining))
	}
}

func TestEventPublisher_FailedEventStaysStaged(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutboxRepository()
	stageEvents(t, outbox, "evt-1", "evt-2", "evt-3")

	pub := &stubPublisher{failOn: "evt-2"}
	ep := NewEventPublisher(Config{
		OutboxRepo: outbox,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
	})

	if err := ep.processEvents(ctx); err != nil {
		t.Fatalf("processEvents: %v", err)
	}

	// The failing event is skipped, the rest of the batch still goes out.
	if len(pub.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.published))
	}

	remaining, err := outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("GetUnpublished: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "evt-2" {
		t.Errorf("expected only evt-2 to remain, got %v", remaining)
	}
}

func TestEventPublisher_EmptyOutboxIsANoop(t *testing.T) {
	ep := NewEventPublisher(Config{
		OutboxRepo: memory.NewOutboxRepository(),
		Publisher:  &stubPublisher{},
		Logger:     zerolog.Nop(),
	})

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents: %v", err)
	}
}
