package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
)

// AccountRepository defines data access for accounts. Create assigns the next
// sequential id; ids start at 1 and are never reused, even when the creating
// Tx rolls back.
type AccountRepository interface {
	Create(ctx context.Context, tx Tx, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id int64) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Tx, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the append-only ledger entry log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, entry *domain.Transaction) error
	ListByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Transaction, error)
}

// OrderRepository defines data access for orders. UpdateStatus is a loose
// primitive: it overwrites the status of any existing order and knows nothing
// about the lifecycle graph. Callers enforce legal transitions.
type OrderRepository interface {
	Create(ctx context.Context, tx Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx Tx, id int64, status domain.OrderStatus) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
}

// ItemRepository defines data access for inventory items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id int64) (*domain.Item, error)
	Update(ctx context.Context, tx Tx, item *domain.Item) error
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Item, error)
}

// PartyRepository defines data access for marketplace parties.
type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, id int64) (*domain.Party, error)
	Update(ctx context.Context, party *domain.Party) error
	List(ctx context.Context) ([]*domain.Party, error)
}

// OutboxRepository defines data access for staged events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Tx represents an atomic unit of work across the stores. Mutations staged
// through a Tx either all land on Commit or are compensated on Rollback;
// entity locks taken for the Tx are released when it finishes either way.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles unit-of-work lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique ids for events. Entity ids are sequential and
// owned by the stores; this is only for outbox event ids.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time. Injected so day and month window
// boundaries are deterministic under test.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
