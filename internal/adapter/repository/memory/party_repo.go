package memory

import (
	"context"
	"sync"

	"github.com/mdaffar/marketledger/internal/domain"
)

// PartyRepository implements usecase.PartyRepository. Parties are not part of
// any multi-entity unit of work, so a store-level mutex is enough.
type PartyRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.Party
	seq    []int64
	nextID int64
}

// NewPartyRepository creates an empty PartyRepository.
func NewPartyRepository() *PartyRepository {
	return &PartyRepository{
		byID: make(map[int64]*domain.Party),
	}
}

// Create assigns the next sequential id, starting at 1.
func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	party.ID = r.nextID

	r.byID[party.ID] = clonedParty(party)
	r.seq = append(r.seq, party.ID)

	return nil
}

// GetByID returns a copy of the party.
func (r *PartyRepository) GetByID(ctx context.Context, id int64) (*domain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	party, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPartyNotFound
	}
	return clonedParty(party), nil
}

// Update overwrites an existing party.
func (r *PartyRepository) Update(ctx context.Context, party *domain.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[party.ID]; !ok {
		return domain.ErrPartyNotFound
	}
	r.byID[party.ID] = clonedParty(party)

	return nil
}

// List returns copies of all parties in registration order.
func (r *PartyRepository) List(ctx context.Context) ([]*domain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parties := make([]*domain.Party, 0, len(r.seq))
	for _, id := range r.seq {
		parties = append(parties, clonedParty(r.byID[id]))
	}

	return parties, nil
}

func clonedParty(p *domain.Party) *domain.Party {
	clone := *p
	if p.Storefront != nil {
		storefront := *p.Storefront
		clone.Storefront = &storefront
	}
	return &clone
}
