package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
)

// PartyUseCase manages the single registry of account holders. Selling
// capability is attached to an existing party; there is no second registry
// to fall out of sync on upgrade.
type PartyUseCase struct {
	parties PartyRepository
	ledger  *LedgerUseCase
	clock   Clock
}

// NewPartyUseCase creates a new PartyUseCase.
func NewPartyUseCase(parties PartyRepository, ledger *LedgerUseCase, clock Clock) *PartyUseCase {
	return &PartyUseCase{
		parties: parties,
		ledger:  ledger,
		clock:   clock,
	}
}

// RegisterPartyInput represents input for registering a party.
type RegisterPartyInput struct {
	Name           string
	InitialBalance decimal.Decimal
}

// RegisterParty opens a bank account and creates the party holding it.
func (uc *PartyUseCase) RegisterParty(ctx context.Context, input RegisterPartyInput) (*domain.Party, error) {
	account, err := uc.ledger.OpenAccount(ctx, OpenAccountInput{
		Name:           input.Name,
		InitialBalance: input.InitialBalance,
	})
	if err != nil {
		return nil, err
	}

	party := &domain.Party{
		Name:      input.Name,
		AccountID: account.ID,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.parties.Create(ctx, party); err != nil {
		return nil, err
	}

	return party, nil
}

// GetParty retrieves a party by id.
func (uc *PartyUseCase) GetParty(ctx context.Context, id int64) (*domain.Party, error) {
	return uc.parties.GetByID(ctx, id)
}

// ListParties lists all parties in registration order.
func (uc *PartyUseCase) ListParties(ctx context.Context) ([]*domain.Party, error) {
	return uc.parties.List(ctx)
}

// OpenStorefront attaches selling capability to an existing party.
func (uc *PartyUseCase) OpenStorefront(ctx context.Context, partyID int64, storeName string) (*domain.Party, error) {
	if err := domain.ValidateName(storeName); err != nil {
		return nil, err
	}

	party, err := uc.parties.GetByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.IsSeller() {
		return nil, domain.ErrAlreadySeller
	}

	party.Storefront = &domain.Storefront{
		Name:      storeName,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.parties.Update(ctx, party); err != nil {
		return nil, err
	}

	return party, nil
}
