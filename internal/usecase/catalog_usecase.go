package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
)

// CatalogUseCase handles a seller's inventory: listing, stock and price
// maintenance. Items belong to exactly one storefront; every operation
// verifies ownership before touching the record.
type CatalogUseCase struct {
	txManager TxManager
	items     ItemRepository
	parties   PartyRepository
	clock     Clock
}

// NewCatalogUseCase creates a new CatalogUseCase.
func NewCatalogUseCase(txManager TxManager, items ItemRepository, parties PartyRepository, clock Clock) *CatalogUseCase {
	return &CatalogUseCase{
		txManager: txManager,
		items:     items,
		parties:   parties,
		clock:     clock,
	}
}

// AddItemInput represents input for listing a new item.
type AddItemInput struct {
	SellerID int64
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// AddItem lists a new item under the seller's storefront. New items are
// visible right away.
func (uc *CatalogUseCase) AddItem(ctx context.Context, input AddItemInput) (*domain.Item, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	party, err := uc.parties.GetByID(ctx, input.SellerID)
	if err != nil {
		return nil, err
	}
	if !party.IsSeller() {
		return nil, domain.ErrNotASeller
	}

	now := uc.clock.Now()
	item := &domain.Item{
		SellerID:  input.SellerID,
		Name:      input.Name,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem retrieves an item by id.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return uc.items.GetByID(ctx, id)
}

// UpdateItemInput represents input for rewriting an item's listing.
type UpdateItemInput struct {
	SellerID int64
	ItemID   int64
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// UpdateItem rewrites an item's display name, unit price and stock in one
// step. Existing orders keep their frozen name and price snapshot.
func (uc *CatalogUseCase) UpdateItem(ctx context.Context, input UpdateItemInput) error {
	if err := domain.ValidateName(input.Name); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if input.Quantity < 0 {
		return domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, input.SellerID, input.ItemID, func(item *domain.Item) error {
		item.Name = input.Name
		item.Price = input.Price
		item.Quantity = input.Quantity
		return nil
	})
}

// Replenish adds stock to an item.
func (uc *CatalogUseCase) Replenish(ctx context.Context, sellerID, itemID, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, sellerID, itemID, func(item *domain.Item) error {
		item.Quantity += quantity
		return nil
	})
}

// Discard removes stock from an item; it fails when more is discarded than held.
func (uc *CatalogUseCase) Discard(ctx context.Context, sellerID, itemID, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, sellerID, itemID, func(item *domain.Item) error {
		if item.Quantity < quantity {
			return domain.ErrInsufficientStock
		}
		item.Quantity -= quantity
		return nil
	})
}

// SetPrice changes an item's live unit price. Existing orders keep their
// frozen snapshot.
func (uc *CatalogUseCase) SetPrice(ctx context.Context, sellerID, itemID int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.ErrInvalidAmount
	}
	return uc.mutate(ctx, sellerID, itemID, func(item *domain.Item) error {
		item.Price = price
		return nil
	})
}

// SetVisibility shows or hides an item from checkout.
func (uc *CatalogUseCase) SetVisibility(ctx context.Context, sellerID, itemID int64, visible bool) error {
	return uc.mutate(ctx, sellerID, itemID, func(item *domain.Item) error {
		item.Visible = visible
		return nil
	})
}

func (uc *CatalogUseCase) mutate(ctx context.Context, sellerID, itemID int64, apply func(*domain.Item) error) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := uc.items.GetByIDForUpdate(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if item.SellerID != sellerID {
		return domain.ErrItemNotFound
	}

	if err := apply(item); err != nil {
		return err
	}
	item.UpdatedAt = uc.clock.Now()

	if err := uc.items.Update(ctx, tx, item); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListItems returns the seller's items in listing order. With visibleOnly set
// it keeps only items that are displayed and in stock.
func (uc *CatalogUseCase) ListItems(ctx context.Context, sellerID int64, visibleOnly bool) ([]*domain.Item, error) {
	all, err := uc.items.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if !visibleOnly {
		return all, nil
	}

	var visible []*domain.Item
	for _, item := range all {
		if item.Visible && item.Quantity > 0 {
			visible = append(visible, item)
		}
	}

	return visible, nil
}
