package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/adapter/repository/memory"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/clock"
	"github.com/mdaffar/marketledger/internal/usecase"
)

type catalogFixture struct {
	uc      *usecase.CatalogUseCase
	parties *memory.PartyRepository
	items   *memory.ItemRepository
	clock   *clock.Fixed
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	c := clock.NewFixed(testNow)
	parties := memory.NewPartyRepository()
	items := memory.NewItemRepository()
	uc := usecase.NewCatalogUseCase(memory.NewTxManager(), items, parties, c)
	return &catalogFixture{uc: uc, parties: parties, items: items, clock: c}
}

func (f *catalogFixture) newParty(t *testing.T, name string, seller bool) *domain.Party {
	t.Helper()
	party := &domain.Party{Name: name, AccountID: 1, CreatedAt: testNow}
	if seller {
		party.Storefront = &domain.Storefront{Name: name + "'s store", CreatedAt: testNow}
	}
	if err := f.parties.Create(context.Background(), party); err != nil {
		t.Fatalf("parties.Create: %v", err)
	}
	return party
}

func (f *catalogFixture) addItem(t *testing.T, sellerID int64, name string, price, quantity int64) *domain.Item {
	t.Helper()
	item, err := f.uc.AddItem(context.Background(), usecase.AddItemInput{
		SellerID: sellerID,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("AddItem(%q): %v", name, err)
	}
	return item
}

func TestCatalogUseCase_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	buyer := f.newParty(t, "alice", false)

	item := f.addItem(t, seller.ID, "gadget", 30, 5)
	if item.ID != 1 {
		t.Errorf("expected id 1, got %d", item.ID)
	}
	if !item.Visible {
		t.Error("new items must be visible")
	}

	tests := []struct {
		name    string
		input   usecase.AddItemInput
		wantErr error
	}{
		{
			name:    "party without storefront",
			input:   usecase.AddItemInput{SellerID: buyer.ID, Name: "gadget", Price: decimal.NewFromInt(10), Quantity: 1},
			wantErr: domain.ErrNotASeller,
		},
		{
			name:    "missing party",
			input:   usecase.AddItemInput{SellerID: 99, Name: "gadget", Price: decimal.NewFromInt(10), Quantity: 1},
			wantErr: domain.ErrPartyNotFound,
		},
		{
			name:    "empty name",
			input:   usecase.AddItemInput{SellerID: seller.ID, Name: "", Price: decimal.NewFromInt(10), Quantity: 1},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "negative price",
			input:   usecase.AddItemInput{SellerID: seller.ID, Name: "gadget", Price: decimal.NewFromInt(-1), Quantity: 1},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative quantity",
			input:   usecase.AddItemInput{SellerID: seller.ID, Name: "gadget", Price: decimal.NewFromInt(10), Quantity: -1},
			wantErr: domain.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.AddItem(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalogUseCase_ReplenishAndDiscard(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	item := f.addItem(t, seller.ID, "gadget", 30, 5)

	if err := f.uc.Replenish(ctx, seller.ID, item.ID, 3); err != nil {
		t.Fatalf("Replenish: %v", err)
	}
	if err := f.uc.Discard(ctx, seller.ID, item.ID, 6); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	got, err := f.uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", got.Quantity)
	}

	if err := f.uc.Discard(ctx, seller.ID, item.ID, 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if err := f.uc.Replenish(ctx, seller.ID, item.ID, 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}

	// A failed discard leaves the stock untouched.
	got, err = f.uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Quantity != 2 {
		t.Errorf("expected quantity 2 after failed discard, got %d", got.Quantity)
	}
}

func TestCatalogUseCase_UpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	item := f.addItem(t, seller.ID, "gadget", 30, 5)

	if err := f.uc.UpdateItem(ctx, usecase.UpdateItemInput{
		SellerID: seller.ID,
		ItemID:   item.ID,
		Name:     "gadget mk2",
		Price:    decimal.NewFromInt(45),
		Quantity: 8,
	}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := f.uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "gadget mk2" {
		t.Errorf("expected renamed item, got %q", got.Name)
	}
	if !got.Price.Equal(decimal.NewFromInt(45)) || got.Quantity != 8 {
		t.Errorf("expected price 45 and quantity 8, got %s and %d", got.Price, got.Quantity)
	}

	tests := []struct {
		name    string
		input   usecase.UpdateItemInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   usecase.UpdateItemInput{SellerID: seller.ID, ItemID: item.ID, Name: "", Price: decimal.NewFromInt(10), Quantity: 1},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "negative price",
			input:   usecase.UpdateItemInput{SellerID: seller.ID, ItemID: item.ID, Name: "gadget", Price: decimal.NewFromInt(-1), Quantity: 1},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative quantity",
			input:   usecase.UpdateItemInput{SellerID: seller.ID, ItemID: item.ID, Name: "gadget", Price: decimal.NewFromInt(10), Quantity: -1},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "another seller's item",
			input:   usecase.UpdateItemInput{SellerID: 99, ItemID: item.ID, Name: "gadget", Price: decimal.NewFromInt(10), Quantity: 1},
			wantErr: domain.ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.uc.UpdateItem(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Failed updates leave the listing untouched.
	got, err = f.uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "gadget mk2" || got.Quantity != 8 {
		t.Errorf("expected listing untouched, got %q with quantity %d", got.Name, got.Quantity)
	}
}

func TestCatalogUseCase_OwnershipIsChecked(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	f.newParty(t, "mallory", true)
	item := f.addItem(t, seller.ID, "gadget", 30, 5)

	// Another seller cannot touch the item; the id is not even confirmed.
	if err := f.uc.Replenish(ctx, 2, item.ID, 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := f.uc.SetPrice(ctx, 2, item.ID, decimal.NewFromInt(1)); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := f.uc.SetVisibility(ctx, 2, item.ID, false); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCatalogUseCase_SetPrice(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	item := f.addItem(t, seller.ID, "gadget", 30, 5)

	if err := f.uc.SetPrice(ctx, seller.ID, item.ID, decimal.NewFromInt(45)); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}
	got, err := f.uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !got.Price.Equal(decimal.NewFromInt(45)) {
		t.Errorf("expected price 45, got %s", got.Price)
	}

	if err := f.uc.SetPrice(ctx, seller.ID, item.ID, decimal.NewFromInt(-1)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	// A free item is legal.
	if err := f.uc.SetPrice(ctx, seller.ID, item.ID, decimal.Zero); err != nil {
		t.Errorf("zero price must be accepted, got %v", err)
	}
}

func TestCatalogUseCase_ListItems(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	seller := f.newParty(t, "bob", true)
	inStock := f.addItem(t, seller.ID, "gadget", 30, 5)
	f.addItem(t, seller.ID, "widget", 10, 0)
	hidden := f.addItem(t, seller.ID, "sleeper", 20, 5)
	if err := f.uc.SetVisibility(ctx, seller.ID, hidden.ID, false); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}

	all, err := f.uc.ListItems(ctx, seller.ID, false)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].ID != inStock.ID || all[2].ID != hidden.ID {
		t.Errorf("expected listing order, got %v", all)
	}

	visible, err := f.uc.ListItems(ctx, seller.ID, true)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != inStock.ID {
		t.Errorf("expected only %d visible, got %v", inStock.ID, visible)
	}
}
