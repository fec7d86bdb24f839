package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/usecase"
)

// RegisterPartyRequest represents a request to register a marketplace party.
type RegisterPartyRequest struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterPartyRequest) ToUseCaseInput() usecase.RegisterPartyInput {
	return usecase.RegisterPartyInput{
		Name:           r.Name,
		InitialBalance: r.InitialBalance,
	}
}

// OpenStorefrontRequest represents a request to upgrade a party to a seller.
type OpenStorefrontRequest struct {
	StoreName string `json:"store_name"`
}

// MoneyMovementRequest represents a credit or debit against an account.
type MoneyMovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *MoneyMovementRequest) ToUseCaseInput(accountID int64) usecase.MoneyMovementInput {
	return usecase.MoneyMovementInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// AddItemRequest represents a request to list a new catalog item.
type AddItemRequest struct {
	SellerID int64           `json:"seller_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// ToUseCaseInput converts to use case input.
func (r *AddItemRequest) ToUseCaseInput() usecase.AddItemInput {
	return usecase.AddItemInput{
		SellerID: r.SellerID,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}

// UpdateItemRequest represents a full rewrite of an item's listing.
type UpdateItemRequest struct {
	SellerID int64           `json:"seller_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// ToUseCaseInput converts to use case input for the given item.
func (r *UpdateItemRequest) ToUseCaseInput(itemID int64) usecase.UpdateItemInput {
	return usecase.UpdateItemInput{
		SellerID: r.SellerID,
		ItemID:   itemID,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}

// StockAdjustmentRequest represents a replenish or discard of item stock.
// SellerID identifies the caller; only the owning seller may adjust stock.
type StockAdjustmentRequest struct {
	SellerID int64 `json:"seller_id"`
	Quantity int64 `json:"quantity"`
}

// SetPriceRequest represents a price change on a catalog item.
type SetPriceRequest struct {
	SellerID int64           `json:"seller_id"`
	Price    decimal.Decimal `json:"price"`
}

// SetVisibilityRequest represents a visibility toggle on a catalog item.
type SetVisibilityRequest struct {
	SellerID int64 `json:"seller_id"`
	Visible  bool  `json:"visible"`
}

// PlaceOrderRequest represents a checkout request.
type PlaceOrderRequest struct {
	BuyerID  int64 `json:"buyer_id"`
	SellerID int64 `json:"seller_id"`
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

// ToUseCaseInput converts to use case input.
func (r *PlaceOrderRequest) ToUseCaseInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		BuyerID:  r.BuyerID,
		SellerID: r.SellerID,
		ItemID:   r.ItemID,
		Quantity: r.Quantity,
	}
}

// PayOrderRequest represents a request to settle a pending order.
type PayOrderRequest struct {
	BuyerID         int64 `json:"buyer_id"`
	BuyerAccountID  int64 `json:"buyer_account_id"`
	SellerAccountID int64 `json:"seller_account_id"`
}

// ToUseCaseInput converts to use case input for the given order.
func (r *PayOrderRequest) ToUseCaseInput(orderID int64) usecase.PayInput {
	return usecase.PayInput{
		OrderID:         orderID,
		BuyerID:         r.BuyerID,
		BuyerAccountID:  r.BuyerAccountID,
		SellerAccountID: r.SellerAccountID,
	}
}
