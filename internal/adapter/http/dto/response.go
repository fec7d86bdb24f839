package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
)

// PartyResponse represents a party in API responses.
type PartyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AccountID int64     `json:"account_id"`
	IsSeller  bool      `json:"is_seller"`
	StoreName string    `json:"store_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyFromDomain converts a domain party to a response.
func PartyFromDomain(p *domain.Party) *PartyResponse {
	resp := &PartyResponse{
		ID:        p.ID,
		Name:      p.Name,
		AccountID: p.AccountID,
		IsSeller:  p.IsSeller(),
		CreatedAt: p.CreatedAt,
	}
	if p.Storefront != nil {
		resp.StoreName = p.Storefront.Name
	}
	return resp
}

// PartiesFromDomain converts domain parties to responses.
func PartiesFromDomain(parties []*domain.Party) []*PartyResponse {
	result := make([]*PartyResponse, len(parties))
	for i, p := range parties {
		result[i] = PartyFromDomain(p)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain ledger entry to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain ledger entries to responses.
func TransactionsFromDomain(entries []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionFromDomain(e)
	}
	return result
}

// CashFlowResponse represents the credit/debit totals for an account window.
type CashFlowResponse struct {
	AccountID int64           `json:"account_id"`
	Credit    decimal.Decimal `json:"credit"`
	Debit     decimal.Decimal `json:"debit"`
}

// ItemResponse represents a catalog item in API responses.
type ItemResponse struct {
	ID        int64           `json:"id"`
	SellerID  int64           `json:"seller_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Visible   bool            `json:"visible"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemFromDomain converts a domain item to a response.
func ItemFromDomain(i *domain.Item) *ItemResponse {
	return &ItemResponse{
		ID:        i.ID,
		SellerID:  i.SellerID,
		Name:      i.Name,
		Price:     i.Price,
		Quantity:  i.Quantity,
		Visible:   i.Visible,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// ItemsFromDomain converts domain items to responses.
func ItemsFromDomain(items []*domain.Item) []*ItemResponse {
	result := make([]*ItemResponse, len(items))
	for i, it := range items {
		result[i] = ItemFromDomain(it)
	}
	return result
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID         int64           `json:"id"`
	BuyerID    int64           `json:"buyer_id"`
	SellerID   int64           `json:"seller_id"`
	ItemID     int64           `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderFromDomain converts a domain order to a response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		SellerID:   o.SellerID,
		ItemID:     o.ItemID,
		ItemName:   o.ItemName,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
	}
}

// OrdersFromDomain converts domain orders to responses.
func OrdersFromDomain(orders []*domain.Order) []*OrderResponse {
	result := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderFromDomain(o)
	}
	return result
}

// SpendingResponse represents a buyer's spending total over a window.
type SpendingResponse struct {
	BuyerID   int64           `json:"buyer_id"`
	SinceDays int             `json:"since_days"`
	Total     decimal.Decimal `json:"total"`
}

// LoyalCustomerResponse represents one repeat buyer of a seller this month.
type LoyalCustomerResponse struct {
	BuyerID int64 `json:"buyer_id"`
	Orders  int64 `json:"orders"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
