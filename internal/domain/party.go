package domain

import "time"

// Storefront is the selling capability a party may carry. It is attached by
// composition; a seller is a party with a storefront, not a separate entity,
// so there is a single registry and nothing to keep in sync on upgrade.
type Storefront struct {
	Name      string
	CreatedAt time.Time
}

// Party is an account holder in the marketplace. Every party can buy; a party
// with a storefront can also list items and sell.
type Party struct {
	ID         int64
	Name       string
	AccountID  int64
	Storefront *Storefront
	CreatedAt  time.Time
}

// IsSeller reports whether the party carries a storefront.
func (p *Party) IsSeller() bool {
	return p.Storefront != nil
}
