package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells whether a ledger entry moved money into or out of an account.
type TransactionKind string

const (
	KindCredit TransactionKind = "CREDIT"
	KindDebit  TransactionKind = "DEBIT"
)

// ParseTransactionKind parses a stored kind string.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindCredit, KindDebit:
		return TransactionKind(s), nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Transaction is an immutable record of a single credit or debit against an account.
// The log is append-only; entries are never updated or removed.
type Transaction struct {
	ID          int64
	AccountID   int64
	Kind        TransactionKind
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// Validate checks the entry before it is appended.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}
