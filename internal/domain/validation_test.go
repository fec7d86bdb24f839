package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid name", "Alice", false},
		{"name with spaces", "Corner Store", false},
		{"empty name", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", 256), true},
		{"comma breaks the snapshot format", "a,b", true},
		{"newline breaks the snapshot format", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.expectError {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("expected ErrInvalidName, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{"positive amount", decimal.NewFromInt(100), nil},
		{"zero amount", decimal.Zero, ErrInvalidAmount},
		{"negative amount", decimal.NewFromInt(-1), ErrInvalidAmount},
		{"over the cap", decimal.RequireFromString("1000000000001"), ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccount_ValidateDebit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}

	if err := acc.ValidateDebit(decimal.NewFromInt(100)); err != nil {
		t.Errorf("debit of exact balance should pass, got %v", err)
	}
	if err := acc.ValidateDebit(decimal.NewFromInt(101)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}
