package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a currency amount with two-decimal display precision.
// Internally the service moves balances around as integer cents; Amount is
// the boundary representation for JSON and validation.
type Amount struct {
	decimal.Decimal
}

func AmountFromCents(cents int64) Amount {
	return Amount{decimal.New(cents, -2)}
}

func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// Cents converts the amount to integer cents. The second return is false if
// the amount carries more than two fractional digits and cannot be
// represented exactly.
func (a Amount) Cents() (int64, bool) {
	shifted := a.Shift(2)
	if !shifted.IsInteger() {
		return 0, false
	}
	return shifted.IntPart(), true
}

// MarshalJSON renders the amount as a plain JSON number with exactly two
// decimal places, matching the wire format of the charge API.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}
