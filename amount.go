package ramik

import (
	"github.com/shopspring/decimal"
)

// Amount is a decimal quantity such as a price or a percentage.
// The backend returns these as strings ("12.50") and accepts them as numbers,
// so Amount decodes either form and always encodes a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses s into an Amount.
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d}, nil
}

// MustAmount is NewAmount that panics on malformed input.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountOf wraps d.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Ptr returns a pointer to a copy of a, for optional update fields.
func (a Amount) Ptr() *Amount {
	return &a
}
