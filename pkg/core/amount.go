package core

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Amount is an arbitrary-precision decimal that travels as a JSON string.
// It accepts string, number, null and empty-string encodings when decoding.
type Amount struct {
	apd.Decimal
}

// NewAmount parses s as a decimal amount.
func NewAmount(s string) (Amount, error) {
	var a Amount
	if _, _, err := a.Decimal.SetString(s); err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return a, nil
}

// MustAmount is like NewAmount but panics on error. Intended for constants and tests.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountPtr parses s and returns a pointer, or nil when s is empty.
func AmountPtr(s string) (*Amount, error) {
	if s == "" {
		return nil, nil
	}
	a, err := NewAmount(s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (a Amount) String() string {
	return a.Decimal.String()
}

// Equal reports whether a and b have the same numeric value.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Cmp(&b.Decimal) == 0
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Decimal.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*a = Amount{}
		return nil
	}
	if data[0] == '"' {
		if len(data) < 2 || data[len(data)-1] != '"' {
			return fmt.Errorf("amount: malformed string %s", data)
		}
		data = data[1 : len(data)-1]
	}
	var d apd.Decimal
	if _, _, err := d.SetString(string(data)); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	a.Decimal = d
	return nil
}
