// Package core provides money parsing and handling utilities.
//
// Amounts are decimal values that may be unset. Budgets imported from older
// documents can carry null, empty or NaN values; those decode as an unset
// Amount and count as zero everywhere totals are computed.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal money value. The zero value is unset.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount wraps a decimal as a set Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

// AmountFromInt returns a set Amount of whole units.
func AmountFromInt(v int64) Amount {
	return NewAmount(decimal.NewFromInt(v))
}

// AmountFromFloat returns a set Amount rounded to cents.
func AmountFromFloat(v float64) Amount {
	return NewAmount(decimal.NewFromFloat(v).Round(2))
}

// MustAmount parses s and panics on failure. Intended for tests and fixtures.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount converts user input to an Amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Negative values are allowed
// for refunds and corrections.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35
//	ParseAmount("")       -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return NewAmount(d.Round(2)), nil
}

// Decimal returns the value, or zero when the amount is unset.
func (a Amount) Decimal() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// Normalized returns a set Amount, replacing an unset value with zero.
func (a Amount) Normalized() Amount {
	return NewAmount(a.Decimal())
}

// String formats the amount with two decimals; unset amounts print as 0.00.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Equal compares normalized values.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal().Equal(b.Decimal())
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// UnmarshalJSON never fails on malformed values: anything that is not a
// number decodes as an unset amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Amount{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = s
	}
	*a = decodeAmount(raw)
	return nil
}

// decodeAmount reads a stored value. Plain input goes through ParseAmount;
// exponent notation such as 1e-7, which JSON encoders emit for small numbers,
// keeps its exact value.
func decodeAmount(raw string) Amount {
	if parsed, err := ParseAmount(raw); err == nil {
		return parsed
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return NewAmount(d)
	}
	return Amount{}
}

// UnmarshalYAML accepts the same inputs as UnmarshalJSON.
func (a *Amount) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*a = decodeAmount(s)
	return nil
}
