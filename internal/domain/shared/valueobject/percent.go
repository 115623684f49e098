package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a non-float percentage such as 8.25 meaning 8.25%.
// Range checks belong to the caller: discounts must sit in [0, 100], tax rates only need to be >= 0.
type Percent struct {
	value decimal.Decimal
}

// NewPercent wraps a decimal percentage
func NewPercent(value decimal.Decimal) Percent {
	return Percent{value: value}
}

// NewPercentFromString parses "10" or "8.25"
func NewPercentFromString(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent string: %w", err)
	}
	return Percent{value: d}, nil
}

// MustPercent parses s and panics on error
func MustPercent(s string) Percent {
	p, err := NewPercentFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the raw percentage value
func (p Percent) Decimal() decimal.Decimal {
	return p.value
}

// IsNegative returns true if the percentage is below zero
func (p Percent) IsNegative() bool {
	return p.value.IsNegative()
}

// IsZero returns true if the percentage is zero
func (p Percent) IsZero() bool {
	return p.value.IsZero()
}

// GreaterThan compares two percentages
func (p Percent) GreaterThan(other Percent) bool {
	return p.value.GreaterThan(other.value)
}

// Equals returns true if both percentages are numerically equal
func (p Percent) Equals(other Percent) bool {
	return p.value.Equal(other.value)
}

// String returns the percentage without trailing zeros, e.g. "8.25"
func (p Percent) String() string {
	return p.value.String()
}

// MarshalJSON encodes the percentage as a decimal string
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value.String())
}

// UnmarshalJSON accepts a decimal string or number
func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}

// Value implements driver.Valuer
func (p Percent) Value() (driver.Value, error) {
	return p.value.String(), nil
}

// Scan implements sql.Scanner
func (p *Percent) Scan(value any) error {
	if value == nil {
		p.value = decimal.Zero
		return nil
	}
	return p.value.Scan(value)
}

// HundredPercent is the upper bound of a percentage discount
var HundredPercent = Percent{value: decimal.NewFromInt(100)}
