package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	CAD Currency = "CAD" // Canadian Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// centsPerUnit is the fixed scale of Money: two fractional digits.
const centsPerUnit = 100

var (
	// ErrMoneyOverflow is returned when an operation leaves the int64 cents range
	ErrMoneyOverflow = errors.New("money amount out of range")

	// ErrMoneyPrecision is returned when parsed input has sub-cent digits
	ErrMoneyPrecision = errors.New("amount must have at most two decimal places")

	hundred  = decimal.NewFromInt(centsPerUnit)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Money is a fixed-point monetary amount held as integer cents.
// It is immutable; arithmetic returns new values. Currency conversion is not supported,
// every amount in a document shares one currency.
type Money struct {
	cents int64
}

// Zero returns a zero amount
func Zero() Money {
	return Money{}
}

// NewMoneyFromCents creates Money from an integer number of cents
func NewMoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// NewMoneyFromDecimal rounds a decimal half-up to cents
func NewMoneyFromDecimal(amount decimal.Decimal) (Money, error) {
	scaled := amount.Mul(hundred).Round(0)
	if scaled.GreaterThan(maxCents) || scaled.LessThan(minCents) {
		return Money{}, ErrMoneyOverflow
	}
	return Money{cents: scaled.IntPart()}, nil
}

// NewMoneyFromString parses input such as "25" or "25.00". Sub-cent digits are
// rejected with ErrMoneyPrecision rather than rounded; trailing zeros are fine.
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	if !d.Mul(hundred).IsInteger() {
		return Money{}, fmt.Errorf("%w: %s", ErrMoneyPrecision, amount)
	}
	return NewMoneyFromDecimal(d)
}

// MustMoney parses amount and panics on error. Intended for tests and constants.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount in cents
func (m Money) Cents() int64 {
	return m.cents
}

// Decimal returns the amount as a decimal with two fractional digits
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// Add returns the sum, or ErrMoneyOverflow
func (m Money) Add(other Money) (Money, error) {
	sum := m.cents + other.cents
	if (other.cents > 0 && sum < m.cents) || (other.cents < 0 && sum > m.cents) {
		return Money{}, ErrMoneyOverflow
	}
	return Money{cents: sum}, nil
}

// Subtract returns the difference, or ErrMoneyOverflow
func (m Money) Subtract(other Money) (Money, error) {
	if other.cents == math.MinInt64 {
		return Money{}, ErrMoneyOverflow
	}
	return m.Add(Money{cents: -other.cents})
}

// MultiplyByInt returns m × factor. The product is exact in cents.
func (m Money) MultiplyByInt(factor int64) (Money, error) {
	if m.cents == 0 || factor == 0 {
		return Money{}, nil
	}
	product := m.cents * factor
	if product/factor != m.cents || (factor == -1 && m.cents == math.MinInt64) {
		return Money{}, ErrMoneyOverflow
	}
	return Money{cents: product}, nil
}

// ApplyPercent returns round2(m × p/100) using half-up rounding, applied once.
func (m Money) ApplyPercent(p Percent) (Money, error) {
	return NewMoneyFromDecimal(m.Decimal().Mul(p.Decimal()).Div(hundred))
}

// Clamp limits m to [lo, hi]
func (m Money) Clamp(lo, hi Money) Money {
	if m.cents < lo.cents {
		return lo
	}
	if m.cents > hi.cents {
		return hi
	}
	return m
}

// Max returns the larger of two amounts
func Max(a, b Money) Money {
	if a.cents >= b.cents {
		return a
	}
	return b
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

// LessThanOrEqual returns true if this Money is less than or equal to the other
func (m Money) LessThanOrEqual(other Money) bool {
	return m.cents <= other.cents
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

// String returns the amount with two fractional digits, e.g. "66.00"
func (m Money) String() string {
	return m.StringFixed()
}

// StringFixed returns the amount with exactly two fractional digits
func (m Money) StringFixed() string {
	return m.Decimal().StringFixed(2)
}

// Display formats the amount with locale grouping and a currency symbol, e.g. "$1,234.50".
func (m Money) Display(currency Currency, tag language.Tag) string {
	p := message.NewPrinter(tag)
	units := m.cents / centsPerUnit
	frac := m.cents % centsPerUnit
	sign := ""
	if m.cents < 0 {
		sign = "-"
		units, frac = -units, -frac
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, currency.Symbol(), p.Sprintf("%d", units), frac)
}

// Symbol returns the display symbol of the currency
func (c Currency) Symbol() string {
	switch c {
	case USD, CAD:
		return "$"
	case EUR:
		return "€"
	case GBP:
		return "£"
	default:
		return string(c) + " "
	}
}

// MarshalJSON encodes Money as a fixed two-digit decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed())
}

// UnmarshalJSON accepts either a decimal string ("12.50") or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid money value: %s", string(data))
		}
		s = n.String()
	}
	parsed, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as BIGINT cents
func (m Money) Value() (driver.Value, error) {
	return m.cents, nil
}

// Scan implements sql.Scanner for BIGINT cents columns
func (m *Money) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.cents = 0
	case int64:
		m.cents = v
	case int32:
		m.cents = int64(v)
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	return nil
}

func (m *Money) scanString(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid cents value: %w", err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("cents value %q is not an integer", s)
	}
	m.cents = d.IntPart()
	return nil
}

// Sum adds all amounts
func Sum(amounts ...Money) (Money, error) {
	total := Zero()
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
