package billing

import (
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DocumentKind distinguishes quotes from invoices
type DocumentKind string

const (
	DocumentKindEstimate DocumentKind = "ESTIMATE"
	DocumentKindSale     DocumentKind = "SALE"
)

// IsValid checks if the kind is known
func (k DocumentKind) IsValid() bool {
	return k == DocumentKindEstimate || k == DocumentKindSale
}

// String returns the string representation
func (k DocumentKind) String() string {
	return string(k)
}

// ItemKind classifies a line item
type ItemKind string

const (
	ItemKindProduct ItemKind = "PRODUCT"
	ItemKindService ItemKind = "SERVICE"
)

// IsValid checks if the item kind is known
func (k ItemKind) IsValid() bool {
	return k == ItemKindProduct || k == ItemKindService
}

// LineItem is a single billed line. Quantity is a whole number of units.
type LineItem struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Kind      ItemKind          `json:"kind"`
	Quantity  int64             `json:"quantity"`
	UnitPrice valueobject.Money `json:"unit_price"`
}

// NewLineItem creates a line item with a generated ID
func NewLineItem(name string, kind ItemKind, quantity int64, unitPrice valueobject.Money) LineItem {
	return LineItem{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

// LineTotal returns quantity × unit price. Cents times an integer quantity is exact.
func (i LineItem) LineTotal() (valueobject.Money, error) {
	return i.UnitPrice.MultiplyByInt(i.Quantity)
}

// DiscountType tags a DiscountSpec
type DiscountType string

const (
	DiscountNone    DiscountType = "NONE"
	DiscountAmount  DiscountType = "AMOUNT"
	DiscountPercent DiscountType = "PERCENT"
)

// DiscountSpec is either a fixed amount or a percentage of the subtotal.
// Only the field matching Type is read.
type DiscountSpec struct {
	Type    DiscountType        `json:"type"`
	Amount  valueobject.Money   `json:"amount"`
	Percent valueobject.Percent `json:"percent"`
}

// NoDiscount returns an empty discount
func NoDiscount() DiscountSpec {
	return DiscountSpec{Type: DiscountNone}
}

// AmountDiscount returns a fixed-amount discount
func AmountDiscount(amount valueobject.Money) DiscountSpec {
	return DiscountSpec{Type: DiscountAmount, Amount: amount}
}

// PercentDiscount returns a percentage discount
func PercentDiscount(p valueobject.Percent) DiscountSpec {
	return DiscountSpec{Type: DiscountPercent, Percent: p}
}

// TaxSpec holds the tax rate applied to the taxable base
type TaxSpec struct {
	RatePercent valueobject.Percent `json:"rate_percent"`
}

// NewTaxSpec creates a TaxSpec
func NewTaxSpec(rate valueobject.Percent) TaxSpec {
	return TaxSpec{RatePercent: rate}
}

// Totals is the calculator output
type Totals struct {
	Subtotal       valueobject.Money `json:"subtotal"`
	DiscountAmount valueobject.Money `json:"discount_amount"`
	TaxAmount      valueobject.Money `json:"tax_amount"`
	Total          valueobject.Money `json:"total"`
}

// TaxableBase returns subtotal minus discount
func (t Totals) TaxableBase() valueobject.Money {
	return valueobject.NewMoneyFromCents(t.Subtotal.Cents() - t.DiscountAmount.Cents())
}
