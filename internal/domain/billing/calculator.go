package billing

import (
	"fmt"

	"github.com/byteledger/backend/internal/domain/shared/valueobject"
)

// ComputeTotals derives subtotal, discount, tax and total from line items.
//
// Each line total is rounded to cents before summing. A percentage discount is
// round2(subtotal × p/100); both discount kinds are clamped to [0, subtotal].
// Tax applies to the taxable base (subtotal − discount) only, and the total floors at zero.
// An empty item list yields zero totals.
func ComputeTotals(items []LineItem, discount DiscountSpec, tax TaxSpec) (Totals, error) {
	if err := validatePricing(items, discount, tax); err != nil {
		return Totals{}, err
	}

	subtotal := valueobject.Zero()
	for i, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return Totals{}, newValidationError(fmt.Sprintf("items[%d]", i), "line total out of range")
		}
		if subtotal, err = subtotal.Add(line); err != nil {
			return Totals{}, newValidationError("items", "subtotal out of range")
		}
	}

	discountAmount, err := discountFor(subtotal, discount)
	if err != nil {
		return Totals{}, err
	}

	taxable, err := subtotal.Subtract(discountAmount)
	if err != nil {
		return Totals{}, newValidationError("discount", "taxable base out of range")
	}
	taxAmount, err := taxable.ApplyPercent(tax.RatePercent)
	if err != nil {
		return Totals{}, newValidationError("tax.rate_percent", "tax amount out of range")
	}

	total, err := taxable.Add(taxAmount)
	if err != nil {
		return Totals{}, newValidationError("tax.rate_percent", "total out of range")
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          valueobject.Max(total, valueobject.Zero()),
	}, nil
}

func discountFor(subtotal valueobject.Money, discount DiscountSpec) (valueobject.Money, error) {
	var amount valueobject.Money
	switch discount.Type {
	case DiscountAmount:
		amount = discount.Amount
	case DiscountPercent:
		var err error
		if amount, err = subtotal.ApplyPercent(discount.Percent); err != nil {
			return valueobject.Money{}, newValidationError("discount.percent", "discount out of range")
		}
	default:
		return valueobject.Zero(), nil
	}
	return amount.Clamp(valueobject.Zero(), subtotal), nil
}

func validatePricing(items []LineItem, discount DiscountSpec, tax TaxSpec) error {
	for i, item := range items {
		if item.Quantity < 1 {
			return newValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1, got %d", item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return newValidationError(fmt.Sprintf("items[%d].unit_price", i), "unit price cannot be negative")
		}
	}

	switch discount.Type {
	case "", DiscountNone:
	case DiscountAmount:
		if discount.Amount.IsNegative() {
			return newValidationError("discount.amount", "discount amount cannot be negative")
		}
	case DiscountPercent:
		if discount.Percent.IsNegative() || discount.Percent.GreaterThan(valueobject.HundredPercent) {
			return newValidationError("discount.percent", "discount percent must be between 0 and 100")
		}
	default:
		return newValidationError("discount.type", "unknown discount type %q", discount.Type)
	}

	if tax.RatePercent.IsNegative() {
		return newValidationError("tax.rate_percent", "tax rate cannot be negative")
	}
	return nil
}
