package printing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/language"
)

// PartyCard is the display record of the issuing organization
type PartyCard struct {
	Name         string                       `json:"name"`
	AddressLines []string                     `json:"address_lines"`
	Phone        valueobject.Optional[string] `json:"phone"`
	Email        valueobject.Optional[string] `json:"email"`
	Website      valueobject.Optional[string] `json:"website"`
	TaxID        valueobject.Optional[string] `json:"tax_id"`
}

// AddressBlock is one labelled address of a recipient, e.g. "Service address"
type AddressBlock struct {
	Label string   `json:"label"`
	Lines []string `json:"lines"`
}

// RecipientCard is the display record of the customer
type RecipientCard struct {
	Name      string                       `json:"name"`
	Phone     valueobject.Optional[string] `json:"phone"`
	Email     valueobject.Optional[string] `json:"email"`
	Addresses []AddressBlock               `json:"addresses"`
}

// MetaField is one "label: value" line of the meta block
type MetaField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ItemRow is a formatted line item
type ItemRow struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// TotalRow is one line of the totals block
type TotalRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

// PaymentRow is a formatted ledger entry
type PaymentRow struct {
	Date   string `json:"date"`
	Method string `json:"method"`
	Notes  string `json:"notes"`
	Amount string `json:"amount"`
}

// DocumentView is the layout input: every value is already formatted for display
type DocumentView struct {
	Title        string        `json:"title"`
	Organization PartyCard     `json:"organization"`
	Meta         []MetaField   `json:"meta"`
	Recipient    RecipientCard `json:"recipient"`
	Items        []ItemRow     `json:"items"`
	Totals       []TotalRow    `json:"totals"`
	Payments     []PaymentRow  `json:"payments"`
	Notes        string        `json:"notes"`
}

// ViewOptions controls formatting in BuildView
type ViewOptions struct {
	Language        language.Tag
	DateLayout      string
	ReferenceNumber string // number of the linked document, if any
}

// DefaultViewOptions formats for US English
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Language:   language.AmericanEnglish,
		DateLayout: "Jan 2, 2006",
	}
}

// BuildView formats a billing document snapshot for layout. The document status
// is read as stored, so callers refresh it first.
func BuildView(doc *billing.Document, org PartyCard, recipient RecipientCard, opts ViewOptions) DocumentView {
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultViewOptions().DateLayout
	}
	money := func(m valueobject.Money) string {
		return m.Display(doc.Currency, opts.Language)
	}
	date := func(t time.Time) string {
		return t.Format(opts.DateLayout)
	}

	view := DocumentView{
		Title:        doc.Title(),
		Organization: org,
		Recipient:    recipient,
		Notes:        doc.Notes,
	}

	numberLabel := "Invoice #"
	if doc.Kind == billing.DocumentKindEstimate {
		numberLabel = "Estimate #"
	}
	view.Meta = append(view.Meta,
		MetaField{Label: numberLabel, Value: doc.Number},
		MetaField{Label: "Date", Value: date(doc.IssueDate)},
	)
	if doc.DueDate != nil {
		view.Meta = append(view.Meta, MetaField{Label: "Due date", Value: date(*doc.DueDate)})
	}
	if doc.ValidUntil != nil {
		view.Meta = append(view.Meta, MetaField{Label: "Valid until", Value: date(*doc.ValidUntil)})
	}
	if opts.ReferenceNumber != "" {
		view.Meta = append(view.Meta, MetaField{Label: "Reference", Value: opts.ReferenceNumber})
	}
	view.Meta = append(view.Meta, MetaField{Label: "Status", Value: string(doc.Status)})

	for _, item := range doc.Items {
		total, err := item.LineTotal()
		if err != nil {
			total = valueobject.Zero()
		}
		view.Items = append(view.Items, ItemRow{
			Name:      item.Name,
			Kind:      kindLabel(item.Kind),
			Quantity:  strconv.FormatInt(item.Quantity, 10),
			UnitPrice: money(item.UnitPrice),
			Total:     money(total),
		})
	}

	totals := doc.Totals
	view.Totals = append(view.Totals, TotalRow{Label: "Subtotal", Value: money(totals.Subtotal)})
	switch doc.Discount.Type {
	case billing.DiscountAmount:
		view.Totals = append(view.Totals, TotalRow{Label: "Discount", Value: "-" + money(totals.DiscountAmount)})
	case billing.DiscountPercent:
		view.Totals = append(view.Totals, TotalRow{
			Label: fmt.Sprintf("Discount (%s%%)", doc.Discount.Percent),
			Value: "-" + money(totals.DiscountAmount),
		})
	}
	view.Totals = append(view.Totals,
		TotalRow{Label: "Taxable base", Value: money(totals.TaxableBase())},
		TotalRow{Label: fmt.Sprintf("Tax (%s%%)", doc.Tax.RatePercent), Value: money(totals.TaxAmount)},
		TotalRow{Label: "Total", Value: money(totals.Total), Emphasis: true},
	)

	if doc.Kind == billing.DocumentKindSale {
		ledger := billing.Ledger(doc)
		view.Totals = append(view.Totals,
			TotalRow{Label: "Paid", Value: money(ledger.PaidAmount)},
			TotalRow{Label: "Balance due", Value: money(ledger.BalanceAmount), Emphasis: true},
		)
		for _, p := range ledger.Payments {
			view.Payments = append(view.Payments, PaymentRow{
				Date:   date(p.PaidAt),
				Method: p.Method.Label(),
				Notes:  p.Notes,
				Amount: money(p.Amount),
			})
		}
	}
	return view
}

func kindLabel(k billing.ItemKind) string {
	s := strings.ToLower(string(k))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
