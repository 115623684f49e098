package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod is how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Label returns a human readable name
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCash:
		return "Cash"
	case PaymentMethodCard:
		return "Card"
	case PaymentMethodBankTransfer:
		return "Bank transfer"
	case PaymentMethodCheck:
		return "Check"
	default:
		return "Other"
	}
}

// Payment is one ledger entry. Entries are never edited or removed.
type Payment struct {
	ID       uuid.UUID         `json:"id"`
	Sequence int               `json:"sequence"`
	Amount   valueobject.Money `json:"amount"`
	Method   PaymentMethod     `json:"method"`
	PaidAt   time.Time         `json:"paid_at"`
	Notes    string            `json:"notes,omitempty"`
}

// Payments is the ordered ledger, persisted as a JSONB column
type Payments []Payment

// Value implements driver.Valuer
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (p *Payments) Scan(value any) error {
	if value == nil {
		*p = Payments{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("cannot scan payments: unsupported type")
	}
	return json.Unmarshal(data, p)
}

// PaymentInput is a payment submission
type PaymentInput struct {
	Amount valueobject.Money
	Method PaymentMethod
	Notes  string
	PaidAt time.Time
}

// LedgerState is derived from a document's payments and total.
// PaidAmount + BalanceAmount always equals Total.
type LedgerState struct {
	Payments      []Payment         `json:"payments"`
	Total         valueobject.Money `json:"total"`
	PaidAmount    valueobject.Money `json:"paid_amount"`
	BalanceAmount valueobject.Money `json:"balance_amount"`
	Sequence      int               `json:"sequence"`
}

// IsSettled reports whether nothing remains owed
func (s LedgerState) IsSettled() bool {
	return !s.BalanceAmount.IsPositive()
}

// Ledger derives the ledger state of doc from its current items and payments.
// The total is recomputed rather than read from the cached Totals field.
func Ledger(doc *Document) LedgerState {
	total := doc.Totals.Total
	if t, err := ComputeTotals(doc.Items, doc.Discount, doc.Tax); err == nil {
		total = t.Total
	}
	return ledgerFor(doc.Payments, total)
}

func ledgerFor(payments []Payment, total valueobject.Money) LedgerState {
	var paid int64
	for _, p := range payments {
		paid += p.Amount.Cents()
	}
	balance := total.Cents() - paid
	if balance < 0 {
		balance = 0
	}
	entries := make([]Payment, len(payments))
	copy(entries, payments)
	return LedgerState{
		Payments:      entries,
		Total:         total,
		PaidAmount:    valueobject.NewMoneyFromCents(paid),
		BalanceAmount: valueobject.NewMoneyFromCents(balance),
		Sequence:      len(payments),
	}
}

// AppendPayment validates in against the latest ledger state of doc and appends it.
//
// Callers must serialize calls per document; the check and the append are not atomic
// across goroutines. On any error doc is left unchanged.
func AppendPayment(doc *Document, in PaymentInput) (LedgerState, error) {
	if doc.Kind != DocumentKindSale {
		return LedgerState{}, ErrPaymentsNotAccepted
	}
	if !in.Amount.IsPositive() {
		return LedgerState{}, newValidationError("amount", "payment amount must be positive")
	}
	if !in.Method.IsValid() {
		return LedgerState{}, newValidationError("method", "unknown payment method %q", in.Method)
	}
	if in.PaidAt.IsZero() {
		return LedgerState{}, newValidationError("paid_at", "payment date is required")
	}

	totals, err := ComputeTotals(doc.Items, doc.Discount, doc.Tax)
	if err != nil {
		return LedgerState{}, fmt.Errorf("recompute totals: %w", err)
	}
	current := ledgerFor(doc.Payments, totals.Total)
	if in.Amount.GreaterThan(current.BalanceAmount) {
		return LedgerState{}, &OverpaymentError{Attempted: in.Amount, Balance: current.BalanceAmount}
	}

	payment := Payment{
		ID:       uuid.New(),
		Sequence: current.Sequence + 1,
		Amount:   in.Amount,
		Method:   in.Method,
		PaidAt:   in.PaidAt,
		Notes:    in.Notes,
	}
	doc.Payments = append(doc.Payments, payment)
	doc.Totals = totals
	doc.UpdatedAt = in.PaidAt
	doc.IncrementVersion()

	state := ledgerFor(doc.Payments, totals.Total)
	doc.AddDomainEvent(NewPaymentRecordedEvent(doc, payment, state))
	if state.IsSettled() {
		doc.AddDomainEvent(NewDocumentPaidEvent(doc, state, in.PaidAt))
	}
	return state, nil
}
