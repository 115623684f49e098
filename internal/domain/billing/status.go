package billing

import (
	"time"
)

// Status is the lifecycle status of a billing document
type Status string

// Estimate statuses
const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusApproved  Status = "APPROVED"
	StatusExpired   Status = "EXPIRED"
	StatusConverted Status = "CONVERTED"
)

// Sale statuses
const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusExpired, StatusConverted,
		StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// IsTerminal returns true for statuses no action can leave
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusPaid || s == StatusExpired
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the status of doc at now. It reads only doc and now.
//
// Sales are PAID once the balance reaches zero, OVERDUE while money is owed after the
// due date and PENDING otherwise. A sale without items is still being drafted and stays
// PENDING even past its due date.
// Estimates are CONVERTED once converted, EXPIRED past their valid-until date and otherwise
// report their explicit stage.
func DeriveStatus(doc *Document, now time.Time) Status {
	if doc.Kind == DocumentKindSale {
		ledger := Ledger(doc)
		if ledger.IsSettled() {
			if ledger.Total.IsPositive() || len(doc.Items) > 0 {
				return StatusPaid
			}
			// nothing billed yet, so nothing is owed either
			return StatusPending
		}
		if doc.DueDate != nil && now.After(*doc.DueDate) {
			return StatusOverdue
		}
		return StatusPending
	}

	if doc.ConvertedAt != nil || doc.Stage == StatusConverted {
		return StatusConverted
	}
	if doc.ValidUntil != nil && now.After(*doc.ValidUntil) {
		return StatusExpired
	}
	switch doc.Stage {
	case StatusSent, StatusApproved:
		return doc.Stage
	default:
		return StatusDraft
	}
}
