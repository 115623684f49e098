package billing

import (
	"errors"
	"fmt"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
)

// Error codes surfaced to API clients
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeOverpayment = "OVERPAYMENT"
)

// ValidationError reports invalid monetary or document input.
// It is returned before any mutation, so nothing is partially applied.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns the error code
func (e *ValidationError) Code() string {
	return CodeValidation
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AmountInputError turns a sub-cent amount parse failure into a ValidationError.
// Other errors are returned unchanged.
func AmountInputError(field string, err error) error {
	if errors.Is(err, valueobject.ErrMoneyPrecision) {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return err
}

// OverpaymentError is returned when a payment exceeds the current balance.
// The ledger is left unchanged.
type OverpaymentError struct {
	Attempted valueobject.Money `json:"attempted"`
	Balance   valueobject.Money `json:"balance"`
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds outstanding balance of %s", e.Attempted, e.Balance)
}

// Code returns the error code
func (e *OverpaymentError) Code() string {
	return CodeOverpayment
}

var (
	// ErrDocumentLocked is returned when items or pricing change on a converted estimate or a paid sale
	ErrDocumentLocked = shared.NewDomainError("DOCUMENT_LOCKED", "Document can no longer be modified")

	// ErrInvalidTransition is returned for a lifecycle action not allowed from the current status
	ErrInvalidTransition = shared.NewDomainError("INVALID_TRANSITION", "Status transition not allowed")

	// ErrPaymentsNotAccepted is returned when a payment targets an estimate
	ErrPaymentsNotAccepted = shared.NewDomainError("INVALID_STATE", "Payments can only be recorded against a sale")

	// ErrDocumentNotFound is returned by repositories when no document matches
	ErrDocumentNotFound = shared.NewDomainError("NOT_FOUND", "Billing document not found")
)
