package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeLockTimeout         = "ERR_LOCK_TIMEOUT"
)

// Billing rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeDocumentLocked    = "ERR_DOCUMENT_LOCKED"
	ErrCodeOverpayment       = "ERR_OVERPAYMENT"
)

// Document generation error codes
const (
	ErrCodeGenerationFailed  = "ERR_DOCUMENT_GENERATION_FAILED"
	ErrCodeUnsupportedFormat = "ERR_UNSUPPORTED_FORMAT"
	ErrCodeRenderFailed      = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout     = "ERR_RENDER_TIMEOUT"
	ErrCodeEmptyDocument     = "ERR_EMPTY_DOCUMENT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	// the client may retry once the competing writer has finished
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLockTimeout:         http.StatusConflict,
	ErrCodeDocumentLocked:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeOverpayment:       http.StatusUnprocessableEntity,
	ErrCodeGenerationFailed:  http.StatusUnprocessableEntity,

	ErrCodeUnsupportedFormat: http.StatusBadRequest,
	ErrCodeEmptyDocument:     http.StatusUnprocessableEntity,
	ErrCodeRenderFailed:      http.StatusInternalServerError,
	ErrCodeRenderTimeout:     http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain and renderer codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":             ErrCodeAlreadyExists,
	"INVALID_INPUT":              ErrCodeInvalidInput,
	"INVALID_STATE":              ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":       ErrCodeConcurrencyConflict,
	"LOCK_TIMEOUT":               ErrCodeLockTimeout,
	"VALIDATION_ERROR":           ErrCodeValidation,
	"OVERPAYMENT":                ErrCodeOverpayment,
	"DOCUMENT_LOCKED":            ErrCodeDocumentLocked,
	"INVALID_TRANSITION":         ErrCodeInvalidTransition,
	"DOCUMENT_GENERATION_FAILED": ErrCodeGenerationFailed,
	"UNSUPPORTED_FORMAT":         ErrCodeUnsupportedFormat,
	"RENDER_FAILED":              ErrCodeRenderFailed,
	"RENDER_TIMEOUT":             ErrCodeRenderTimeout,
	"EMPTY_DOCUMENT":             ErrCodeEmptyDocument,
	"BAD_REQUEST":                ErrCodeBadRequest,
	"INVALID_CODE":               ErrCodeInvalidInput,
	"INVALID_NAME":               ErrCodeInvalidInput,
	"INVALID_PHONE":              ErrCodeInvalidInput,
	"INVALID_EMAIL":              ErrCodeInvalidInput,
	"INVALID_TAX_ID":             ErrCodeInvalidInput,
	"INVALID_TENANT":             ErrCodeInvalidInput,
	"TOO_MANY_ADDRESSES":         ErrCodeInvalidInput,
	"INTERNAL_ERROR":             ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
