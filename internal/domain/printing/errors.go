package printing

import (
	"errors"
	"fmt"
)

// CodeLayoutOverflow is the error code of LayoutOverflowError
const CodeLayoutOverflow = "LAYOUT_OVERFLOW"

// LayoutOverflowError is returned when a document needs more pages than the
// configured limit. No pages are returned with it.
type LayoutOverflowError struct {
	Limit int `json:"limit"`
}

func (e *LayoutOverflowError) Error() string {
	return fmt.Sprintf("document layout exceeds the limit of %d pages", e.Limit)
}

// Code returns the error code
func (e *LayoutOverflowError) Code() string {
	return CodeLayoutOverflow
}

var (
	// ErrZeroHeightRow guards forward progress: every advance must move the cursor
	ErrZeroHeightRow = errors.New("layout row must have positive height")

	// ErrRowTooTall is returned when a block cannot fit even on an empty page
	ErrRowTooTall = errors.New("layout row is taller than the page body")

	// ErrColumnsTooWide is returned when the fixed columns leave too little room for names
	ErrColumnsTooWide = errors.New("fixed table columns leave no room for the name column")
)
