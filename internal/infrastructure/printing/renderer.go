package printing

import (
	"bytes"
	"context"
	"time"

	"github.com/byteledger/backend/internal/domain/printing"
)

// Format selects a renderer
type Format string

const (
	FormatPDF       Format = "pdf"
	FormatHTML      Format = "html"
	FormatChromePDF Format = "chrome-pdf"
)

// IsValid checks if the Format is a known value
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatHTML, FormatChromePDF:
		return true
	}
	return false
}

// Extension returns the file extension of the rendered output
func (f Format) Extension() string {
	if f == FormatHTML {
		return "html"
	}
	return "pdf"
}

// RenderMeta carries document metadata embedded in the output where the format supports it
type RenderMeta struct {
	Author    string
	Subject   string
	Keywords  []string
	CreatedAt time.Time // zero leaves the backend default
}

// RenderRequest contains laid-out pages to draw
type RenderRequest struct {
	Pages []printing.Page
	Title string
	Meta  RenderMeta
}

// RenderResult contains the rendered output
type RenderResult struct {
	Data           []byte
	ContentType    string
	PageCount      int
	RenderDuration time.Duration
}

// Renderer draws layout pages into one output format
type Renderer interface {
	// Render draws every page of the request
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeEmptyDocument     = "EMPTY_DOCUMENT"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// validateRequest rejects requests without pages
func validateRequest(req *RenderRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeEmptyDocument, "render request is nil", nil)
	}
	if len(req.Pages) == 0 {
		return NewRenderError(ErrCodeEmptyDocument, "render request has no pages", nil)
	}
	return nil
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Pages" also matches the page prefix
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

// ptToInches converts PostScript points to inches
func ptToInches(pt float64) float64 {
	return pt / 72
}
