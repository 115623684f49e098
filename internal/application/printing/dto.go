package printing

import (
	"time"

	"github.com/google/uuid"
)

// GenerateRequest selects the output format. Empty uses the registry default.
type GenerateRequest struct {
	Format string `json:"format" form:"format" binding:"omitempty,oneof=pdf html chrome-pdf"`
}

// GenerateResponse describes a stored document file
type GenerateResponse struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Number      string    `json:"number"`
	Format      string    `json:"format"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	PageCount   int       `json:"page_count"`
	Size        int64     `json:"size"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PreviewResult is a rendered document that was not stored
type PreviewResult struct {
	Data        []byte
	ContentType string
	Filename    string
	PageCount   int
}
