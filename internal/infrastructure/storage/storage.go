// Package storage persists generated documents on the local file system or in
// any S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DocumentStorage stores rendered document files
type DocumentStorage interface {
	// Store saves a rendered file and returns its key and URL
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Open retrieves a stored file by its key
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the accessible URL for a key
	URL(key string) string
}

// StoreRequest contains the parameters for storing a rendered document
type StoreRequest struct {
	TenantID    uuid.UUID
	DocumentID  uuid.UUID
	Number      string
	Extension   string // pdf, html
	ContentType string
	IssuedAt    time.Time // selects the year/month directory
	Data        []byte
}

// StoreResult contains the result of storing a document
type StoreResult struct {
	Path string // storage key, relative to the backend root
	URL  string
	Size int64
}

var (
	// ErrInvalidKey is returned for keys that are absolute or escape the storage root
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrObjectNotFound is returned by Open when the key does not exist
	ErrObjectNotFound = errors.New("stored document not found")
)

// Validate checks the request fields every backend needs
func (r *StoreRequest) Validate() error {
	if r == nil {
		return errors.New("store request is nil")
	}
	if r.TenantID == uuid.Nil {
		return errors.New("tenant ID is required")
	}
	if r.DocumentID == uuid.Nil {
		return errors.New("document ID is required")
	}
	if strings.TrimSpace(r.Extension) == "" {
		return errors.New("file extension is required")
	}
	if len(r.Data) == 0 {
		return errors.New("document data is empty")
	}
	return nil
}

// ObjectKey builds the slash-separated key {tenant}/{yyyy}/{mm}/{doc}-{number}.{ext}
func ObjectKey(req *StoreRequest) string {
	issued := req.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	name := req.DocumentID.String()
	if number := sanitizeNumber(req.Number); number != "" {
		name += "-" + number
	}
	return path.Join(
		req.TenantID.String(),
		fmt.Sprintf("%04d", issued.Year()),
		fmt.Sprintf("%02d", issued.Month()),
		name+"."+strings.TrimPrefix(strings.ToLower(req.Extension), "."),
	)
}

// sanitizeNumber keeps letters, digits, dash and underscore
func sanitizeNumber(number string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(number) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '/' || r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// cleanKey rejects absolute keys and ".." components
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}
