package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory. Default: ./data/documents
	BasePath string
	// BaseURL is the URL prefix under which stored files are served
	BaseURL string
	Logger  *zap.Logger
}

// FileSystemStorage stores documents below a local directory
type FileSystemStorage struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewFileSystemStorage creates the base directory if needed
func NewFileSystemStorage(cfg *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if cfg == nil {
		cfg = &FileSystemStorageConfig{}
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./data/documents"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "/files/documents"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &FileSystemStorage{
		basePath: basePath,
		baseURL:  baseURL,
		logger:   logger,
	}, nil
}

// BasePath returns the storage root directory
func (s *FileSystemStorage) BasePath() string {
	return s.basePath
}

// Store writes the file to {base}/{tenant}/{yyyy}/{mm}/{doc}-{number}.{ext}.
// Storing the same document again overwrites the previous file.
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := ObjectKey(req)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a temp file first so readers never see a partial document
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(req.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to move document into place: %w", err)
	}

	url := s.URL(key)
	s.logger.Info("document stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.Data)),
		zap.String("url", url))

	return &StoreResult{Path: key, URL: url, Size: int64(len(req.Data))}, nil
}

// Open returns the stored file; the caller closes it
func (s *FileSystemStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return file, nil
}

// Delete removes a stored file
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.logger.Info("document deleted", zap.String("path", key))
	return nil
}

// URL returns the accessible URL for a stored key
func (s *FileSystemStorage) URL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(key), "/")
}

// resolve maps a key to a path and verifies it stays under the base directory
func (s *FileSystemStorage) resolve(key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		s.logger.Warn("blocked storage key", zap.String("key", key))
		return "", err
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, filepath.FromSlash(clean)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("key", key),
			zap.String("absPath", absPath))
		return "", ErrInvalidKey
	}
	return absPath, nil
}

var _ DocumentStorage = (*FileSystemStorage)(nil)
