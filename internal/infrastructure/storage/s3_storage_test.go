package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3DocumentStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3DocumentStorage(ctx, &config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half a key pair returns error", func(t *testing.T) {
		_, err := NewS3DocumentStorage(ctx, &config.StorageConfig{Bucket: "docs", AccessKeyID: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config applies defaults and options", func(t *testing.T) {
		s, err := NewS3DocumentStorage(ctx, &config.StorageConfig{
			Bucket:          "docs",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
			Endpoint:        "localhost:9000",
			UsePathStyle:    true,
			Prefix:          "/billing/",
		}, WithLogger(zaptest.NewLogger(t)), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "docs", s.Bucket())
		assert.Equal(t, "billing", s.prefix)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "minio:9000", want: "https://minio:9000"},
		{in: "http://localhost:9000/", want: "http://localhost:9000"},
		{in: "https://s3.example.com", want: "https://s3.example.com"},
		{in: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3DocumentStorage_URL(t *testing.T) {
	s := &S3DocumentStorage{bucket: "docs", prefix: "billing"}
	assert.Equal(t, "s3://docs/billing/t/2024/03/a.pdf", s.URL("t/2024/03/a.pdf"))

	s.baseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/billing/t/2024/03/a.pdf", s.URL("t/2024/03/a.pdf"))
}

// fakeS3 is a minimal path-style object endpoint keyed by request path
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[r.URL.Path])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

func TestS3DocumentStorage_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	s, err := NewS3DocumentStorage(ctx, &config.StorageConfig{
		Bucket:          "docs",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
		Prefix:          "billing",
	})
	require.NoError(t, err)

	tenantID := uuid.MustParse("7d1c2c55-8c2f-4b8e-9a36-0b8f0a4b2a10")
	docID := uuid.MustParse("5b6f7a1e-1f0a-4d8d-8b90-0f3b9a6e7c21")
	res, err := s.Store(ctx, &StoreRequest{
		TenantID:    tenantID,
		DocumentID:  docID,
		Number:      "INV-0007",
		Extension:   "pdf",
		ContentType: "application/pdf",
		IssuedAt:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Data:        []byte("%PDF-1.3 test"),
	})
	require.NoError(t, err)

	wantKey := tenantID.String() + "/2024/03/" + docID.String() + "-INV-0007.pdf"
	assert.Equal(t, wantKey, res.Path)
	assert.EqualValues(t, 13, res.Size)
	assert.True(t, fake.has("/docs/billing/"+wantKey))

	body, err := s.Open(ctx, res.Path)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, body.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 test", string(data))

	_, err = s.Open(ctx, tenantID.String()+"/missing.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.Delete(ctx, res.Path))
	assert.False(t, fake.has("/docs/billing/"+wantKey))
}

func TestS3DocumentStorage_RejectsEscapingKeys(t *testing.T) {
	s := &S3DocumentStorage{bucket: "docs"}
	_, err := s.Open(context.Background(), "../other-tenant/x.pdf")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, s.Delete(context.Background(), "/abs/x.pdf"), ErrInvalidKey)
}
