package handler

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	printingapp "github.com/byteledger/backend/internal/application/printing"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSale(t *testing.T, server *gin.Engine) billingapp.DocumentResponse {
	t.Helper()
	w := doRequest(t, server, http.MethodPost, "/api/v1/documents", saleBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc billingapp.DocumentResponse
	decodeData(t, w, &doc)
	return doc
}

func TestDocumentHandler_Preview(t *testing.T) {
	server := newTestServer(t)
	sale := createSale(t, server)
	base := "/api/v1/documents/" + sale.ID.String()

	t.Run("html", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, base+"/preview?format=html", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
		assert.Contains(t, w.Header().Get("Content-Disposition"), sale.Number)
		assert.Equal(t, "1", w.Header().Get("X-Page-Count"))
		assert.Contains(t, w.Body.String(), "Widget")
	})

	t.Run("default pdf", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, base+"/preview", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("unknown format", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, base+"/preview?format=docx", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing document", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/documents/"+uuid.New().String()+"/preview", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDocumentHandler_Render(t *testing.T) {
	server := newTestServer(t)
	sale := createSale(t, server)
	base := "/api/v1/documents/" + sale.ID.String()

	w := doRequest(t, server, http.MethodPost, base+"/render", map[string]any{"format": "html"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result printingapp.GenerateResponse
	decodeData(t, w, &result)
	assert.Equal(t, sale.ID, result.DocumentID)
	assert.Equal(t, sale.Number, result.Number)
	assert.Equal(t, "html", result.Format)
	assert.Positive(t, result.Size)
	assert.NotEmpty(t, result.Path)

	t.Run("empty body uses default format", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, base+"/render", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var result printingapp.GenerateResponse
		decodeData(t, w, &result)
		assert.Equal(t, "pdf", result.Format)
	})

	t.Run("chrome disabled", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, base+"/render", map[string]any{"format": "chrome-pdf"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeUnsupportedFormat, decodeError(t, w).Code)
	})
}
