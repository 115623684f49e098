package handler

import (
	"net/http"
	"testing"

	partyapp "github.com/byteledger/backend/internal/application/party"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerHandler_CreateAndGet(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodPost, "/api/v1/customers", map[string]any{
		"code":  "acme-01",
		"name":  "Acme Corp",
		"email": "billing@acme.test",
		"addresses": []map[string]any{
			{"label": "Billing address", "street": "1 Main St", "city": "Reno", "region": "NV"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created partyapp.CustomerResponse
	decodeData(t, w, &created)
	assert.Equal(t, "ACME-01", created.Code)
	require.Len(t, created.Addresses, 1)

	w = doRequest(t, server, http.MethodGet, "/api/v1/customers/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var fetched partyapp.CustomerResponse
	decodeData(t, w, &fetched)
	assert.Equal(t, "Acme Corp", fetched.Name)
	assert.Equal(t, "billing@acme.test", fetched.Email)
	assert.Equal(t, "Reno", fetched.Addresses[0].City)

	t.Run("duplicate code conflicts", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/customers", map[string]any{"code": "ACME-01", "name": "Other"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("other tenant cannot see it", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/customers/"+created.ID.String(), nil,
			middleware.TenantHeaderKey, uuid.New().String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCustomerHandler_CreateValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing name", map[string]any{"code": "C1"}, dto.ErrCodeValidation},
		{"bad email", map[string]any{"code": "C1", "name": "Jane", "email": "nope"}, dto.ErrCodeValidation},
		{"bad code characters", map[string]any{"code": "C 1", "name": "Jane"}, dto.ErrCodeInvalidInput},
		{"bad phone", map[string]any{"code": "C1", "name": "Jane", "phone": "call me"}, dto.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, http.MethodPost, "/api/v1/customers", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestCustomerHandler_List(t *testing.T) {
	server := newTestServer(t)

	for _, c := range []struct{ code, name string }{{"B1", "Beta Builders"}, {"A1", "Alpha Electric"}, {"G1", "Gamma Glass"}} {
		w := doRequest(t, server, http.MethodPost, "/api/v1/customers", map[string]any{"code": c.code, "name": c.name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doRequest(t, server, http.MethodGet, "/api/v1/customers?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page []partyapp.CustomerResponse
	decodeData(t, w, &page)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha Electric", page[0].Name)
	assert.Equal(t, "Beta Builders", page[1].Name)

	w = doRequest(t, server, http.MethodGet, "/api/v1/customers?search=glass", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &page)
	require.Len(t, page, 1)
	assert.Equal(t, "G1", page[0].Code)

	w = doRequest(t, server, http.MethodGet, "/api/v1/customers/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
