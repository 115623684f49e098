package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	infra "github.com/byteledger/backend/internal/infrastructure/printing"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "validation error",
			err:          &billing.ValidationError{Field: "items[0].quantity", Message: "quantity must be at least 1"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
		},
		{
			name:         "wrapped overpayment",
			err:          fmt.Errorf("record: %w", &billing.OverpaymentError{Attempted: valueobject.MustMoney("5.00"), Balance: valueobject.MustMoney("4.99")}),
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeOverpayment,
		},
		{
			name:         "render timeout",
			err:          infra.NewRenderError(infra.ErrCodeRenderTimeout, "rendering timed out", context.DeadlineExceeded),
			expectedCode: http.StatusGatewayTimeout,
			expectedErr:  dto.ErrCodeRenderTimeout,
		},
		{
			name:         "empty document",
			err:          infra.NewRenderError(infra.ErrCodeEmptyDocument, "no pages", nil),
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeEmptyDocument,
		},
		{
			name:         "document locked",
			err:          billing.ErrDocumentLocked,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeDocumentLocked,
		},
		{
			name:         "wrapped concurrency conflict",
			err:          fmt.Errorf("save: %w", shared.ErrConcurrencyConflict),
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeConcurrencyConflict,
		},
		{
			name:         "invalid transition",
			err:          billing.ErrInvalidTransition,
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeInvalidTransition,
		},
		{
			name:         "unknown error",
			err:          errors.New("connection reset"),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_Details(t *testing.T) {
	h := &BaseHandler{}

	t.Run("validation field", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, &billing.ValidationError{Field: "discount.percent", Message: "discount percent must be between 0 and 100"})

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "discount.percent", resp.Error.Details[0].Field)
	})

	t.Run("overpayment amounts", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, &billing.OverpaymentError{Attempted: valueobject.MustMoney("5.00"), Balance: valueobject.MustMoney("4.99")})

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "5.00", resp.Error.Context["attempted"])
		assert.Equal(t, "4.99", resp.Error.Context["balance"])
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Created(c, map[string]string{"id": "123"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.BadRequest(c, "Invalid document ID format")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
}
