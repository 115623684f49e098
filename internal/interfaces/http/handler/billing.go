package handler

import (
	"context"
	"net/http"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets clients retry a payment without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// BillingHandler handles estimate, sale and payment endpoints
type BillingHandler struct {
	BaseHandler
	billingService *billingapp.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService *billingapp.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// QuoteTotals godoc
//
//	@ID				quoteBillingTotals
//	@Summary		Compute document totals
//	@Description	Runs the monetary calculator over items, discount and tax without storing anything
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.QuoteTotalsRequest	true	"Items and pricing"
//	@Success		200		{object}	dto.Response{data=billingapp.TotalsResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/quotes/totals [post]
func (h *BillingHandler) QuoteTotals(c *gin.Context) {
	var req billingapp.QuoteTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	totals, err := h.billingService.PreviewTotals(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// CreateDocument godoc
//
//	@ID				createBillingDocument
//	@Summary		Create an estimate or sale
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.CreateDocumentRequest	true	"Document"
//	@Success		201		{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/documents [post]
func (h *BillingHandler) CreateDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	doc, err := h.billingService.CreateDocument(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetDocument godoc
//
//	@ID				getBillingDocument
//	@Summary		Get a document with its derived status
//	@Tags			billing
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/documents/{id} [get]
func (h *BillingHandler) GetDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.billingService.GetDocument(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ListDocuments godoc
//
//	@ID				listBillingDocuments
//	@Summary		List documents
//	@Tags			billing
//	@Produce		json
//	@Param			kind		query		string	false	"ESTIMATE or SALE"
//	@Param			status		query		string	false	"Derived status"
//	@Param			search		query		string	false	"Number or notes"
//	@Param			page		query		int		false	"Page"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]billingapp.DocumentResponse}
//	@Router			/documents [get]
func (h *BillingHandler) ListDocuments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	page, err := h.billingService.ListDocuments(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// UpdateItems godoc
//
//	@ID				updateBillingDocumentItems
//	@Summary		Replace the line items of an unlocked document
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Document ID"
//	@Param			request	body		billingapp.UpdateItemsRequest	true	"Items"
//	@Success		200		{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Failure		409		{object}	dto.Response
//	@Router			/documents/{id}/items [put]
func (h *BillingHandler) UpdateItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req billingapp.UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	doc, err := h.billingService.UpdateItems(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// UpdatePricing godoc
//
//	@ID				updateBillingDocumentPricing
//	@Summary		Replace the discount and tax rate of an unlocked document
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Document ID"
//	@Param			request	body		billingapp.UpdatePricingRequest	true	"Pricing"
//	@Success		200		{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Router			/documents/{id}/pricing [put]
func (h *BillingHandler) UpdatePricing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req billingapp.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	doc, err := h.billingService.UpdatePricing(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// SendEstimate godoc
//
//	@ID				sendBillingEstimate
//	@Summary		Mark an estimate as sent
//	@Tags			billing
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/documents/{id}/send [post]
func (h *BillingHandler) SendEstimate(c *gin.Context) {
	h.transition(c, h.billingService.SendEstimate)
}

// ApproveEstimate godoc
//
//	@ID				approveBillingEstimate
//	@Summary		Approve a sent estimate
//	@Tags			billing
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	dto.Response{data=billingapp.DocumentResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/documents/{id}/approve [post]
func (h *BillingHandler) ApproveEstimate(c *gin.Context) {
	h.transition(c, h.billingService.ApproveEstimate)
}

// ConvertEstimate godoc
//
//	@ID				convertBillingEstimate
//	@Summary		Convert an approved estimate into a sale
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Document ID"
//	@Param			request	body		billingapp.ConvertEstimateRequest	false	"Sale number and dates"
//	@Success		201		{object}	dto.Response{data=billingapp.ConvertEstimateResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/documents/{id}/convert [post]
func (h *BillingHandler) ConvertEstimate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	// the body is optional
	var req billingapp.ConvertEstimateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(c, err)
			return
		}
	}

	result, err := h.billingService.ConvertEstimate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordPayment godoc
//
//	@ID				recordBillingPayment
//	@Summary		Record a payment against a sale
//	@Description	Appends to the payment ledger. A repeated Idempotency-Key replays the current ledger.
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string							true	"Document ID"
//	@Param			Idempotency-Key	header		string							false	"Retry key"
//	@Param			request			body		billingapp.RecordPaymentRequest	true	"Payment"
//	@Success		201				{object}	dto.Response{data=billingapp.RecordPaymentResponse}
//	@Success		200				{object}	dto.Response{data=billingapp.RecordPaymentResponse}
//	@Failure		409				{object}	dto.Response
//	@Failure		422				{object}	dto.Response
//	@Router			/documents/{id}/payments [post]
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	result, err := h.billingService.RecordPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetLedger godoc
//
//	@ID				getBillingLedger
//	@Summary		Get the payment ledger of a sale
//	@Tags			billing
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	dto.Response{data=billingapp.LedgerResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/documents/{id}/ledger [get]
func (h *BillingHandler) GetLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	ledger, err := h.billingService.GetLedger(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// transition runs a status change that takes no request body
func (h *BillingHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*billingapp.DocumentResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}
