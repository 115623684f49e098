package handler

import (
	"fmt"
	"net/http"

	printingapp "github.com/byteledger/backend/internal/application/printing"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DocumentHandler renders billing documents to PDF or HTML
type DocumentHandler struct {
	BaseHandler
	documentService *printingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *printingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// RenderDocument godoc
//
//	@ID				renderBillingDocument
//	@Summary		Render and store a document
//	@Description	Lays out the document, renders it in the requested format and stores the file
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Document ID"
//	@Param			request	body		printingapp.GenerateRequest	false	"Output format"
//	@Success		201		{object}	dto.Response{data=printingapp.GenerateResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Failure		504		{object}	dto.Response
//	@Router			/documents/{id}/render [post]
func (h *DocumentHandler) RenderDocument(c *gin.Context) {
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

	var req printingapp.GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(c, err)
			return
		}
	}

	result, err := h.documentService.Generate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// PreviewDocument godoc
//
//	@ID				previewBillingDocument
//	@Summary		Render a document without storing it
//	@Tags			documents
//	@Produce		application/pdf
//	@Produce		text/html
//	@Param			id		path		string	true	"Document ID"
//	@Param			format	query		string	false	"pdf, html or chrome-pdf"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/documents/{id}/preview [get]
func (h *DocumentHandler) PreviewDocument(c *gin.Context) {
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

	var req printingapp.GenerateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	result, err := h.documentService.Preview(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Filename))
	c.Header("X-Page-Count", fmt.Sprint(result.PageCount))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
