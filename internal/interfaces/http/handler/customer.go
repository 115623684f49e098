package handler

import (
	"net/http"

	partyapp "github.com/byteledger/backend/internal/application/party"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles the customer directory used for billing recipients
type CustomerHandler struct {
	BaseHandler
	customerService *partyapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partyapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
//
//	@ID				createCustomer
//	@Summary		Create a customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		partyapp.CreateCustomerRequest	true	"Customer"
//	@Success		201		{object}	dto.Response{data=partyapp.CustomerResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID godoc
//
//	@ID				getCustomer
//	@Summary		Get a customer
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	dto.Response{data=partyapp.CustomerResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List godoc
//
//	@ID				listCustomers
//	@Summary		List customers
//	@Tags			customers
//	@Produce		json
//	@Param			search		query		string	false	"Search by name, code or email"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]partyapp.CustomerResponse}
//	@Router			/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter partyapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	page, err := h.customerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
