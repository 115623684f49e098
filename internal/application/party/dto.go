package party

import (
	"time"

	"github.com/byteledger/backend/internal/domain/party"
	"github.com/google/uuid"
)

// AddressInput is one postal address in a customer request
type AddressInput struct {
	Label      string `json:"label" binding:"max=100"`
	Street     string `json:"street" binding:"max=500"`
	City       string `json:"city" binding:"max=100"`
	Region     string `json:"region" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code      string         `json:"code" binding:"required,min=1,max=50"`
	Name      string         `json:"name" binding:"required,min=1,max=200"`
	Phone     string         `json:"phone" binding:"max=50"`
	Email     string         `json:"email" binding:"omitempty,email,max=200"`
	TaxID     string         `json:"tax_id" binding:"max=50"`
	Addresses []AddressInput `json:"addresses" binding:"omitempty,max=6,dive"`
	Notes     string         `json:"notes"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenant_id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	TaxID     string         `json:"tax_id,omitempty"`
	Addresses []AddressInput `json:"addresses"`
	Notes     string         `json:"notes,omitempty"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *party.Customer) CustomerResponse {
	addresses := make([]AddressInput, len(c.Addresses))
	for i, a := range c.Addresses {
		addresses[i] = AddressInput(a)
	}
	return CustomerResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Code:      c.Code,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		TaxID:     c.TaxID,
		Addresses: addresses,
		Notes:     c.Notes,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (a AddressInput) toDomain() party.Address {
	return party.Address(a)
}
