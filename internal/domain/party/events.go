package party

import (
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
)

const (
	// AggregateTypeCustomer is the aggregate type name used in events
	AggregateTypeCustomer = "Customer"

	EventTypeCustomerCreated = "CustomerCreated"
)

// CustomerCreatedEvent is raised when a customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.TenantID, time.Now()),
		Code:            c.Code,
		Name:            c.Name,
	}
}
