package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/byteledger/backend/internal/domain/party"
)

// Addresses is stored as a JSONB array on the customer row
type Addresses []party.Address

// Value implements driver.Valuer
func (a Addresses) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (a *Addresses) Scan(value any) error {
	if value == nil {
		*a = Addresses{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("cannot scan addresses: unsupported type")
	}
}

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	TenantAggregateModel
	Code      string    `gorm:"type:varchar(50);not null"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Phone     string    `gorm:"type:varchar(50)"`
	Email     string    `gorm:"type:varchar(200)"`
	TaxID     string    `gorm:"type:varchar(50)"`
	Addresses Addresses `gorm:"type:jsonb;not null"`
	Notes     string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *party.Customer {
	c := &party.Customer{
		Code:      m.Code,
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
		TaxID:     m.TaxID,
		Addresses: []party.Address(m.Addresses),
		Notes:     m.Notes,
	}
	if c.Addresses == nil {
		c.Addresses = []party.Address{}
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *party.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.TaxID = c.TaxID
	m.Addresses = Addresses(c.Addresses)
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *party.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
