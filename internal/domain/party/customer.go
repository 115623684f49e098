package party

import (
	"regexp"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAddresses bounds how many addresses a customer keeps on file
const MaxAddresses = 6

var (
	validPhone = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
	validEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Address is a postal address printed in the recipient block of a document
type Address struct {
	Label      string `json:"label"` // e.g. "Billing address", "Service location"
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Lines returns the printable lines of the address, skipping empty parts
func (a Address) Lines() []string {
	lines := make([]string, 0, 3)
	if s := strings.TrimSpace(a.Street); s != "" {
		lines = append(lines, s)
	}
	locality := strings.TrimSpace(a.City)
	if region := strings.TrimSpace(a.Region); region != "" {
		if locality != "" {
			locality += ", "
		}
		locality += region
	}
	if pc := strings.TrimSpace(a.PostalCode); pc != "" {
		if locality != "" {
			locality += " "
		}
		locality += pc
	}
	if locality != "" {
		lines = append(lines, locality)
	}
	if c := strings.TrimSpace(a.Country); c != "" {
		lines = append(lines, c)
	}
	return lines
}

// IsEmpty reports whether the address has nothing printable
func (a Address) IsEmpty() bool {
	return len(a.Lines()) == 0
}

// Customer is the billed party of estimates and sales
type Customer struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Phone     string
	Email     string
	TaxID     string
	Addresses []Address
	Notes     string
}

// NewCustomer creates a customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                strings.TrimSpace(name),
		Addresses:           []Address{},
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Rename changes the display name
func (c *Customer) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.touch()
	return nil
}

// SetContact sets phone and email; empty values clear the field
func (c *Customer) SetContact(phone, email string) error {
	if phone != "" {
		if len(phone) > 50 || !validPhone.MatchString(phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}
	if email != "" {
		if len(email) > 200 || !validEmail.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	c.Phone = phone
	c.Email = email
	c.touch()
	return nil
}

// SetTaxID sets the tax identification number
func (c *Customer) SetTaxID(taxID string) error {
	if len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}
	c.TaxID = taxID
	c.touch()
	return nil
}

// SetAddresses replaces the address list. Empty addresses are dropped.
func (c *Customer) SetAddresses(addresses []Address) error {
	kept := make([]Address, 0, len(addresses))
	for _, a := range addresses {
		if !a.IsEmpty() {
			kept = append(kept, a)
		}
	}
	if len(kept) > MaxAddresses {
		return shared.NewDomainError("TOO_MANY_ADDRESSES", "A customer can keep at most 6 addresses")
	}
	c.Addresses = kept
	c.touch()
	return nil
}

// SetNotes sets free-form notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.touch()
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
