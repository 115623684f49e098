package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/byteledger/backend/internal/domain/party"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/google/uuid"
)

// PartyDirectory resolves the display cards printed on a document
type PartyDirectory interface {
	// Organization returns the issuer card of a tenant
	Organization(ctx context.Context, tenantID uuid.UUID) (printing.PartyCard, error)
	// Recipient returns the customer card
	Recipient(ctx context.Context, tenantID, customerID uuid.UUID) (printing.RecipientCard, error)
}

// ConfiguredDirectory prints the configured organization as issuer and reads
// recipients from the customer repository
type ConfiguredDirectory struct {
	org       printing.PartyCard
	customers party.CustomerRepository
}

// NewConfiguredDirectory creates a directory. customers may be nil, in which case
// recipients are printed by ID only.
func NewConfiguredDirectory(org config.OrganizationConfig, customers party.CustomerRepository) *ConfiguredDirectory {
	return &ConfiguredDirectory{
		org:       PartyCardFromConfig(org),
		customers: customers,
	}
}

// PartyCardFromConfig converts the organization settings. Blank fields are absent.
func PartyCardFromConfig(org config.OrganizationConfig) printing.PartyCard {
	lines := make([]string, 0, len(org.AddressLines))
	for _, l := range org.AddressLines {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return printing.PartyCard{
		Name:         strings.TrimSpace(org.Name),
		AddressLines: lines,
		Phone:        optionalString(org.Phone),
		Email:        optionalString(org.Email),
		Website:      optionalString(org.Website),
		TaxID:        optionalString(org.TaxID),
	}
}

// Organization returns the configured issuer
func (d *ConfiguredDirectory) Organization(context.Context, uuid.UUID) (printing.PartyCard, error) {
	return d.org, nil
}

// Recipient loads the customer and formats its addresses
func (d *ConfiguredDirectory) Recipient(ctx context.Context, tenantID, customerID uuid.UUID) (printing.RecipientCard, error) {
	if d.customers == nil {
		return printing.RecipientCard{Name: customerID.String()}, nil
	}
	customer, err := d.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return printing.RecipientCard{}, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return printing.RecipientCard{}, fmt.Errorf("failed to load customer: %w", err)
	}
	return RecipientCardFor(customer), nil
}

// RecipientCardFor converts a customer. Addresses with nothing printable are dropped.
func RecipientCardFor(c *party.Customer) printing.RecipientCard {
	card := printing.RecipientCard{
		Name:  c.Name,
		Phone: optionalString(c.Phone),
		Email: optionalString(c.Email),
	}
	for _, addr := range c.Addresses {
		if addr.IsEmpty() {
			continue
		}
		card.Addresses = append(card.Addresses, printing.AddressBlock{
			Label: addr.Label,
			Lines: addr.Lines(),
		})
	}
	return card
}

func optionalString(s string) valueobject.Optional[string] {
	if s = strings.TrimSpace(s); s == "" {
		return valueobject.None[string]()
	}
	return valueobject.Some(s)
}
