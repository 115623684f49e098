// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (id, timestamps, version, tenant)
//   - document.go: billing documents with JSONB line items and payment ledger
//   - customer.go: customers and their postal addresses
package models
