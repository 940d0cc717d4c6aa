package core

import (
	"context"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
)

// ReferenceResolver turns human-readable names into Bloxs IDs. An empty ID with a nil
// error means the name did not match anything.
type ReferenceResolver interface {
	FindPeriodID(ctx context.Context, t time.Time) (bloxs.ID, error)
	FindPaymentTermID(ctx context.Context, days int) (bloxs.ID, error)
	FindOwnerID(ctx context.Context, name string) (bloxs.ID, error)
	FindPartyID(ctx context.Context, name string) (bloxs.ID, error)
	FindPaymentMethodID(ctx context.Context, name string) (bloxs.ID, error)
	FindLedgerID(ctx context.Context, code string) (bloxs.ID, error)
	FindRentableID(ctx context.Context, address string, excludeOwnerID bloxs.ID) (bloxs.ID, error)
	FindTaxRateID(ctx context.Context, name string) (bloxs.ID, error)
	FindOwnerBankAccountID(ctx context.Context, ownerID bloxs.ID) (bloxs.ID, error)
}

// InvoiceAPI covers the ConceptInvoice endpoints.
type InvoiceAPI interface {
	ValidateInvoice(ctx context.Context, inv bloxs.ConceptInvoice) error
	CreateConcept(ctx context.Context, inv bloxs.ConceptInvoice) (bloxs.ID, error)
	UpgradeConcept(ctx context.Context, conceptID bloxs.ID) (bloxs.ID, error)
}

// Accounting is everything the invoice workflows need from the accounting service.
// *bloxs.Client satisfies it.
type Accounting interface {
	ReferenceResolver
	InvoiceAPI
	Upload(ctx context.Context, name string, content []byte) (bloxs.ID, error)
}

var _ Accounting = (*bloxs.Client)(nil)
