package app

import (
	"context"
	"io"

	"github.com/arikb/bloxs/internal/core"
	"github.com/invopop/jsonschema"
)

// Dialer opens a logged-in session against the accounting service. Every operation
// uses a fresh session.
type Dialer func(ctx context.Context) (core.Accounting, error)

// ApplicationService is the single interface the CLI and web adapters call.
// Implementations contain no printing or display logic.
type ApplicationService interface {
	// CreateDraftInvoice uploads a document and registers it as a draft purchase invoice.
	CreateDraftInvoice(ctx context.Context, req DraftRequest) (*DraftResult, error)

	// CreateDraftInvoiceFromMail reads a MIME message and creates a draft for its first
	// PDF part.
	CreateDraftInvoiceFromMail(ctx context.Context, r io.Reader) (*MailResult, error)

	// RunSettlements creates one owner settlement invoice per row. Per-owner failures are
	// reported in the result, not as an error.
	RunSettlements(ctx context.Context, req SettlementRequest) (*SettlementBatchResult, error)

	// RecentSettlements returns journaled settlement rows, newest first.
	RecentSettlements(ctx context.Context, limit int) (*SettlementHistoryResult, error)

	// SettlementSchema describes the JSON body accepted by RunSettlements.
	SettlementSchema() *jsonschema.Schema
}
