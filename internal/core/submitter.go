package core

import (
	"context"

	"github.com/arikb/bloxs/internal/bloxs"
	"go.uber.org/zap"
)

// Submitter runs the validate → create → upgrade sequence for one invoice.
// A concept created before a failed upgrade stays behind in Bloxs; there is no rollback.
type Submitter struct {
	api InvoiceAPI
	log *zap.Logger
}

func NewSubmitter(api InvoiceAPI, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{api: api, log: log}
}

// Submit returns the final invoice ID. Errors are the *bloxs.APIError of the failing
// phase; the concept ID is never returned on failure.
func (s *Submitter) Submit(ctx context.Context, inv bloxs.ConceptInvoice) (bloxs.ID, error) {
	if err := s.api.ValidateInvoice(ctx, inv); err != nil {
		return "", err
	}

	conceptID, err := s.api.CreateConcept(ctx, inv)
	if err != nil {
		return "", err
	}

	invoiceID, err := s.api.UpgradeConcept(ctx, conceptID)
	if err != nil {
		s.log.Warn("concept invoice left without upgrade",
			zap.String("concept_id", conceptID.String()), zap.Error(err))
		return "", err
	}
	return invoiceID, nil
}
