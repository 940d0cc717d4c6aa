package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
	"go.uber.org/zap"
)

// InvoiceService creates purchase invoices in Bloxs.
type InvoiceService interface {
	// CreateDraftPurchaseInvoice uploads a document and registers it as a draft invoice
	// for the configured draft owner. Errors are returned as they occur.
	CreateDraftPurchaseInvoice(ctx context.Context, name string, content []byte) (bloxs.ID, error)

	// CreateOwnerPurchaseInvoice books a settlement for one owner and property and returns
	// the final invoice ID. Every failure is an *InvoiceCreateError.
	CreateOwnerPurchaseInvoice(ctx context.Context, row SettlementRow, period time.Time) (bloxs.ID, error)
}

// InvoiceSettings names the fixed references the workflows resolve on every call.
type InvoiceSettings struct {
	DraftOwner       string
	SettlementOwner  string
	PaymentMethod    string
	NoTaxRate        string
	LedgerCode       string
	StrictReferences bool
}

type invoiceService struct {
	api       Accounting
	submitter *Submitter
	settings  InvoiceSettings
	now       func() time.Time
	log       *zap.Logger
}

func NewInvoiceService(api Accounting, settings InvoiceSettings, log *zap.Logger) InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &invoiceService{
		api:       api,
		submitter: NewSubmitter(api, log),
		settings:  settings,
		now:       time.Now,
		log:       log,
	}
}

func (s *invoiceService) CreateDraftPurchaseInvoice(ctx context.Context, name string, content []byte) (bloxs.ID, error) {
	fileID, err := s.api.Upload(ctx, name, content)
	if err != nil {
		return "", err
	}

	now := s.now()
	var refs DraftRefs
	refs.FileID = fileID
	if refs.PeriodID, err = s.api.FindPeriodID(ctx, now); err != nil {
		return "", err
	}
	if refs.PaymentTermID, err = s.api.FindPaymentTermID(ctx, 0); err != nil {
		return "", err
	}
	if refs.OwnerID, err = s.api.FindOwnerID(ctx, s.settings.DraftOwner); err != nil {
		return "", err
	}
	if refs.BankAccountID, err = s.api.FindOwnerBankAccountID(ctx, refs.OwnerID); err != nil {
		return "", err
	}

	conceptID, err := s.api.CreateConcept(ctx, BuildDraftPurchaseInvoice(refs, now))
	if err != nil {
		return "", err
	}
	s.log.Info("draft purchase invoice created",
		zap.String("file", name), zap.String("concept_id", conceptID.String()))
	return conceptID, nil
}

func (s *invoiceService) CreateOwnerPurchaseInvoice(ctx context.Context, row SettlementRow, period time.Time) (bloxs.ID, error) {
	invoiceID, err := s.createOwnerPurchaseInvoice(ctx, row, period)
	if err != nil {
		return "", &InvoiceCreateError{Owner: row.Owner, Err: err}
	}
	return invoiceID, nil
}

func (s *invoiceService) createOwnerPurchaseInvoice(ctx context.Context, row SettlementRow, period time.Time) (bloxs.ID, error) {
	date := PeriodStart(period)
	var (
		refs SettlementRefs
		err  error
	)
	if refs.PeriodID, err = s.api.FindPeriodID(ctx, date); err != nil {
		return "", err
	}
	if refs.PaymentTermID, err = s.api.FindPaymentTermID(ctx, 0); err != nil {
		return "", err
	}
	if refs.OwnerID, err = s.api.FindOwnerID(ctx, s.settings.SettlementOwner); err != nil {
		return "", err
	}
	if refs.BankAccountID, err = s.api.FindOwnerBankAccountID(ctx, refs.OwnerID); err != nil {
		return "", err
	}
	if refs.PartyID, err = s.api.FindPartyID(ctx, row.Owner); err != nil {
		return "", err
	}
	if refs.PaymentMethodID, err = s.api.FindPaymentMethodID(ctx, s.settings.PaymentMethod); err != nil {
		return "", err
	}
	if refs.LedgerID, err = s.api.FindLedgerID(ctx, s.settings.LedgerCode); err != nil {
		return "", err
	}
	if refs.RentableID, err = s.api.FindRentableID(ctx, row.Address, refs.OwnerID); err != nil {
		return "", err
	}
	if refs.TaxRateID, err = s.api.FindTaxRateID(ctx, s.settings.NoTaxRate); err != nil {
		return "", err
	}

	if missing := refs.unresolved(); len(missing) > 0 {
		if s.settings.StrictReferences {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedReference, strings.Join(missing, ", "))
		}
		s.log.Debug("submitting with unresolved references",
			zap.String("owner", row.Owner), zap.Strings("missing", missing))
	}

	return s.submitter.Submit(ctx, BuildOwnerSettlementInvoice(refs, date, row.Amount))
}

func (r SettlementRefs) unresolved() []string {
	var missing []string
	for _, ref := range []struct {
		name string
		id   bloxs.ID
	}{
		{"owner", r.OwnerID},
		{"period", r.PeriodID},
		{"payment term", r.PaymentTermID},
		{"bank account", r.BankAccountID},
		{"party", r.PartyID},
		{"payment method", r.PaymentMethodID},
		{"ledger", r.LedgerID},
		{"rentable", r.RentableID},
		{"tax rate", r.TaxRateID},
	} {
		if ref.id.IsZero() {
			missing = append(missing, ref.name)
		}
	}
	return missing
}
