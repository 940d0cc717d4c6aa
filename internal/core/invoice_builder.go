package core

import (
	"fmt"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/shopspring/decimal"
)

// DraftRefs are the resolved references of a draft purchase invoice.
type DraftRefs struct {
	OwnerID       bloxs.ID
	PeriodID      bloxs.ID
	PaymentTermID bloxs.ID
	FileID        bloxs.ID
	BankAccountID bloxs.ID
}

// SettlementRefs are the resolved references of an owner settlement invoice.
type SettlementRefs struct {
	OwnerID         bloxs.ID
	PeriodID        bloxs.ID
	PaymentTermID   bloxs.ID
	BankAccountID   bloxs.ID
	PartyID         bloxs.ID
	PaymentMethodID bloxs.ID
	LedgerID        bloxs.ID
	RentableID      bloxs.ID
	TaxRateID       bloxs.ID
}

// BuildDraftPurchaseInvoice registers an uploaded document as a draft with a single
// zero line, to be completed by hand in Bloxs.
func BuildDraftPurchaseInvoice(refs DraftRefs, now time.Time) bloxs.ConceptInvoice {
	now = now.Truncate(time.Second)
	return bloxs.ConceptInvoice{
		OwnerID:       refs.OwnerID,
		Date:          now,
		PeriodID:      refs.PeriodID,
		PaymentTermID: refs.PaymentTermID,
		PaymentDate:   now,
		FileID:        refs.FileID,
		BankAccountID: refs.BankAccountID,
		IsTransitoric: false,
		Lines: []bloxs.InvoiceLine{
			{Amount: decimal.Zero, VAT: decimal.Zero, TaxRateID: "0"},
		},
	}
}

// BuildOwnerSettlementInvoice books amount for one owner and property in the month of period.
func BuildOwnerSettlementInvoice(refs SettlementRefs, period time.Time, amount decimal.Decimal) bloxs.ConceptInvoice {
	date := PeriodStart(period)
	month, year := int(date.Month()), date.Year()
	subject := SettlementSubject(month, year)
	return bloxs.ConceptInvoice{
		OwnerID:         refs.OwnerID,
		Date:            date,
		PeriodID:        refs.PeriodID,
		PaymentTermID:   refs.PaymentTermID,
		PaymentDate:     date,
		BankAccountID:   refs.BankAccountID,
		PartyID:         refs.PartyID,
		PaymentMethodID: refs.PaymentMethodID,
		Reference:       SettlementReference(refs.PartyID, refs.RentableID, month, year),
		Subject:         subject,
		IsTransitoric:   false,
		Lines: []bloxs.InvoiceLine{
			{
				Amount:      amount,
				VAT:         decimal.Zero,
				TaxRateID:   refs.TaxRateID,
				LedgerID:    refs.LedgerID,
				RentableID:  refs.RentableID,
				Description: subject,
			},
		},
	}
}

// PeriodStart returns midnight on the first day of t's month, in t's location.
func PeriodStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SettlementReference builds the invoice reference EIGBTL-{party}.{month}-{year}.{property}.
func SettlementReference(partyID, rentableID bloxs.ID, month, year int) string {
	return fmt.Sprintf("EIGBTL-%s.%d-%d.%s", partyID, month, year, rentableID)
}

// SettlementSubject is the human-readable subject line of a settlement invoice.
func SettlementSubject(month, year int) string {
	return fmt.Sprintf("Eigenaarsafrekening %d-%d", month, year)
}
