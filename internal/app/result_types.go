package app

import (
	"time"

	"github.com/arikb/bloxs/internal/core"
)

// DraftResult is returned by CreateDraftInvoice.
type DraftResult struct {
	FileName  string `json:"file_name"`
	ConceptID string `json:"concept_id"`
}

// MailResult is returned by CreateDraftInvoiceFromMail. PDFs counts every PDF part
// found; only the first becomes a draft.
type MailResult struct {
	From        string       `json:"from"`
	Subject     string       `json:"subject"`
	ArchivePath string       `json:"archive_path,omitempty"`
	PDFs        int          `json:"pdfs"`
	Draft       *DraftResult `json:"draft,omitempty"`
}

// OwnerResult is the outcome for one settlement row.
type OwnerResult struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	InvoiceID string `json:"invoice_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SettlementBatchResult is returned by RunSettlements.
type SettlementBatchResult struct {
	Period  string        `json:"period"`
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Results []OwnerResult `json:"results"`
}

// SettlementHistoryResult is returned by RecentSettlements.
type SettlementHistoryResult struct {
	Entries []core.RunEntry
}

func ownerResult(r core.SettlementResult) OwnerResult {
	out := OwnerResult{
		Owner:     r.Row.Owner,
		Address:   r.Row.Address,
		Amount:    r.Row.Amount.String(),
		InvoiceID: r.InvoiceID.String(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

func periodOf(year, month int, now time.Time) time.Time {
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
}
