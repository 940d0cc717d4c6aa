package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementRow is one owner payment read from the settlement sheet.
type SettlementRow struct {
	Owner   string          `json:"owner" jsonschema:"required" jsonschema_description:"Owner name exactly as registered in Bloxs"`
	Address string          `json:"address" jsonschema:"required" jsonschema_description:"Start of the rentable unit's address"`
	Amount  decimal.Decimal `json:"amount" jsonschema:"required,type=string" jsonschema_description:"Settlement amount, e.g. \"-3000\""`
}

// ParseAmount reads a settlement amount such as "-3000 EUR"; the trailing unit is ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// SettlementResult is the outcome of one row of a batch.
type SettlementResult struct {
	Row       SettlementRow
	InvoiceID bloxs.ID
	Err       error
}

func (r SettlementResult) OK() bool { return r.Err == nil }

// SettlementBatch creates one invoice per row, strictly in order, over a shared session.
type SettlementBatch struct {
	invoices InvoiceService
	journal  RunJournal
	log      *zap.Logger
}

func NewSettlementBatch(invoices InvoiceService, journal RunJournal, log *zap.Logger) *SettlementBatch {
	if journal == nil {
		journal = NoopJournal{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SettlementBatch{invoices: invoices, journal: journal, log: log}
}

// Run processes every row. A failed owner is reported and the batch moves on; only
// errors that are not *InvoiceCreateError (including cancellation) end it early.
// report, when non-nil, is called after each row.
func (b *SettlementBatch) Run(ctx context.Context, period time.Time, rows []SettlementRow, report func(SettlementResult)) ([]SettlementResult, error) {
	runID := uuid.New()
	period = PeriodStart(period)
	log := b.log.With(zap.String("run_id", runID.String()), zap.String("period", bloxs.PeriodName(period)))
	log.Info("settlement run started", zap.Int("rows", len(rows)))

	results := make([]SettlementResult, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		invoiceID, err := b.invoices.CreateOwnerPurchaseInvoice(ctx, row, period)
		var createErr *InvoiceCreateError
		if err != nil && !errors.As(err, &createErr) {
			return results, err
		}

		res := SettlementResult{Row: row, InvoiceID: invoiceID, Err: err}
		if err != nil {
			log.Warn("owner invoice failed", zap.String("owner", row.Owner), zap.Error(errors.Unwrap(err)))
		} else {
			log.Info("owner invoice created", zap.String("owner", row.Owner), zap.String("invoice_id", invoiceID.String()))
		}
		b.record(ctx, log, runID, period, res)

		results = append(results, res)
		if report != nil {
			report(res)
		}
	}

	log.Info("settlement run finished", zap.Int("rows", len(rows)), zap.Int("failed", countFailed(results)))
	return results, nil
}

func (b *SettlementBatch) record(ctx context.Context, log *zap.Logger, runID uuid.UUID, period time.Time, res SettlementResult) {
	entry := RunEntry{
		RunID:     runID,
		Owner:     res.Row.Owner,
		Address:   res.Row.Address,
		Period:    period,
		Amount:    res.Row.Amount,
		InvoiceID: res.InvoiceID.String(),
	}
	if res.Err != nil {
		entry.Error = errors.Unwrap(res.Err).Error()
	}
	if err := b.journal.Record(ctx, entry); err != nil {
		log.Warn("failed to record settlement result", zap.String("owner", res.Row.Owner), zap.Error(err))
	}
}

func countFailed(results []SettlementResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
