package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/arikb/bloxs/internal/core"
	"github.com/arikb/bloxs/internal/mailin"
	"github.com/arikb/bloxs/internal/sheet"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
)

// ErrInvalidRequest marks input problems the caller can fix.
var ErrInvalidRequest = errors.New("invalid request")

type appService struct {
	dial       Dialer
	settings   core.InvoiceSettings
	journal    core.RunJournal
	archiveDir string
	now        func() time.Time
	log        *zap.Logger
}

// Options configures NewAppService. Journal and ArchiveDir are optional.
type Options struct {
	Settings   core.InvoiceSettings
	Journal    core.RunJournal
	ArchiveDir string
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(dial Dialer, opts Options, log *zap.Logger) ApplicationService {
	if opts.Journal == nil {
		opts.Journal = core.NoopJournal{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		dial:       dial,
		settings:   opts.Settings,
		journal:    opts.Journal,
		archiveDir: opts.ArchiveDir,
		now:        time.Now,
		log:        log,
	}
}

func (s *appService) invoices(ctx context.Context) (core.InvoiceService, error) {
	api, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open bloxs session: %w", err)
	}
	return core.NewInvoiceService(api, s.settings, s.log), nil
}

// CreateDraftInvoice uploads the document and creates a concept invoice for it.
func (s *appService) CreateDraftInvoice(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	if req.FileName == "" || len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: file name and content are required", ErrInvalidRequest)
	}
	invoices, err := s.invoices(ctx)
	if err != nil {
		return nil, err
	}
	conceptID, err := invoices.CreateDraftPurchaseInvoice(ctx, req.FileName, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft invoice for %s: %w", req.FileName, err)
	}
	return &DraftResult{FileName: req.FileName, ConceptID: conceptID.String()}, nil
}

// CreateDraftInvoiceFromMail archives the message when an archive dir is configured,
// then creates a draft for the first PDF attachment.
func (s *appService) CreateDraftInvoiceFromMail(ctx context.Context, r io.Reader) (*MailResult, error) {
	msg, err := mailin.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	result := &MailResult{From: msg.From, Subject: msg.Subject, PDFs: len(msg.PDFs)}
	s.log.Info("mail received",
		zap.String("from", msg.From), zap.String("subject", msg.Subject), zap.Int("pdfs", len(msg.PDFs)))
	if s.archiveDir != "" {
		path, err := mailin.Archive(s.archiveDir, msg.Raw, s.now())
		if err != nil {
			s.log.Warn("mail not archived", zap.Error(err))
		} else {
			result.ArchivePath = path
		}
	}
	if len(msg.PDFs) == 0 {
		return result, mailin.ErrNoPDF
	}

	pdf := msg.PDFs[0]
	draft, err := s.CreateDraftInvoice(ctx, DraftRequest{FileName: pdf.Name, Content: pdf.Content})
	if err != nil {
		return result, err
	}
	result.Draft = draft
	return result, nil
}

// RunSettlements resolves the period, loads rows (from File if given) and runs the batch.
func (s *appService) RunSettlements(ctx context.Context, req SettlementRequest) (*SettlementBatchResult, error) {
	if req.Month < 0 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidRequest, req.Month)
	}
	if req.Year < 0 {
		return nil, fmt.Errorf("%w: year must be positive, got %d", ErrInvalidRequest, req.Year)
	}

	rows := req.Rows
	if req.File != "" {
		var err error
		if rows, err = sheet.ReadSettlementRows(req.File); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no settlement rows", ErrInvalidRequest)
	}

	invoices, err := s.invoices(ctx)
	if err != nil {
		return nil, err
	}

	period := periodOf(req.Year, req.Month, s.now())
	results, err := core.NewSettlementBatch(invoices, s.journal, s.log).Run(ctx, period, rows, nil)

	out := &SettlementBatchResult{Period: bloxs.PeriodName(period)}
	for _, r := range results {
		if r.OK() {
			out.Created++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, ownerResult(r))
	}
	if err != nil {
		return out, fmt.Errorf("settlement run aborted after %d rows: %w", len(results), err)
	}
	return out, nil
}

// RecentSettlements returns the latest journal entries.
func (s *appService) RecentSettlements(ctx context.Context, limit int) (*SettlementHistoryResult, error) {
	entries, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &SettlementHistoryResult{Entries: entries}, nil
}

// SettlementSchema reflects SettlementRequest the way API clients should send it.
func (s *appService) SettlementSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&SettlementRequest{})
}
