package app

import (
	"context"

	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/arikb/bloxs/internal/config"
	"github.com/arikb/bloxs/internal/core"

	"go.uber.org/zap"
)

// FromConfig wires an ApplicationService from cfg. When DatabaseURL is set the run
// journal connects on first use; the returned func releases it. Bloxs credentials are
// checked when a session is first needed, so commands that never dial work without them.
func FromConfig(cfg *config.Config, log *zap.Logger) (ApplicationService, func()) {
	journal := core.RunJournal(core.NoopJournal{})
	closeFn := func() {}
	if cfg.DatabaseURL != "" {
		lazy := newLazyJournal(cfg.DatabaseURL)
		journal = lazy
		closeFn = lazy.Close
	}

	dial := func(ctx context.Context) (core.Accounting, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return bloxs.Dial(ctx, cfg, log.Named("bloxs"))
	}

	svc := NewAppService(dial, Options{
		Settings: core.InvoiceSettings{
			DraftOwner:       cfg.DraftOwner,
			SettlementOwner:  cfg.SettlementOwner,
			PaymentMethod:    cfg.PaymentMethod,
			NoTaxRate:        cfg.NoTaxRate,
			LedgerCode:       cfg.LedgerCode,
			StrictReferences: cfg.StrictReferences,
		},
		Journal:    journal,
		ArchiveDir: cfg.MailArchiveDir,
	}, log)
	return svc, closeFn
}
