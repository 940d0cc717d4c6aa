package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RunEntry is one journaled settlement row.
type RunEntry struct {
	ID        int64
	RunID     uuid.UUID
	Owner     string
	Address   string
	Period    time.Time
	Amount    decimal.Decimal
	InvoiceID string
	Error     string
	CreatedAt time.Time
}

// RunJournal keeps a record of settlement batches for later inspection.
type RunJournal interface {
	Record(ctx context.Context, entry RunEntry) error
	Recent(ctx context.Context, limit int) ([]RunEntry, error)
}

// NoopJournal discards entries. Used when no DATABASE_URL is configured.
type NoopJournal struct{}

func (NoopJournal) Record(context.Context, RunEntry) error { return nil }

func (NoopJournal) Recent(context.Context, int) ([]RunEntry, error) { return nil, nil }

type runJournal struct {
	pool *pgxpool.Pool
}

// NewRunJournal constructs a RunJournal backed by the settlement_runs table.
func NewRunJournal(pool *pgxpool.Pool) RunJournal {
	return &runJournal{pool: pool}
}

func (j *runJournal) Record(ctx context.Context, e RunEntry) error {
	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	_, err := j.pool.Exec(ctx, `
		INSERT INTO settlement_runs (run_id, owner, address, period, amount, invoice_id, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.RunID, e.Owner, e.Address, e.Period, e.Amount, toPtr(e.InvoiceID), toPtr(e.Error),
	)
	if err != nil {
		return fmt.Errorf("record settlement for owner %q: %w", e.Owner, err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (j *runJournal) Recent(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.pool.Query(ctx, `
		SELECT id, run_id, owner, address, period, amount,
		       COALESCE(invoice_id, ''), COALESCE(error, ''), created_at
		FROM settlement_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(
			&e.ID, &e.RunID, &e.Owner, &e.Address, &e.Period, &e.Amount,
			&e.InvoiceID, &e.Error, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement run: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settlement runs: %w", err)
	}
	return entries, nil
}
