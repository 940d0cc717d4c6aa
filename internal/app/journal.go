package app

import (
	"context"
	"sync"

	"github.com/arikb/bloxs/internal/core"
	"github.com/arikb/bloxs/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

// lazyJournal opens the database on first use, so commands that never touch the
// journal run with the database down. A failed open is retried on the next call.
type lazyJournal struct {
	databaseURL string

	mu      sync.Mutex
	pool    *pgxpool.Pool
	journal core.RunJournal
}

func newLazyJournal(databaseURL string) *lazyJournal {
	return &lazyJournal{databaseURL: databaseURL}
}

func (j *lazyJournal) open(ctx context.Context) (core.RunJournal, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.journal != nil {
		return j.journal, nil
	}
	pool, err := db.NewPool(ctx, j.databaseURL)
	if err != nil {
		return nil, err
	}
	j.pool = pool
	j.journal = core.NewRunJournal(pool)
	return j.journal, nil
}

func (j *lazyJournal) Record(ctx context.Context, entry core.RunEntry) error {
	journal, err := j.open(ctx)
	if err != nil {
		return err
	}
	return journal.Record(ctx, entry)
}

func (j *lazyJournal) Recent(ctx context.Context, limit int) ([]core.RunEntry, error) {
	journal, err := j.open(ctx)
	if err != nil {
		return nil, err
	}
	return journal.Recent(ctx, limit)
}

// Close releases the pool if it was ever opened.
func (j *lazyJournal) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.pool != nil {
		j.pool.Close()
		j.pool = nil
		j.journal = nil
	}
}
