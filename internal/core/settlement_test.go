package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/arikb/bloxs/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJournal struct {
	mu      sync.Mutex
	entries []core.RunEntry
	err     error
}

func (j *memJournal) Record(_ context.Context, e core.RunEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) Recent(context.Context, int) ([]core.RunEntry, error) {
	return j.entries, nil
}

func settlementRows() []core.SettlementRow {
	return []core.SettlementRow{
		{Owner: "Jansen", Address: "Kerkstraat 1", Amount: decimal.RequireFromString("-3000")},
		{Owner: "De Vries", Address: "Dorpsweg 2", Amount: decimal.RequireFromString("-1250.50")},
		{Owner: "Bakker", Address: "Molenlaan 3", Amount: decimal.RequireFromString("420")},
	}
}

func TestSettlementBatch_ContinuesPastFailedOwner(t *testing.T) {
	api := newFakeAccounting()
	api.createErr = func(inv bloxs.ConceptInvoice) error {
		if inv.PartyID == "43" {
			return &bloxs.APIError{Kind: bloxs.KindCreate, StatusCode: 500}
		}
		return nil
	}
	journal := &memJournal{}
	batch := core.NewSettlementBatch(core.NewInvoiceService(api, testSettings(), nil), journal, nil)

	var reported []string
	results, err := batch.Run(context.Background(), time.Date(2019, 7, 20, 0, 0, 0, 0, time.Local), settlementRows(),
		func(r core.SettlementResult) { reported = append(reported, r.Row.Owner) })
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())
	assert.Equal(t, []string{"Jansen", "De Vries", "Bakker"}, reported)

	var createErr *core.InvoiceCreateError
	require.True(t, errors.As(results[1].Err, &createErr))
	assert.Equal(t, "De Vries", createErr.Owner)
	assert.True(t, results[1].InvoiceID.IsZero())

	assert.Equal(t, 3, api.count("validate"))
	assert.Equal(t, 2, api.count("upgrade"))

	require.Len(t, journal.entries, 3)
	runID := journal.entries[0].RunID
	for _, e := range journal.entries {
		assert.Equal(t, runID, e.RunID, "one run id per batch")
		assert.Equal(t, 1, e.Period.Day())
	}
	assert.NotEmpty(t, journal.entries[1].Error)
	assert.Empty(t, journal.entries[1].InvoiceID)
	assert.Equal(t, results[2].InvoiceID.String(), journal.entries[2].InvoiceID)
}

func TestSettlementBatch_JournalFailureIsNotFatal(t *testing.T) {
	api := newFakeAccounting()
	batch := core.NewSettlementBatch(core.NewInvoiceService(api, testSettings(), nil), &memJournal{err: errBoom}, nil)

	results, err := batch.Run(context.Background(), time.Now(), settlementRows(), nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.True(t, r.OK())
	}
}

func TestSettlementBatch_StopsOnCancel(t *testing.T) {
	api := newFakeAccounting()
	batch := core.NewSettlementBatch(core.NewInvoiceService(api, testSettings(), nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	results, err := batch.Run(ctx, time.Now(), settlementRows(), func(core.SettlementResult) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
}

type failingInvoices struct{}

func (failingInvoices) CreateDraftPurchaseInvoice(context.Context, string, []byte) (bloxs.ID, error) {
	return "", errBoom
}

func (failingInvoices) CreateOwnerPurchaseInvoice(context.Context, core.SettlementRow, time.Time) (bloxs.ID, error) {
	return "", errBoom
}

func TestSettlementBatch_AbortsOnUnexpectedError(t *testing.T) {
	batch := core.NewSettlementBatch(failingInvoices{}, nil, nil)

	results, err := batch.Run(context.Background(), time.Now(), settlementRows(), nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, results)
}
