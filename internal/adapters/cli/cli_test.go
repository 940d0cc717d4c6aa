package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arikb/bloxs/internal/app"
	"github.com/arikb/bloxs/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urcli "github.com/urfave/cli/v2"
)

type fakeService struct {
	settlementReq app.SettlementRequest
	draftReq      app.DraftRequest
	mailBody      string
	entries       []core.RunEntry
	err           error
}

func (f *fakeService) CreateDraftInvoice(_ context.Context, req app.DraftRequest) (*app.DraftResult, error) {
	f.draftReq = req
	return &app.DraftResult{FileName: req.FileName, ConceptID: "555"}, f.err
}

func (f *fakeService) CreateDraftInvoiceFromMail(_ context.Context, r io.Reader) (*app.MailResult, error) {
	b, _ := io.ReadAll(r)
	f.mailBody = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &app.MailResult{PDFs: 1, Draft: &app.DraftResult{FileName: "a.pdf", ConceptID: "1"}}, nil
}

func (f *fakeService) RunSettlements(_ context.Context, req app.SettlementRequest) (*app.SettlementBatchResult, error) {
	f.settlementReq = req
	return &app.SettlementBatchResult{
		Period: "2019/7",
		Results: []app.OwnerResult{
			{Owner: "Jansen", InvoiceID: "2019123"},
			{Owner: "De Vries", Error: "failed to create an invoice for owner De Vries"},
		},
	}, f.err
}

func (f *fakeService) RecentSettlements(context.Context, int) (*app.SettlementHistoryResult, error) {
	return &app.SettlementHistoryResult{Entries: f.entries}, f.err
}

func (f *fakeService) SettlementSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Title: "settlement"}
}

func run(t *testing.T, svc *fakeService, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := NewApp(svc, "cli-secret")
	a.Writer = &out
	a.ErrWriter = io.Discard
	a.Reader = strings.NewReader(stdin)
	a.ExitErrHandler = func(*urcli.Context, error) {}
	err := a.RunContext(context.Background(), append([]string{"bloxs"}, args...))
	return out.String(), err
}

func TestSettle(t *testing.T) {
	svc := &fakeService{}
	out, err := run(t, svc, "", "settle", "--eigfile", "eig.xlsx", "--year", "2019", "--month", "7")
	require.NoError(t, err)

	assert.Equal(t, "Created invoice number 2019123 for owner Jansen\nFailed to create an invoice for owner De Vries\n", out)
	assert.Equal(t, app.SettlementRequest{Year: 2019, Month: 7, File: "eig.xlsx"}, svc.settlementReq)
}

func TestSettle_DefaultsToCurrentMonth(t *testing.T) {
	svc := &fakeService{}
	_, err := run(t, svc, "", "settle", "-f", "eig.csv")
	require.NoError(t, err)
	now := time.Now()
	assert.Equal(t, now.Year(), svc.settlementReq.Year)
	assert.Equal(t, int(now.Month()), svc.settlementReq.Month)
}

func TestSettle_RequiresFile(t *testing.T) {
	_, err := run(t, &fakeService{}, "", "settle")
	assert.Error(t, err)
}

func TestSettle_AbortedRunStillPrintsResults(t *testing.T) {
	svc := &fakeService{err: context.Canceled}
	out, err := run(t, svc, "", "settle", "-f", "eig.csv")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, out, "Created invoice number 2019123 for owner Jansen")
}

func TestDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factuur.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	svc := &fakeService{}

	out, err := run(t, svc, "", "draft", path)
	require.NoError(t, err)
	assert.Equal(t, "Created draft invoice 555 for factuur.pdf\n", out)
	assert.Equal(t, "factuur.pdf", svc.draftReq.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), svc.draftReq.Content)
}

func TestMail(t *testing.T) {
	svc := &fakeService{}
	out, err := run(t, svc, "Subject: x\r\n\r\nbody", "mail")
	require.NoError(t, err)
	assert.Equal(t, "Subject: x\r\n\r\nbody", svc.mailBody)
	assert.Equal(t, "Created draft invoice 1 for a.pdf\n", out)
}

func TestHistory(t *testing.T) {
	svc := &fakeService{entries: []core.RunEntry{
		{Owner: "Jansen", Period: time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("-3000"), InvoiceID: "2019123"},
		{Owner: "De Vries", Period: time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("12.5"), Error: "boom"},
	}}
	out, err := run(t, svc, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "-3000.00")
	assert.Contains(t, out, "FAILED: boom")

	out, err = run(t, &fakeService{}, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "No settlement runs recorded.\n", out)
}

func TestSchema(t *testing.T) {
	out, err := run(t, &fakeService{}, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "settlement"`)
}

func TestToken(t *testing.T) {
	out, err := run(t, &fakeService{}, "", "token", "--subject", "ops@example.nl", "--ttl", "1h")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.nl", claims.Subject)
}
