package core_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arikb/bloxs/internal/bloxs"
)

// fakeAccounting resolves names from fixed maps and records every call.
type fakeAccounting struct {
	mu sync.Mutex

	owners     map[string]bloxs.ID
	parties    map[string]bloxs.ID
	rentables  map[string]bloxs.ID
	methods    map[string]bloxs.ID
	taxRates   map[string]bloxs.ID
	ledgers    map[string]bloxs.ID
	accounts   map[bloxs.ID]bloxs.ID
	periodID   bloxs.ID
	termID     bloxs.ID
	fileID     bloxs.ID
	conceptSeq int

	lookupErr   error
	uploadErr   error
	validateErr func(inv bloxs.ConceptInvoice) error
	createErr   func(inv bloxs.ConceptInvoice) error
	upgradeErr  error

	calls     []string
	periods   []time.Time
	validated []bloxs.ConceptInvoice
	created   []bloxs.ConceptInvoice
	upgraded  []bloxs.ID
	uploaded  []string
}

func newFakeAccounting() *fakeAccounting {
	return &fakeAccounting{
		owners:    map[string]bloxs.ID{"Fictief": "1"},
		parties:   map[string]bloxs.ID{"Jansen": "42", "De Vries": "43", "Bakker": "44"},
		rentables: map[string]bloxs.ID{"Kerkstraat 1": "9", "Dorpsweg 2": "10", "Molenlaan 3": "11"},
		methods:   map[string]bloxs.ID{"Bank": "2"},
		taxRates:  map[string]bloxs.ID{"Geen BTW": "0"},
		ledgers:   map[string]bloxs.ID{"8000": "80"},
		accounts:  map[bloxs.ID]bloxs.ID{"1": "NL91ABNA0417164300"},
		periodID:  "201907",
		termID:    "5",
		fileID:    "f-1",
	}
}

var errBoom = errors.New("boom")

func (f *fakeAccounting) call(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAccounting) lookup(name string, m map[string]bloxs.ID, key string) (bloxs.ID, error) {
	f.call(name)
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	return m[key], nil
}

func (f *fakeAccounting) FindPeriodID(_ context.Context, t time.Time) (bloxs.ID, error) {
	f.mu.Lock()
	f.periods = append(f.periods, t)
	f.mu.Unlock()
	return f.lookup("period", map[string]bloxs.ID{"": f.periodID}, "")
}

func (f *fakeAccounting) FindPaymentTermID(context.Context, int) (bloxs.ID, error) {
	return f.lookup("payment term", map[string]bloxs.ID{"": f.termID}, "")
}

func (f *fakeAccounting) FindOwnerID(_ context.Context, name string) (bloxs.ID, error) {
	return f.lookup("owner", f.owners, name)
}

func (f *fakeAccounting) FindPartyID(_ context.Context, name string) (bloxs.ID, error) {
	return f.lookup("party", f.parties, name)
}

func (f *fakeAccounting) FindPaymentMethodID(_ context.Context, name string) (bloxs.ID, error) {
	return f.lookup("payment method", f.methods, name)
}

func (f *fakeAccounting) FindLedgerID(_ context.Context, code string) (bloxs.ID, error) {
	return f.lookup("ledger", f.ledgers, code)
}

func (f *fakeAccounting) FindRentableID(_ context.Context, address string, _ bloxs.ID) (bloxs.ID, error) {
	return f.lookup("rentable", f.rentables, address)
}

func (f *fakeAccounting) FindTaxRateID(_ context.Context, name string) (bloxs.ID, error) {
	return f.lookup("tax rate", f.taxRates, name)
}

func (f *fakeAccounting) FindOwnerBankAccountID(_ context.Context, ownerID bloxs.ID) (bloxs.ID, error) {
	f.call("bank account")
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	return f.accounts[ownerID], nil
}

func (f *fakeAccounting) Upload(_ context.Context, name string, _ []byte) (bloxs.ID, error) {
	f.call("upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, name)
	f.mu.Unlock()
	return f.fileID, nil
}

func (f *fakeAccounting) ValidateInvoice(_ context.Context, inv bloxs.ConceptInvoice) error {
	f.call("validate")
	f.mu.Lock()
	f.validated = append(f.validated, inv)
	f.mu.Unlock()
	if f.validateErr != nil {
		return f.validateErr(inv)
	}
	return nil
}

func (f *fakeAccounting) CreateConcept(_ context.Context, inv bloxs.ConceptInvoice) (bloxs.ID, error) {
	f.call("create")
	if f.createErr != nil {
		if err := f.createErr(inv); err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, inv)
	f.conceptSeq++
	return bloxs.ID("c" + string(rune('0'+f.conceptSeq))), nil
}

func (f *fakeAccounting) UpgradeConcept(_ context.Context, conceptID bloxs.ID) (bloxs.ID, error) {
	f.call("upgrade")
	if f.upgradeErr != nil {
		return "", f.upgradeErr
	}
	f.mu.Lock()
	f.upgraded = append(f.upgraded, conceptID)
	f.mu.Unlock()
	return "INV-" + conceptID, nil
}

func (f *fakeAccounting) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}
