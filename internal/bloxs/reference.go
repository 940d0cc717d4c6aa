package bloxs

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	endpointPeriod        = "data/reference/PeriodInvoiceReferenceItem"
	endpointPaymentTerm   = "data/reference/PaymentTermWithOtherReferenceItem"
	endpointOwner         = "data/reference/OwnerReferenceItem"
	endpointParty         = "data/reference/PartyReferenceItem"
	endpointPaymentMethod = "data/reference/PaymentMethodPurchaseInvoiceReferenceItem"
	endpointLedgerJournal = "data/reference/LedgerJournalReferenceItem"
	endpointRentable      = "data/reference/RentableReferenceItem"
	endpointTaxRate       = "data/reference/TaxRatePurchaseInvoiceReferenceItem"
	endpointBankAccount   = "data/reference/OwnerBankAccountReferenceItem"
)

// ReferenceItem is one candidate returned by a reference endpoint.
type ReferenceItem struct {
	ID   ID     `json:"ID"`
	Name string `json:"Name"`
	Days *int   `json:"Days,omitempty"`
}

type referenceFilter struct {
	column   string
	operator string
	value    string
}

type referenceQuery struct {
	endpoint   string
	searchTerm string
	maxItems   int
	sort       string
	filter     *referenceFilter
}

func (q referenceQuery) form() url.Values {
	form := url.Values{}
	if q.searchTerm != "" {
		form.Set("searchTerm", q.searchTerm)
	}
	if q.sort != "" {
		form.Set("sort", q.sort)
	}
	if q.filter != nil {
		form.Set("filters[0][column]", q.filter.column)
		form.Set("filters[0][operator]", q.filter.operator)
		form.Set("filters[0][value]", q.filter.value)
	}
	form.Set("maxItems", strconv.Itoa(q.maxItems))
	return form
}

// references posts a raw reference query and returns the candidates in service order.
func (c *Client) references(ctx context.Context, q referenceQuery) ([]ReferenceItem, error) {
	var items []ReferenceItem
	if err := c.postForm(ctx, KindLookup, q.endpoint, q.form(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) find(ctx context.Context, q referenceQuery, match func(ReferenceItem) bool) (ID, error) {
	items, err := c.references(ctx, q)
	if err != nil {
		return "", err
	}
	return firstMatch(items, match), nil
}

func firstMatch(items []ReferenceItem, match func(ReferenceItem) bool) ID {
	for _, item := range items {
		if match(item) {
			return item.ID
		}
	}
	return ""
}

func nameEquals(term string) func(ReferenceItem) bool {
	return func(item ReferenceItem) bool { return item.Name == term }
}

func namePrefix(term string) func(ReferenceItem) bool {
	return func(item ReferenceItem) bool { return strings.HasPrefix(item.Name, term) }
}

// PeriodName formats t the way Bloxs names invoice periods: "2019/9".
func PeriodName(t time.Time) string {
	return strconv.Itoa(t.Year()) + "/" + strconv.Itoa(int(t.Month()))
}

// FindPeriodID resolves the accounting period containing t. Four results are requested
// because "2019/1" also prefixes "2019/10" to "2019/12".
func (c *Client) FindPeriodID(ctx context.Context, t time.Time) (ID, error) {
	period := PeriodName(t)
	return c.find(ctx, referenceQuery{endpoint: endpointPeriod, searchTerm: period, maxItems: 4}, nameEquals(period))
}

// FindPaymentTermID resolves the payment term with the given number of days.
func (c *Client) FindPaymentTermID(ctx context.Context, days int) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointPaymentTerm, sort: "Days", maxItems: 99},
		func(item ReferenceItem) bool { return item.Days != nil && *item.Days == days })
}

func (c *Client) FindOwnerID(ctx context.Context, name string) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointOwner, searchTerm: name, maxItems: 10}, nameEquals(name))
}

func (c *Client) FindPartyID(ctx context.Context, name string) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointParty, searchTerm: name, maxItems: 10}, nameEquals(name))
}

func (c *Client) FindPaymentMethodID(ctx context.Context, name string) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointPaymentMethod, searchTerm: name, maxItems: 10}, nameEquals(name))
}

// FindLedgerID resolves a ledger account by code; the service names them "8000 - ...".
func (c *Client) FindLedgerID(ctx context.Context, code string) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointLedgerJournal, searchTerm: code, maxItems: 10}, namePrefix(code))
}

// FindRentableID resolves a rentable unit by address prefix, skipping units held by
// excludeOwnerID.
func (c *Client) FindRentableID(ctx context.Context, address string, excludeOwnerID ID) (ID, error) {
	q := referenceQuery{
		endpoint:   endpointRentable,
		searchTerm: address,
		maxItems:   10,
		filter:     &referenceFilter{column: "OwnerID", operator: "neq", value: excludeOwnerID.String()},
	}
	return c.find(ctx, q, namePrefix(address))
}

func (c *Client) FindTaxRateID(ctx context.Context, name string) (ID, error) {
	return c.find(ctx, referenceQuery{endpoint: endpointTaxRate, searchTerm: name, maxItems: 10}, nameEquals(name))
}

// FindOwnerBankAccountID returns the owner's single bank account. The service puts the
// account reference in Name, not ID.
func (c *Client) FindOwnerBankAccountID(ctx context.Context, ownerID ID) (ID, error) {
	q := referenceQuery{
		endpoint: endpointBankAccount,
		maxItems: 1,
		filter:   &referenceFilter{column: "OwnerID", operator: "eq", value: ownerID.String()},
	}
	items, err := c.references(ctx, q)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}
	return ID(items[0].Name), nil
}
