package bloxs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	endpointValidateInvoice = "ConceptInvoice/ValidateCreateUpgrade"
	endpointCreateInvoice   = "ConceptInvoice/Create"
	endpointUpgradeInvoice  = "ConceptInvoice/Upgrade/"

	// DateLayout is how Bloxs expects invoice dates: local time, seconds precision, no zone.
	DateLayout = "2006-01-02T15:04:05"
)

// ConceptInvoice is the body posted to the ConceptInvoice endpoints. Unresolved IDs
// are still sent (as empty values) and left to the service's own validation.
type ConceptInvoice struct {
	OwnerID         ID
	Date            time.Time
	PeriodID        ID
	PaymentTermID   ID
	PaymentDate     time.Time
	BankAccountID   ID
	FileID          ID
	PartyID         ID
	PaymentMethodID ID
	Reference       string
	Subject         string
	IsTransitoric   bool
	Lines           []InvoiceLine
}

// InvoiceLine is a single cost line of a ConceptInvoice.
type InvoiceLine struct {
	Amount      decimal.Decimal
	VAT         decimal.Decimal
	TaxRateID   ID
	LedgerID    ID
	RentableID  ID
	Description string
}

// Values encodes the invoice in the bracketed form notation the service binds
// ("Lines[0][Amount]").
func (inv ConceptInvoice) Values() url.Values {
	v := url.Values{}
	v.Set("OwnerID", inv.OwnerID.String())
	v.Set("Date", inv.Date.Format(DateLayout))
	v.Set("PeriodID", inv.PeriodID.String())
	v.Set("PaymentTermID", inv.PaymentTermID.String())
	v.Set("PaymentDate", inv.PaymentDate.Format(DateLayout))
	v.Set("BankAccountID", inv.BankAccountID.String())
	v.Set("IsTransitoric", strconv.FormatBool(inv.IsTransitoric))
	setIfPresent(v, "FileID", inv.FileID.String())
	setIfPresent(v, "PartyID", inv.PartyID.String())
	setIfPresent(v, "PaymentMethodID", inv.PaymentMethodID.String())
	setIfPresent(v, "Reference", inv.Reference)
	setIfPresent(v, "Subject", inv.Subject)

	for i, line := range inv.Lines {
		prefix := fmt.Sprintf("Lines[%d]", i)
		v.Set(prefix+"[Amount]", line.Amount.String())
		v.Set(prefix+"[VAT]", line.VAT.String())
		v.Set(prefix+"[TaxRateID]", line.TaxRateID.String())
		setIfPresent(v, prefix+"[LedgerID]", line.LedgerID.String())
		setIfPresent(v, prefix+"[RentableID]", line.RentableID.String())
		setIfPresent(v, prefix+"[Description]", line.Description)
	}
	return v
}

func setIfPresent(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// ValidateInvoice asks the service whether inv could be created and upgraded.
// Nothing is stored remotely.
func (c *Client) ValidateInvoice(ctx context.Context, inv ConceptInvoice) error {
	return c.postForm(ctx, KindValidate, endpointValidateInvoice, inv.Values(), nil)
}

// CreateConcept stores inv as a concept invoice and returns its concept ID.
func (c *Client) CreateConcept(ctx context.Context, inv ConceptInvoice) (ID, error) {
	var resp struct {
		Data struct {
			ID ID `json:"ID"`
		} `json:"data"`
	}
	if err := c.postForm(ctx, KindCreate, endpointCreateInvoice, inv.Values(), &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// UpgradeConcept finalizes a concept invoice and returns the posted invoice ID.
func (c *Client) UpgradeConcept(ctx context.Context, conceptID ID) (ID, error) {
	var resp struct {
		Data ID `json:"data"`
	}
	endpoint := endpointUpgradeInvoice + url.PathEscape(conceptID.String())
	if err := c.postForm(ctx, KindUpgrade, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.Data, nil
}
