// File: internal/rfp/view.go
package rfp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

// Details is the read-back of an existing RFP from its display page. Fields
// the portal does not show for a particular request are left empty.
type Details struct {
	RFPNumber     string
	Inbox         string
	Payee         string
	CompanyCode   string
	Name          string
	Type          string
	PaymentMethod string

	Addressee  string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string

	TaxType string
	SSNTIN  string

	LineItems []DetailLineItem
}

// DetailLineItem is one expense row as the display page renders it. Values
// are kept as the portal's display strings; the page formats amounts and
// dates for humans, not for parsing.
type DetailLineItem struct {
	ServiceDate string
	GLAccount   string
	CostObject  string
	Amount      string
	Description string
}

// Viewer looks up existing RFPs through the portal's search page.
type Viewer struct {
	drv    Driver
	portal config.PortalConfig
	w      *Workflow
	log    *zap.Logger
}

func NewViewer(drv Driver, cfg *config.Config, log *zap.Logger) *Viewer {
	return &Viewer{
		drv:    drv,
		portal: cfg.Portal,
		w:      NewWorkflow(drv, cfg.Locator, log),
		log:    log.Named("viewer"),
	}
}

// View searches for an RFP by number and scrapes its display page. An exact
// number match lands directly on the display page; anything else is an
// error.
func (v *Viewer) View(ctx context.Context, rfpNumber string) (*Details, error) {
	if strings.TrimSpace(rfpNumber) == "" {
		return nil, invalidf("rfpNumber", "must not be empty")
	}
	if err := v.drv.Navigate(ctx, v.portal.SearchEntryURL); err != nil {
		return nil, err
	}
	if err := v.w.fillVerified(ctx, searchRFPNumberField, rfpNumber); err != nil {
		return nil, err
	}
	if err := v.w.click(ctx, searchSubmitBtn); err != nil {
		return nil, err
	}
	if err := v.w.awaitState(ctx, StateConfirmation); err != nil {
		return nil, err
	}

	title, err := v.drv.Title(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(title, "Display RFP") {
		return nil, fmt.Errorf("search for %q did not resolve to a single RFP (page %q)", rfpNumber, title)
	}
	return v.scrape(ctx)
}

// scrape reads the labelled rows and line items off the current display
// page.
func (v *Viewer) scrape(ctx context.Context) (*Details, error) {
	d := &Details{}
	fields := []struct {
		label string
		dst   *string
	}{
		{"RFP Number", &d.RFPNumber},
		{"Inbox", &d.Inbox},
		{"Payee", &d.Payee},
		{"Company Code", &d.CompanyCode},
		{"Name of RFP", &d.Name},
		{"Type of RFP", &d.Type},
		{"Payment Method", &d.PaymentMethod},
		{"Name", &d.Addressee},
		{"Phone", &d.Phone},
		{"Address", &d.Address},
		{"City", &d.City},
		{"State/Region", &d.State},
		{"Postal Code", &d.PostalCode},
		{"Country", &d.Country},
		{"Tax Entity Type", &d.TaxType},
		{"SSN/TIN", &d.SSNTIN},
	}
	for _, f := range fields {
		value, err := v.w.readDetail(ctx, f.label)
		if err != nil {
			return nil, err
		}
		*f.dst = value
	}

	items, err := v.scrapeLineItems(ctx)
	if err != nil {
		return nil, err
	}
	d.LineItems = items
	return d, nil
}

// scrapeLineItems reads the expense rows. Each row renders four cells (date,
// account, cost object, amount); the explanation sits in a separate indented
// block under the row.
func (v *Viewer) scrapeLineItems(ctx context.Context) ([]DetailLineItem, error) {
	count, err := v.drv.Count(ctx, lineItemRows)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	cells, err := v.drv.Texts(ctx, lineItemCells)
	if err != nil {
		return nil, err
	}
	descriptions, err := v.drv.Texts(ctx, lineItemDescriptions)
	if err != nil {
		return nil, err
	}
	if len(cells) < count*4 {
		return nil, fmt.Errorf("line item table has %d cells for %d rows", len(cells), count)
	}

	items := make([]DetailLineItem, 0, count)
	for i := 0; i < count; i++ {
		item := DetailLineItem{
			ServiceDate: cells[i*4],
			GLAccount:   cells[i*4+1],
			CostObject:  cells[i*4+2],
			Amount:      cells[i*4+3],
		}
		if i < len(descriptions) {
			item.Description = descriptions[i]
		}
		items = append(items, item)
	}
	return items, nil
}
