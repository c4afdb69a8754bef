// File: internal/rfp/view_test.go
package rfp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

func newTestViewer(p *fakePortal) *Viewer {
	cfg := config.NewDefaultConfig()
	cfg.Locator = testLocatorConfig()
	return NewViewer(p, cfg, zap.NewNop())
}

// scriptDisplayPage wires a fakePortal with the search page and a display
// page for one existing RFP.
func scriptDisplayPage(number string) *fakePortal {
	p := newFakePortal()
	p.show("rfp number search", "search")
	p.onClick["search"] = func(p *fakePortal) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.title = "Display RFP"
		p.visible["rfp number"] = true
		p.texts["rfp number"] = []string{number}
		p.texts["Payee"] = []string{"Ben Bitdiddle"}
		p.texts["Name of RFP"] = []string{"Quantum of Solace release party"}
		p.texts["Type of RFP"] = []string{"Reimbursement"}
		p.texts["Company Code"] = []string{"CUR"}
		p.counts["line items"] = 2
		p.texts["line item cells"] = []string{
			"01/02/2024", "421000", "6666666", "5.00",
			"01/03/2024", "420226", "2735326", "10.99",
		}
		p.texts["line item explanations"] = []string{"Refreshments", "Poster printing"}
	}
	p.texts["RFP Number"] = []string{number}
	return p
}

func TestView(t *testing.T) {
	p := scriptDisplayPage("9069467")
	v := newTestViewer(p)

	d, err := v.View(context.Background(), "9069467")
	require.NoError(t, err)

	assert.Equal(t, "9069467", d.RFPNumber)
	assert.Equal(t, "Ben Bitdiddle", d.Payee)
	assert.Equal(t, "Quantum of Solace release party", d.Name)
	assert.Equal(t, "Reimbursement", d.Type)
	assert.Equal(t, "CUR", d.CompanyCode)
	assert.Empty(t, d.SSNTIN, "rows the page does not show stay empty")

	require.Len(t, d.LineItems, 2)
	assert.Equal(t, "01/02/2024", d.LineItems[0].ServiceDate)
	assert.Equal(t, "421000", d.LineItems[0].GLAccount)
	assert.Equal(t, "5.00", d.LineItems[0].Amount)
	assert.Equal(t, "Refreshments", d.LineItems[0].Description)
	assert.Equal(t, "Poster printing", d.LineItems[1].Description)
}

func TestViewEmptyNumber(t *testing.T) {
	p := newFakePortal()
	v := newTestViewer(p)
	_, err := v.View(context.Background(), "   ")
	var ire *InvalidRequestError
	require.ErrorAs(t, err, &ire)
	assert.Empty(t, p.callSeq())
}

func TestViewAmbiguousSearch(t *testing.T) {
	p := scriptDisplayPage("9069467")
	p.onClick["search"] = func(p *fakePortal) {
		p.mu.Lock()
		defer p.mu.Unlock()
		// Several matches: the portal stays on the search page with a
		// result table instead of drilling down.
		p.title = "Search for RFP"
		p.visible["rfp number"] = true
		p.texts["rfp number"] = []string{""}
	}
	v := newTestViewer(p)
	_, err := v.View(context.Background(), "9069467")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not resolve to a single RFP")
}
