// File: cmd/requestfile.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sipb/gosapweb/internal/rfp"
)

// requestFile is the on-disk YAML shape of a reimbursement request. Amounts
// are written the way people write them ("5.00", "10.99") and converted to
// integer cents during decoding; dates accept both ISO and US notation.
type requestFile struct {
	Name  string `yaml:"name"`
	Payee struct {
		Institutional bool   `yaml:"institutional"`
		DisplayName   string `yaml:"display_name"`
	} `yaml:"payee"`
	Address struct {
		Street     string `yaml:"street"`
		City       string `yaml:"city"`
		State      string `yaml:"state"`
		PostalCode string `yaml:"postal_code"`
		Country    string `yaml:"country"`
	} `yaml:"address"`
	LineItems []struct {
		ServiceDate string `yaml:"service_date"`
		GLAccount   string `yaml:"gl_account"`
		CostObject  string `yaml:"cost_object"`
		Amount      string `yaml:"amount"`
		Description string `yaml:"description"`
	} `yaml:"line_items"`
	Receipts   []string `yaml:"receipts"`
	OfficeNote string   `yaml:"office_note"`
	SendTo     *struct {
		Recipient string `yaml:"recipient"`
		Note      string `yaml:"note"`
	} `yaml:"send_to"`
}

// loadRequestFile reads and decodes a request description. Relative receipt
// paths are resolved against the request file's directory, so a request
// bundle can be moved around as one folder.
func loadRequestFile(path string) (*rfp.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read request file: %w", err)
	}
	var rf requestFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("cannot parse request file %s: %w", path, err)
	}

	req := &rfp.Request{
		Name: rf.Name,
		Payee: rfp.Payee{
			Institutional: rf.Payee.Institutional,
			DisplayName:   rf.Payee.DisplayName,
		},
		Address: rfp.Address{
			Street:     rf.Address.Street,
			City:       rf.Address.City,
			State:      rf.Address.State,
			PostalCode: rf.Address.PostalCode,
			Country:    rf.Address.Country,
		},
		OfficeNote: rf.OfficeNote,
	}

	for i, li := range rf.LineItems {
		date, err := parseServiceDate(li.ServiceDate)
		if err != nil {
			return nil, fmt.Errorf("line_items[%d].service_date: %w", i, err)
		}
		cents, err := parseAmount(li.Amount)
		if err != nil {
			return nil, fmt.Errorf("line_items[%d].amount: %w", i, err)
		}
		req.LineItems = append(req.LineItems, rfp.LineItem{
			ServiceDate: date,
			GLAccount:   li.GLAccount,
			CostObject:  li.CostObject,
			AmountCents: cents,
			Description: li.Description,
		})
	}

	base := filepath.Dir(path)
	for _, r := range rf.Receipts {
		if !filepath.IsAbs(r) {
			r = filepath.Join(base, r)
		}
		req.Receipts = append(req.Receipts, r)
	}

	if rf.SendTo != nil {
		req.SendTo = &rfp.SendTo{Recipient: rf.SendTo.Recipient, Note: rf.SendTo.Note}
	}
	return req, nil
}

// parseServiceDate accepts "2024-01-02" and "1/2/2024".
func parseServiceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or M/D/YYYY)", s)
}

// parseAmount converts a decimal dollar string to integer cents without
// going through floating point. At most two decimal digits are accepted.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("unrecognized amount %q", s)
	}
	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		frac += "0"
		fallthrough
	case 2:
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("unrecognized amount %q", s)
		}
	default:
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return dollars*100 + cents, nil
}
