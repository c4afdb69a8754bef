// File: internal/rfp/request.go
package rfp

import (
	"fmt"
	"time"
)

// Request describes one reimbursement to be entered into the portal. It is
// constructed by the caller, validated once at entry, consumed by exactly one
// submission attempt, and then discarded. A failed submission is never
// retried automatically: the remote form may be partially filled, and
// re-running a financial submission risks a duplicate payment.
type Request struct {
	// Name labels the RFP inside the portal. Required.
	Name string
	// Payee identifies who gets paid.
	Payee Payee
	// Address is the payee's mailing address. Required for non-institutional
	// payees.
	Address Address
	// LineItems are the individual expenses, at least one.
	LineItems []LineItem
	// Receipts are local paths of files to attach, uploaded in order.
	Receipts []string
	// OfficeNote is an optional note to the central accounts-payable office.
	OfficeNote string
	// SendTo optionally routes the created RFP to a recipient's inbox after
	// submission.
	SendTo *SendTo
}

// Payee identifies the person being reimbursed.
type Payee struct {
	// Institutional is true when the payee is a current student or employee
	// known to the institution's directory.
	Institutional bool
	// DisplayName is the name searched for on the payee-selection page.
	DisplayName string
}

// Address is the payee's five-part mailing address. Country and State accept
// either full names or two-letter codes, matching the portal's selects.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// LineItem is a single expense row. The amount is always carried in integer
// cents; converting to the portal's decimal notation happens only at fill
// time, so no layer ever does floating-point arithmetic on money.
type LineItem struct {
	ServiceDate time.Time
	GLAccount   string
	CostObject  string
	AmountCents int64
	Description string
}

// SendTo routes a created RFP onward to another user's inbox.
type SendTo struct {
	Recipient string
	Note      string
}

// Result is produced only when the workflow reaches its terminal state.
type Result struct {
	RFPNumber string
}

// Validate performs the structural checks that must pass before the browser
// session is touched.
func (r *Request) Validate() error {
	if r.Name == "" {
		return invalidf("name", "must not be empty")
	}
	if r.Payee.DisplayName == "" {
		return invalidf("payee.displayName", "must not be empty")
	}
	if !r.Payee.Institutional {
		if err := r.Address.validate(); err != nil {
			return err
		}
	}
	if len(r.LineItems) == 0 {
		return invalidf("lineItems", "at least one line item is required")
	}
	for i, li := range r.LineItems {
		if err := li.validate(i); err != nil {
			return err
		}
	}
	if r.SendTo != nil && r.SendTo.Recipient == "" {
		return invalidf("sendTo.recipient", "must not be empty when sendTo is set")
	}
	return nil
}

func (a Address) validate() error {
	fields := map[string]string{
		"address.street":     a.Street,
		"address.city":       a.City,
		"address.state":      a.State,
		"address.postalCode": a.PostalCode,
		"address.country":    a.Country,
	}
	for name, value := range fields {
		if value == "" {
			return invalidf(name, "must not be empty (a complete 5-part address is required)")
		}
	}
	return nil
}

func (li LineItem) validate(index int) error {
	field := func(name string) string { return fmt.Sprintf("lineItems[%d].%s", index, name) }
	if li.ServiceDate.IsZero() {
		return invalidf(field("serviceDate"), "must be set")
	}
	if li.GLAccount == "" {
		return invalidf(field("glAccount"), "must not be empty")
	}
	if li.CostObject == "" {
		return invalidf(field("costObject"), "must not be empty")
	}
	if li.AmountCents <= 0 {
		return invalidf(field("amountCents"), "must be strictly positive, got %d", li.AmountCents)
	}
	return nil
}

// TotalCents sums the line-item amounts.
func (r *Request) TotalCents() int64 {
	var total int64
	for _, li := range r.LineItems {
		total += li.AmountCents
	}
	return total
}

// amountString renders cents in the portal's decimal notation, without a
// currency sign: 500 -> "5.00".
func amountString(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// dateString renders the service date the way the portal's date fields
// expect, without zero padding: "1/2/2024".
func dateString(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
