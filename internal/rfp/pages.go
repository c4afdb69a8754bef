// File: internal/rfp/pages.go
package rfp

import (
	"fmt"

	"github.com/sipb/gosapweb/internal/browser"
)

// State identifies one stage of the reimbursement submission workflow. The
// portal reuses a physical page for several stages (the details form carries
// both the address and the line item sections), so consecutive states may
// share a marker element.
type State int

const (
	// StateEntry is the payee search form, reached from the entry URL.
	StateEntry State = iota
	// StatePayeeInfo is the payee search result list on the same page.
	StatePayeeInfo
	// StateAddressInfo is the request details form, address section.
	StateAddressInfo
	// StateLineItems is the request details form, line item section.
	StateLineItems
	// StateReceiptUpload is the attachment overlay shown after saving.
	StateReceiptUpload
	// StateReviewSubmit is the saved, still editable request page.
	StateReviewSubmit
	// StateConfirmation is the final read-back of the assigned number.
	StateConfirmation
)

func (s State) String() string {
	switch s {
	case StateEntry:
		return "entry"
	case StatePayeeInfo:
		return "payee-info"
	case StateAddressInfo:
		return "address-info"
	case StateLineItems:
		return "line-items"
	case StateReceiptUpload:
		return "receipt-upload"
	case StateReviewSubmit:
		return "review-submit"
	case StateConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Element descriptors for the payee search page.
var (
	payeeNameField = browser.Descriptor{Name: "payee name", Label: "Payee Name", Selector: "#payeeName"}
	payeeSearchBtn = browser.Descriptor{Name: "payee search", Selector: "#searchButton"}
	payeeResults   = browser.Descriptor{Name: "payee results", Selector: "#mit a"}
)

// payeeTypeRadio picks the MIT or Non-MIT radio button of the payee type
// group.
func payeeTypeRadio(institutional bool) browser.Descriptor {
	value := "NONMIT"
	if institutional {
		value = "MIT"
	}
	return browser.Descriptor{
		Name:     "payee type " + value,
		Selector: fmt.Sprintf("input[type='radio'][name='payeeType'][value='%s']", value),
	}
}

// Element descriptors for the request details form. The address fields carry
// the index suffix 2 on the reimbursement flavor of the form (index 1 is the
// permanent address used by the payment flavor).
var (
	rfpNameField    = browser.Descriptor{Name: "rfp name", Label: "Name this RFP", Selector: "#rfpName"}
	countrySelect   = browser.Descriptor{Name: "country", Selector: "#country2"}
	addressField    = browser.Descriptor{Name: "address", Selector: "#address2"}
	cityField       = browser.Descriptor{Name: "city", Selector: "#city2"}
	regionSelect    = browser.Descriptor{Name: "state/region", Selector: "#region2"}
	postalCodeField = browser.Descriptor{Name: "postal code", Selector: "#zip2"}
	addLineBtn      = browser.Descriptor{Name: "add line", Selector: "#addLine"}
	officeNoteField = browser.Descriptor{Name: "office note", Selector: "#messageForAP"}
	saveBtn         = browser.Descriptor{Name: "save and continue", Selector: ".saveAction"}
)

// Line item fields carry a zero-based row suffix in their ids.
func serviceDateField(row int) browser.Descriptor {
	return browser.Descriptor{Name: fmt.Sprintf("service date %d", row), Selector: fmt.Sprintf("#serviceDate-%d", row)}
}

func glAccountField(row int) browser.Descriptor {
	return browser.Descriptor{Name: fmt.Sprintf("g/l account %d", row), Selector: fmt.Sprintf("#glAccount-%d", row)}
}

func costObjectField(row int) browser.Descriptor {
	return browser.Descriptor{Name: fmt.Sprintf("cost object %d", row), Selector: fmt.Sprintf("#costObject-%d", row)}
}

func amountField(row int) browser.Descriptor {
	return browser.Descriptor{Name: fmt.Sprintf("amount %d", row), Selector: fmt.Sprintf("#amount-%d", row)}
}

func descriptionField(row int) browser.Descriptor {
	return browser.Descriptor{Name: fmt.Sprintf("explanation %d", row), Selector: fmt.Sprintf("#description-%d", row)}
}

// Element descriptors for the attachment overlay and the saved request page.
var (
	uploadInput       = browser.Descriptor{Name: "upload file input", Selector: "#upload"}
	uploadDialogBody  = browser.Descriptor{Name: "upload dialog", Selector: "#doUpload"}
	attachOverlayBtn  = browser.Descriptor{Name: "attach", Text: "Attach", Selector: ".ui-dialog button"}
	cancelOverlayBtn  = browser.Descriptor{Name: "cancel", Text: "Cancel", Selector: ".ui-dialog button"}
	attachReceiptsBtn = browser.Descriptor{Name: "attach receipts", Selector: ".attachReceipts"}
	sendToBtn         = browser.Descriptor{Name: "send to", Selector: ".sendToAction"}
)

// rfpNumberCell addresses the "RFP Number" row of the payment details table.
// The portal renders the table two ways, hence the union.
var rfpNumberCell = browser.Descriptor{
	Name: "rfp number",
	XPath: "//div[normalize-space(.)='RFP Number']/../../td[@class='data']" +
		" | //th[normalize-space(.)='RFP Number']/../td",
}

// detailCell addresses an arbitrary labelled row of a details table on the
// read-only view of a request.
func detailCell(label string) browser.Descriptor {
	return browser.Descriptor{
		Name: label,
		XPath: fmt.Sprintf("//div[normalize-space(.)='%[1]s']/../../td[@class='data']"+
			" | //th[normalize-space(.)='%[1]s']/../td", label),
	}
}

// Element descriptors for the send-to page.
var (
	recipientNameField = browser.Descriptor{Name: "recipient name", Selector: "#recipientName"}
	recipientSearchBtn = browser.Descriptor{Name: "recipient search", Selector: ".searchForRecipient"}
	recipientResults   = browser.Descriptor{Name: "recipient results", Selector: "td.data label[for^='addressee-']"}
	recipientNoteField = browser.Descriptor{Name: "recipient note", Selector: "#recipientNote"}
	sendBtn            = browser.Descriptor{Name: "send", Selector: ".sendToAction"}
)

// Element descriptors for the search page.
var (
	searchRFPNumberField = browser.Descriptor{Name: "rfp number search", Selector: "#rfpNumber"}
	searchSubmitBtn      = browser.Descriptor{Name: "search", Selector: "#searchButton"}
	searchResultLinks    = browser.Descriptor{Name: "search results", Selector: "td.data a[href^='SearchDrillDown']"}
	lineItemRows         = browser.Descriptor{Name: "line items", Selector: ".lineItem"}
	lineItemCells        = browser.Descriptor{Name: "line item cells", Selector: ".lineItem td"}
	lineItemDescriptions = browser.Descriptor{Name: "line item explanations", Selector: ".lineItem div.data.indent1"}
)

// marker returns the element whose visibility proves the workflow reached
// the given state.
func marker(s State) browser.Descriptor {
	switch s {
	case StateEntry:
		return payeeNameField
	case StatePayeeInfo:
		return payeeResults
	case StateAddressInfo:
		return rfpNameField
	case StateLineItems:
		return serviceDateField(0)
	case StateReceiptUpload:
		return uploadDialogBody
	case StateReviewSubmit, StateConfirmation:
		return rfpNumberCell
	default:
		return browser.Descriptor{}
	}
}
