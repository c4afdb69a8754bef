// File: internal/rfp/submitter.go
package rfp

import (
	"context"

	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

// Submitter turns a validated Request into a created reimbursement RFP by
// walking the portal's pages in order. One Submitter handles one browser
// session; it is not safe for concurrent use, since the underlying session
// is a single window.
type Submitter struct {
	drv    Driver
	portal config.PortalConfig
	w      *Workflow
	up     *receiptUploader
	log    *zap.Logger
}

func NewSubmitter(drv Driver, cfg *config.Config, log *zap.Logger) *Submitter {
	w := NewWorkflow(drv, cfg.Locator, log)
	return &Submitter{
		drv:    drv,
		portal: cfg.Portal,
		w:      w,
		up:     newReceiptUploader(w, log),
		log:    log.Named("submitter"),
	}
}

// Create submits one reimbursement request and returns the RFP number the
// portal assigned. The request is validated, and its receipt files are
// checked for readability, before the session is touched at all.
//
// A failed submission is never retried here: once the entry page has been
// left, the portal may hold a partially-entered form, and repeating a
// financial submission risks a duplicate payment. The caller decides what to
// do with the returned error.
func (s *Submitter) Create(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.up.checkFiles(req.Receipts); err != nil {
		return nil, err
	}

	s.log.Info("starting submission",
		zap.String("name", req.Name),
		zap.String("payee", req.Payee.DisplayName),
		zap.Int64("total_cents", req.TotalCents()),
		zap.Int("line_items", len(req.LineItems)),
		zap.Int("receipts", len(req.Receipts)))

	if err := s.drv.Navigate(ctx, s.portal.ReimbursementEntryURL); err != nil {
		return nil, err
	}
	if err := s.w.awaitState(ctx, StateEntry); err != nil {
		return nil, err
	}
	if err := s.selectPayee(ctx, req.Payee); err != nil {
		return nil, err
	}
	if err := s.fillDetails(ctx, req); err != nil {
		return nil, err
	}
	if err := s.fillLineItems(ctx, req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, req); err != nil {
		return nil, err
	}
	if err := s.up.uploadAll(ctx, req.Receipts); err != nil {
		return nil, err
	}

	if err := s.w.awaitState(ctx, StateConfirmation); err != nil {
		return nil, err
	}
	number, err := s.w.rfpNumber(ctx)
	if err != nil {
		return nil, err
	}

	if req.SendTo != nil {
		if err := s.sendTo(ctx, req.SendTo); err != nil {
			return nil, err
		}
	}

	s.log.Info("submission complete", zap.String("rfp_number", number))
	return &Result{RFPNumber: number}, nil
}

// selectPayee runs the payee search and picks the single expected result.
// For institutional payees the result is the directory entry; for others the
// portal offers a "no results found, continue" link that leads to the
// free-form payee page.
func (s *Submitter) selectPayee(ctx context.Context, p Payee) error {
	if err := s.w.setRadio(ctx, payeeTypeRadio(p.Institutional)); err != nil {
		return err
	}
	if err := s.w.fillVerified(ctx, payeeNameField, p.DisplayName); err != nil {
		return err
	}
	if err := s.w.click(ctx, payeeSearchBtn); err != nil {
		return err
	}
	if err := s.w.awaitState(ctx, StatePayeeInfo); err != nil {
		return err
	}

	n, err := s.drv.Count(ctx, payeeResults)
	if err != nil {
		return err
	}
	if n != 1 {
		return invalidf("payee.displayName",
			"search for %q matched %d directory entries, need exactly 1", p.DisplayName, n)
	}
	if err := s.w.click(ctx, payeeResults); err != nil {
		return err
	}
	return s.w.awaitState(ctx, StateAddressInfo)
}

// fillDetails enters the request name and, for non-institutional payees, the
// mailing address. Country is selected first: changing it resets the
// dependent address fields.
func (s *Submitter) fillDetails(ctx context.Context, req *Request) error {
	if err := s.w.fillVerified(ctx, rfpNameField, req.Name); err != nil {
		return err
	}
	if req.Payee.Institutional {
		return nil
	}

	a := req.Address
	if err := s.w.setSelect(ctx, countrySelect, a.Country); err != nil {
		return err
	}
	if err := s.w.fillVerified(ctx, addressField, a.Street); err != nil {
		return err
	}
	if err := s.w.fillVerified(ctx, cityField, a.City); err != nil {
		return err
	}
	// The region select only exists for countries that have one (US,
	// Canada).
	present, err := s.drv.Exists(ctx, regionSelect)
	if err != nil {
		return err
	}
	if present {
		if err := s.w.setSelect(ctx, regionSelect, a.State); err != nil {
			return err
		}
	}
	return s.w.fillVerified(ctx, postalCodeField, a.PostalCode)
}

// fillLineItems enters every expense row. The form starts with one empty
// row; each further row is created with the add-line control, which expands
// the form in place without a page load.
func (s *Submitter) fillLineItems(ctx context.Context, req *Request) error {
	if err := s.w.awaitState(ctx, StateLineItems); err != nil {
		return err
	}
	for i, li := range req.LineItems {
		if i > 0 {
			if err := s.w.click(ctx, addLineBtn); err != nil {
				return err
			}
		}
		if err := s.w.fillVerified(ctx, serviceDateField(i), dateString(li.ServiceDate)); err != nil {
			return err
		}
		if err := s.w.fillVerified(ctx, glAccountField(i), li.GLAccount); err != nil {
			return err
		}
		if err := s.w.fillVerified(ctx, costObjectField(i), li.CostObject); err != nil {
			return err
		}
		if err := s.w.fillVerified(ctx, amountField(i), amountString(li.AmountCents)); err != nil {
			return err
		}
		if err := s.w.fillVerified(ctx, descriptionField(i), li.Description); err != nil {
			return err
		}
	}
	return nil
}

// save enters the office note, submits the details form, and waits for the
// attachment overlay the portal opens in response.
func (s *Submitter) save(ctx context.Context, req *Request) error {
	if req.OfficeNote != "" {
		if err := s.w.fillVerified(ctx, officeNoteField, req.OfficeNote); err != nil {
			return err
		}
	}
	if err := s.w.click(ctx, saveBtn); err != nil {
		return err
	}
	if err := s.w.assertNoErrors(ctx, StateReceiptUpload); err != nil {
		return err
	}
	return s.w.awaitState(ctx, StateReceiptUpload)
}
