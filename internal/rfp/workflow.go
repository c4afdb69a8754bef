// File: internal/rfp/workflow.go
package rfp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/browser"
	"github.com/sipb/gosapweb/internal/config"
)

// Workflow carries the primitives the submission steps are built from:
// asserting that the portal is on the expected page, filling fields with
// read-back verification, and surfacing the portal's own error banners when
// an assertion fails.
type Workflow struct {
	drv Driver
	cfg config.LocatorConfig
	log *zap.Logger
}

func NewWorkflow(drv Driver, cfg config.LocatorConfig, log *zap.Logger) *Workflow {
	return &Workflow{drv: drv, cfg: cfg, log: log.Named("workflow")}
}

// awaitState blocks until the marker element of the given state is visible.
// If the marker never appears within the find timeout, the failure is
// reported as an UnexpectedPageError decorated with the page title and any
// banner messages, which usually name the real cause.
func (w *Workflow) awaitState(ctx context.Context, s State) error {
	if err := w.drv.Alive(); err != nil {
		return err
	}
	d := marker(s)
	if err := w.drv.WaitVisible(ctx, d, w.cfg.FindTimeout); err != nil {
		if browser.IsNotFound(err) {
			return w.unexpectedPage(ctx, s)
		}
		return err
	}
	w.log.Debug("reached state", zap.Stringer("state", s))
	return nil
}

// unexpectedPage builds the diagnostic error for a failed page assertion.
// Title and message scraping are best effort; the session may already be
// gone.
func (w *Workflow) unexpectedPage(ctx context.Context, expected State) error {
	e := &UnexpectedPageError{Expected: expected}
	if title, err := w.drv.Title(ctx); err == nil {
		e.Observed = title
	}
	e.Messages = w.pageMessages(ctx)
	return e
}

// pageMessages scrapes the portal's banner messages from the current page.
func (w *Workflow) pageMessages(ctx context.Context) Messages {
	htmlDoc, err := w.drv.PageHTML(ctx)
	if err != nil {
		return Messages{}
	}
	return ParseMessages(htmlDoc)
}

// assertNoErrors fails with an UnexpectedPageError when the portal is
// displaying error banners. Called after every transition click: an error
// banner means the transition did not happen and the form is still showing
// the old page with the rejection rendered into it.
func (w *Workflow) assertNoErrors(ctx context.Context, expected State) error {
	msgs := w.pageMessages(ctx)
	if len(msgs.Errors) == 0 {
		return nil
	}
	e := &UnexpectedPageError{Expected: expected, Messages: msgs}
	if title, err := w.drv.Title(ctx); err == nil {
		e.Observed = title
	}
	return e
}

// fillVerified writes a text field and reads it back, retrying a bounded
// number of times. Keystrokes into the portal's script-heavy fields are
// occasionally dropped while page scripts are still attaching handlers.
func (w *Workflow) fillVerified(ctx context.Context, d browser.Descriptor, value string) error {
	if err := w.drv.WaitVisible(ctx, d, w.cfg.FindTimeout); err != nil {
		return err
	}
	attempts := w.cfg.VerifyRetries
	if attempts < 1 {
		attempts = 1
	}
	var got string
	for i := 0; i < attempts; i++ {
		if err := w.drv.FillText(ctx, d, value); err != nil {
			return err
		}
		read, err := w.drv.Value(ctx, d)
		if err != nil {
			return err
		}
		got = read
		if strings.TrimSpace(got) == value {
			return nil
		}
		w.log.Warn("field read-back mismatch, refilling",
			zap.String("field", d.Name),
			zap.String("want", value),
			zap.String("got", got),
			zap.Int("attempt", i+1))
	}
	return &FieldVerifyError{Field: d.Name, Want: value, Got: got, Attempts: attempts}
}

// setSelect picks a dropdown option. The driver confirms the selection took
// effect as part of the operation, so no separate read-back pass is needed.
func (w *Workflow) setSelect(ctx context.Context, d browser.Descriptor, value string) error {
	if err := w.drv.WaitVisible(ctx, d, w.cfg.FindTimeout); err != nil {
		return err
	}
	return w.drv.SelectOption(ctx, d, value)
}

// setRadio clicks a radio button and verifies it ended up checked.
func (w *Workflow) setRadio(ctx context.Context, d browser.Descriptor) error {
	if err := w.drv.WaitVisible(ctx, d, w.cfg.FindTimeout); err != nil {
		return err
	}
	if err := w.drv.Click(ctx, d); err != nil {
		return err
	}
	checked, err := w.drv.Checked(ctx, d)
	if err != nil {
		return err
	}
	if !checked {
		return &FieldVerifyError{Field: d.Name, Want: "checked", Got: "unchecked", Attempts: 1}
	}
	return nil
}

// click waits for the control and clicks it.
func (w *Workflow) click(ctx context.Context, d browser.Descriptor) error {
	if err := w.drv.WaitVisible(ctx, d, w.cfg.FindTimeout); err != nil {
		return err
	}
	return w.drv.Click(ctx, d)
}

// readDetail returns the trimmed text of a labelled row in a details table,
// or "" when the row is absent from the current page.
func (w *Workflow) readDetail(ctx context.Context, label string) (string, error) {
	d := detailCell(label)
	present, err := w.drv.Exists(ctx, d)
	if err != nil {
		return "", err
	}
	if !present {
		return "", nil
	}
	text, err := w.drv.Text(ctx, d)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// rfpNumber reads the assigned number from the payment details table.
func (w *Workflow) rfpNumber(ctx context.Context) (string, error) {
	text, err := w.drv.Text(ctx, rfpNumberCell)
	if err != nil {
		return "", err
	}
	number := strings.TrimSpace(text)
	if number == "" {
		return "", fmt.Errorf("payment details table shows an empty RFP number")
	}
	return number, nil
}
