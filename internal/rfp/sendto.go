// File: internal/rfp/sendto.go
package rfp

import (
	"context"

	"go.uber.org/zap"
)

// sendTo routes the just-created RFP onward to a recipient's inbox. Runs
// after the RFP number has been read, so a failure here leaves a created,
// numbered request behind; the error names the recipient problem and the
// caller still has the number from the result of the earlier steps.
func (s *Submitter) sendTo(ctx context.Context, st *SendTo) error {
	if err := s.w.click(ctx, sendToBtn); err != nil {
		return err
	}
	if err := s.drv.WaitVisible(ctx, recipientNameField, s.w.cfg.FindTimeout); err != nil {
		return err
	}
	if err := s.w.fillVerified(ctx, recipientNameField, st.Recipient); err != nil {
		return err
	}
	if err := s.w.click(ctx, recipientSearchBtn); err != nil {
		return err
	}
	if err := s.drv.WaitVisible(ctx, recipientResults, s.w.cfg.FindTimeout); err != nil {
		return err
	}

	n, err := s.drv.Count(ctx, recipientResults)
	if err != nil {
		return err
	}
	if n != 1 {
		return invalidf("sendTo.recipient",
			"search for %q matched %d directory entries, need exactly 1", st.Recipient, n)
	}
	if err := s.w.click(ctx, recipientResults); err != nil {
		return err
	}
	if st.Note != "" {
		if err := s.w.fillVerified(ctx, recipientNoteField, st.Note); err != nil {
			return err
		}
	}
	if err := s.w.click(ctx, sendBtn); err != nil {
		return err
	}
	if err := s.w.assertNoErrors(ctx, StateConfirmation); err != nil {
		return err
	}
	s.log.Info("rfp routed to recipient", zap.String("recipient", st.Recipient))
	return nil
}
