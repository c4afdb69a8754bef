// File: internal/rfp/receipts.go
package rfp

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// receiptUploader drives the attachment overlay the portal opens after the
// details form is saved. Receipts are uploaded strictly in order, and each
// upload is confirmed before the next one starts: the overlay round-trips
// through the saved-request page, so a second upload submitted early would
// target a stale dialog.
type receiptUploader struct {
	w   *Workflow
	log *zap.Logger
}

func newReceiptUploader(w *Workflow, log *zap.Logger) *receiptUploader {
	return &receiptUploader{w: w, log: log.Named("receipts")}
}

// checkFiles verifies every receipt path resolves to a readable regular file.
// Run before any browser interaction so a typo in the third path does not
// strand two receipts already attached to a half-submitted request.
func (u *receiptUploader) checkFiles(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return &FileNotFoundError{Path: p, Err: err}
		}
		if info.IsDir() {
			return &FileNotFoundError{Path: p, Err: os.ErrInvalid}
		}
	}
	return nil
}

// uploadAll attaches every receipt in order. On entry the attachment overlay
// is already open (the portal opens it right after saving the details form);
// on return the workflow is on the saved-request page. With no receipts the
// overlay is simply dismissed.
func (u *receiptUploader) uploadAll(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		if err := u.w.click(ctx, cancelOverlayBtn); err != nil {
			return err
		}
		return u.w.awaitState(ctx, StateReviewSubmit)
	}

	for i, p := range paths {
		if i > 0 {
			// The previous upload landed us back on the saved-request
			// page; reopen the overlay for the next file.
			if err := u.w.click(ctx, attachReceiptsBtn); err != nil {
				return err
			}
			if err := u.w.awaitState(ctx, StateReceiptUpload); err != nil {
				return err
			}
		}
		if err := u.uploadOne(ctx, p); err != nil {
			return err
		}
		u.log.Info("receipt attached",
			zap.String("file", filepath.Base(p)),
			zap.Int("position", i+1),
			zap.Int("total", len(paths)))
	}
	return nil
}

// uploadOne feeds a single file to the open overlay, clicks Attach, and
// waits for the saved-request page to come back. An error banner after the
// round trip means the portal rejected the file.
func (u *receiptUploader) uploadOne(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &FileNotFoundError{Path: path, Err: err}
	}
	if err := u.w.drv.SetFiles(ctx, uploadInput, []string{abs}); err != nil {
		return &ReceiptUploadError{Path: path, Reason: "could not hand the file to the upload dialog: " + err.Error()}
	}
	if err := u.w.click(ctx, attachOverlayBtn); err != nil {
		return err
	}
	if err := u.w.awaitState(ctx, StateReviewSubmit); err != nil {
		return &ReceiptUploadError{Path: path, Reason: "portal never confirmed the upload", Messages: u.w.pageMessages(ctx)}
	}
	if msgs := u.w.pageMessages(ctx); len(msgs.Errors) > 0 {
		return &ReceiptUploadError{Path: path, Reason: "portal rejected the file", Messages: msgs}
	}
	return nil
}
