// File: internal/rfp/errors.go
package rfp

import (
	"fmt"
	"strings"
)

// InvalidRequestError reports caller data that failed structural validation.
// Raised before any browser interaction, so malformed input never produces a
// partially-filled remote form.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &InvalidRequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnexpectedPageError reports a workflow assertion failure: after a
// transition the page did not correspond to the expected state. The workflow
// halts rather than act on the wrong page; the portal's structure may have
// changed, or the stored authentication may have expired.
type UnexpectedPageError struct {
	Expected State
	// Observed is whatever identification of the actual page was possible,
	// usually the document title.
	Observed string
	// Messages are the error/info texts the portal displayed, when any were
	// scrapeable. They usually name the actual failure (expired login,
	// rejected field value).
	Messages Messages
}

func (e *UnexpectedPageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unexpected page: wanted %s", e.Expected)
	if e.Observed != "" {
		fmt.Fprintf(&b, ", observed %q", e.Observed)
	}
	if !e.Messages.Empty() {
		fmt.Fprintf(&b, "; portal said: %s", e.Messages)
	}
	return b.String()
}

// FieldVerifyError reports a field whose read-back value never matched the
// intended value within the configured number of fill retries.
type FieldVerifyError struct {
	Field    string
	Want     string
	Got      string
	Attempts int
}

func (e *FieldVerifyError) Error() string {
	return fmt.Sprintf("field %s: wrote %q but read back %q after %d attempts",
		e.Field, e.Want, e.Got, e.Attempts)
}

// ReceiptUploadError reports a receipt the portal rejected or never
// acknowledged. Earlier pages of the form remain filled.
type ReceiptUploadError struct {
	Path   string
	Reason string
	// Messages are portal-displayed errors, e.g. unsupported file type.
	Messages Messages
}

func (e *ReceiptUploadError) Error() string {
	msg := fmt.Sprintf("receipt upload failed for %s: %s", e.Path, e.Reason)
	if !e.Messages.Empty() {
		msg += "; portal said: " + e.Messages.String()
	}
	return msg
}

// FileNotFoundError reports a receipt path that does not resolve to a
// readable local file. Raised before any browser interaction with the
// attachment flow.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("receipt file %s is not readable: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }
