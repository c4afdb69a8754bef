// File: internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProfileNotConfigured indicates the profile directory lacks the
	// expected session artifacts, i.e. the one-time interactive setup was
	// never run. Fatal; the user must run `gosapweb profile setup`.
	ErrProfileNotConfigured = errors.New("browser profile not configured (run `gosapweb profile setup`)")

	// ErrSessionLost indicates the controlled browser window can no longer be
	// addressed: the user closed it, navigated away, or the browser process
	// died. Terminal for the session; the caller must start over from
	// ProfileStore.Load.
	ErrSessionLost = errors.New("controlled browser window lost")
)

// ElementNotFoundError is returned when an element described by a Descriptor
// did not become present and interactable within the polling deadline. It
// carries the descriptor so a failure can be diagnosed without re-running.
type ElementNotFoundError struct {
	Descriptor Descriptor
	Timeout    time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %s not found within %s", e.Descriptor, e.Timeout)
}

// IsNotFound reports whether err is (or wraps) an ElementNotFoundError.
func IsNotFound(err error) bool {
	var enf *ElementNotFoundError
	return errors.As(err, &enf)
}
