// File: internal/rfp/driver.go
package rfp

import (
	"context"
	"time"

	"github.com/sipb/gosapweb/internal/browser"
)

// Driver is the surface of a live browser session the workflow operates
// through. *browser.Session satisfies it; tests substitute a scripted fake
// portal.
//
// Every method may return browser.ErrSessionLost, which is terminal: the
// workflow halts and the caller must restart from ProfileStore.Load.
type Driver interface {
	// Alive reports whether the controlled window can still be addressed.
	// Checked before every action that follows a page transition.
	Alive() error

	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the descriptor resolves to an interactable
	// element, polling while the page renders.
	WaitVisible(ctx context.Context, d browser.Descriptor, timeout time.Duration) error

	Click(ctx context.Context, d browser.Descriptor) error
	FillText(ctx context.Context, d browser.Descriptor, value string) error
	SelectOption(ctx context.Context, d browser.Descriptor, value string) error

	// Value reads back the current value of a form control; the workflow
	// compares it against what it wrote to defend against silently dropped
	// keystrokes.
	Value(ctx context.Context, d browser.Descriptor) (string, error)
	Checked(ctx context.Context, d browser.Descriptor) (bool, error)

	Text(ctx context.Context, d browser.Descriptor) (string, error)
	Texts(ctx context.Context, d browser.Descriptor) ([]string, error)
	Count(ctx context.Context, d browser.Descriptor) (int, error)
	Exists(ctx context.Context, d browser.Descriptor) (bool, error)

	SetFiles(ctx context.Context, d browser.Descriptor, paths []string) error

	PageHTML(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
}

var _ Driver = (*browser.Session)(nil)
