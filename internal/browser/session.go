// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

// Session wraps one live, controlled browser tab. It is the single mutable
// resource every higher component operates through, and it is owned by
// exactly one submission at a time: the remote portal and the local profile
// both assume a single active session, so a Session must never be shared
// across concurrent runs.
//
// Once the underlying window is lost (the operator closed it, navigated away,
// or the browser process died) the session is terminal. There is no recovery
// path; callers must start over from ProfileStore.Load.
type Session struct {
	id          string
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         *config.Config
	logger      *zap.Logger
	locator     *Locator
	profileDir  string

	lost atomic.Bool

	mu     sync.Mutex
	closed bool
}

const shutdownGracePeriod = 15 * time.Second

func newSession(
	allocCtx context.Context,
	allocCancel context.CancelFunc,
	tabCtx context.Context,
	tabCancel context.CancelFunc,
	cfg *config.Config,
	profileDir string,
	logger *zap.Logger,
) *Session {
	sessionID := uuid.New().String()
	s := &Session{
		id:          sessionID,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
		cfg:         cfg,
		logger:      logger.Named("session").With(zap.String("session_id", sessionID)),
		profileDir:  profileDir,
	}
	s.locator = NewLocator(s.visible, cfg.Locator.PollInterval, s.logger)
	return s
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string { return s.id }

// ProfileDir returns the profile directory this session is bound to.
func (s *Session) ProfileDir() string { return s.profileDir }

// Alive reports whether the controlled window can still be addressed. It
// returns nil when healthy and ErrSessionLost once the window is gone. The
// check is cheap and must run before every locate or navigation that follows
// a page transition: the window is an externally mutable resource.
func (s *Session) Alive() error {
	if s.lost.Load() {
		return ErrSessionLost
	}
	if err := s.ctx.Err(); err != nil {
		s.lost.Store(true)
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	return nil
}

// classify inspects an action error, marking the session lost when the error
// indicates the target or browser went away mid-operation.
func (s *Session) classify(err error) error {
	if err == nil {
		return nil
	}
	if s.ctx.Err() != nil {
		s.lost.Store(true)
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "websocket: close") ||
		strings.Contains(msg, "page crashed") {
		s.lost.Store(true)
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	return err
}

// run executes chromedp actions, ensuring they respect both the session
// lifetime (s.ctx) and the incoming request context (ctx).
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.Alive(); err != nil {
		return err
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return s.classify(chromedp.Run(runCtx, actions...))
}

// Navigate loads the specified URL and waits for the page to settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating to URL", zap.String("url", url))

	navTimeout := s.cfg.Browser.NavigationTimeout
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	if err := s.run(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return fmt.Errorf("navigation timed out after %s: %w", navTimeout, err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}

	return s.stabilize(ctx)
}

// stabilize waits for the DOM to be ready plus the configured quiet period.
// The portal has no notification mechanism we can wait on, so a short settle
// wait after load is the pragmatic substitute.
func (s *Session) stabilize(ctx context.Context) error {
	stabCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.run(stabCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		if sessionErr := s.Alive(); sessionErr != nil {
			return sessionErr
		}
		s.logger.Debug("WaitReady failed during stabilization (non-critical).", zap.Error(err))
	}
	if wait := s.cfg.Browser.PostLoadWait; wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}

// visible is the ProbeFunc backing the locator: it reports whether any of the
// descriptor's queries currently resolves to a rendered, enabled element.
func (s *Session) visible(ctx context.Context, d Descriptor) (bool, error) {
	for _, q := range d.queries() {
		var ok bool
		if err := s.run(ctx, chromedp.Evaluate(probeScript(q), &ok)); err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// WaitVisible blocks until the descriptor resolves to an interactable
// element, polling while the page loads, and fails with an
// ElementNotFoundError after timeout.
func (s *Session) WaitVisible(ctx context.Context, d Descriptor, timeout time.Duration) error {
	if err := s.Alive(); err != nil {
		return err
	}
	return s.locator.Find(ctx, d, timeout)
}

// resolve returns the first query of the descriptor that currently matches an
// element. Callers should WaitVisible first; resolve itself does not poll.
func (s *Session) resolve(ctx context.Context, d Descriptor) (query, error) {
	for _, q := range d.queries() {
		var ok bool
		if err := s.run(ctx, chromedp.Evaluate(probeScript(q), &ok)); err != nil {
			return query{}, err
		}
		if ok {
			return q, nil
		}
	}
	return query{}, &ElementNotFoundError{Descriptor: d}
}

func queryOpts(q query) chromedp.QueryOption {
	if q.kind == queryXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// Click clicks the element matching the descriptor.
func (s *Session) Click(ctx context.Context, d Descriptor) error {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return err
	}
	s.logger.Debug("Clicking element", zap.Stringer("descriptor", d))
	if err := s.run(ctx,
		chromedp.ScrollIntoView(q.expr, queryOpts(q)),
		chromedp.Click(q.expr, queryOpts(q)),
	); err != nil {
		return fmt.Errorf("click failed for %s: %w", d, err)
	}
	return nil
}

// FillText clears the element and types the given value into it.
func (s *Session) FillText(ctx context.Context, d Descriptor, value string) error {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return err
	}
	s.logger.Debug("Filling element", zap.Stringer("descriptor", d), zap.Int("value_len", len(value)))
	if err := s.run(ctx,
		chromedp.ScrollIntoView(q.expr, queryOpts(q)),
		chromedp.Clear(q.expr, queryOpts(q)),
		chromedp.SendKeys(q.expr, value, queryOpts(q)),
	); err != nil {
		return fmt.Errorf("fill failed for %s: %w", d, err)
	}
	return nil
}

// SelectOption picks an option of a <select> element, matching either the
// option value or its visible text, and fires the change event the portal's
// own scripts expect.
func (s *Session) SelectOption(ctx context.Context, d Descriptor, value string) error {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`(function() {
		const el = %s;
		if (!el || !el.options) { return false; }
		const want = %s;
		let match = null;
		for (const opt of el.options) {
			if (opt.value === want || opt.text.trim() === want) { match = opt; break; }
		}
		if (!match) { return false; }
		el.value = match.value;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return el.value === match.value;
	})()`, resolveScript(q), strconv.Quote(value))

	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("select failed for %s: %w", d, err)
	}
	if !ok {
		return fmt.Errorf("select %s has no option matching %q", d, value)
	}
	return nil
}

// Value returns the current value of a form control.
func (s *Session) Value(ctx context.Context, d Descriptor) (string, error) {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return "", err
	}
	var value string
	if err := s.run(ctx, chromedp.Value(q.expr, &value, queryOpts(q))); err != nil {
		return "", fmt.Errorf("value read failed for %s: %w", d, err)
	}
	return value, nil
}

// Checked reports whether a checkbox or radio element is currently selected.
func (s *Session) Checked(ctx context.Context, d Descriptor) (bool, error) {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return false, err
	}
	var checked bool
	script := fmt.Sprintf("(function() { const el = %s; return !!(el && el.checked); })()", resolveScript(q))
	if err := s.run(ctx, chromedp.Evaluate(script, &checked)); err != nil {
		return false, fmt.Errorf("checked read failed for %s: %w", d, err)
	}
	return checked, nil
}

// Text returns the trimmed visible text of the first matching element.
func (s *Session) Text(ctx context.Context, d Descriptor) (string, error) {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return "", err
	}
	var text string
	if err := s.run(ctx, chromedp.Text(q.expr, &text, queryOpts(q))); err != nil {
		return "", fmt.Errorf("text read failed for %s: %w", d, err)
	}
	return strings.TrimSpace(text), nil
}

// Count returns how many elements the descriptor currently matches, without
// waiting. Queries are tried in preference order; the first strategy with any
// matches wins.
func (s *Session) Count(ctx context.Context, d Descriptor) (int, error) {
	for _, q := range d.queries() {
		var n float64
		if err := s.run(ctx, chromedp.Evaluate(countScript(q), &n)); err != nil {
			return 0, err
		}
		if n > 0 {
			return int(n), nil
		}
	}
	return 0, nil
}

// Texts returns the visible text of every element the descriptor matches, in
// document order.
func (s *Session) Texts(ctx context.Context, d Descriptor) ([]string, error) {
	for _, q := range d.queries() {
		var texts []string
		if err := s.run(ctx, chromedp.Evaluate(textsScript(q), &texts)); err != nil {
			return nil, err
		}
		if len(texts) > 0 {
			return texts, nil
		}
	}
	return nil, nil
}

// Exists reports whether the descriptor matches at least one rendered
// element right now. Unlike WaitVisible it never polls.
func (s *Session) Exists(ctx context.Context, d Descriptor) (bool, error) {
	return s.visible(ctx, d)
}

// SetFiles attaches local file paths to a file input element.
func (s *Session) SetFiles(ctx context.Context, d Descriptor, paths []string) error {
	q, err := s.resolve(ctx, d)
	if err != nil {
		return err
	}
	s.logger.Debug("Setting upload files", zap.Stringer("descriptor", d), zap.Strings("paths", paths))
	if err := s.run(ctx, chromedp.SetUploadFiles(q.expr, paths, queryOpts(q))); err != nil {
		return fmt.Errorf("file attach failed for %s: %w", d, err)
	}
	return nil
}

// PageHTML returns the full serialized HTML of the current page.
func (s *Session) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("page capture failed: %w", err)
	}
	return html, nil
}

// Title returns the current document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title read failed: %w", err)
	}
	return title, nil
}

// Close terminates the browser session gracefully. Safe to call more than
// once. Closing does not touch the profile directory: the authenticated
// state persists for the next run.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")

	// chromedp.Cancel closes the browser gracefully and blocks until the
	// process exits; bound it so a wedged browser cannot hang shutdown.
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Cancel(s.ctx)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer shutdownCancel()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			s.logger.Warn("Error during browser shutdown.", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		s.logger.Warn("Timeout waiting for browser to exit; forcing cancel.")
	}

	s.cancel()
	s.allocCancel()
	return nil
}
