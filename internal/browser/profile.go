// File: internal/browser/profile.go
package browser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

// markerFile is written inside the profile directory by Bootstrap. Its
// presence is the signal that the one-time interactive setup completed;
// without it, Load refuses to start.
const markerFile = "gosapweb-profile.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// profileMarker records when and by which bootstrap run the profile was set
// up. Kept small on purpose: the real session artifacts are Chrome's own
// cookie and certificate stores inside the user-data directory.
type profileMarker struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
}

const markerVersion = 1

// ProfileStore persists a named, reusable browser identity on local disk.
// The profile holds the institutional certificate login state; it is created
// once interactively via Bootstrap and reused by Load on every subsequent
// automation run.
//
// ProfileStore does not perform login itself. A stale or expired
// authentication inside the profile surfaces later, as a workflow-level page
// mismatch, not here.
type ProfileStore struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewProfileStore creates a profile store bound to the configured profile
// directory.
func NewProfileStore(cfg *config.Config, logger *zap.Logger) *ProfileStore {
	return &ProfileStore{cfg: cfg, logger: logger.Named("profile")}
}

// Dir returns the profile directory path.
func (p *ProfileStore) Dir() string { return p.cfg.Browser.ProfileDir }

// Configured reports whether the profile directory holds the expected
// session artifacts.
func (p *ProfileStore) Configured() (bool, error) {
	_, err := os.Stat(filepath.Join(p.Dir(), markerFile))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("cannot inspect profile directory %s: %w", p.Dir(), err)
}

// Load opens a browser bound to the previously-configured profile directory
// and returns the live session. Fails with ErrProfileNotConfigured if the
// one-time interactive setup was never run.
func (p *ProfileStore) Load(ctx context.Context) (*Session, error) {
	configured, err := p.Configured()
	if err != nil {
		return nil, err
	}
	if !configured {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotConfigured, p.Dir())
	}

	p.logger.Info("Loading browser profile.",
		zap.String("profile_dir", p.Dir()), zap.Bool("headless", p.cfg.Browser.Headless))
	return p.launch(ctx, p.cfg.Browser.Headless)
}

// launch starts Chrome against the profile directory and opens one tab.
func (p *ProfileStore) launch(ctx context.Context, headless bool) (*Session, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.UserDataDir(p.Dir()),
		chromedp.Flag("headless", headless),
	}
	for _, arg := range p.cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An open confirm() or onbeforeunload prompt blocks every subsequent
	// CDP action on the tab, so accept dialogs as soon as they appear.
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			p.logger.Warn("Accepting unexpected page dialog.",
				zap.String("message", e.Message), zap.String("type", string(e.Type)))
			go func() {
				_ = chromedp.Run(tabCtx, page.HandleJavaScriptDialog(true))
			}()
		}
	})

	// Force the browser process to actually start so failures surface here,
	// not on the first workflow action.
	startCtx, startCancel := context.WithTimeout(tabCtx, p.cfg.Browser.NavigationTimeout)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser with profile %s: %w", p.Dir(), err)
	}

	return newSession(allocCtx, allocCancel, tabCtx, tabCancel, p.cfg, p.Dir(), p.logger), nil
}

// Bootstrap runs the one-time interactive profile setup: it launches a
// headful browser on the institutional certificate page, waits for the
// operator to complete authentication manually, then persists the marker so
// later runs can Load non-interactively.
//
// Re-running Bootstrap on an existing profile is idempotent: Chrome's own
// session artifacts are left in place and only the marker is atomically
// rewritten.
func (p *ProfileStore) Bootstrap(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := os.MkdirAll(p.Dir(), 0o700); err != nil {
		return fmt.Errorf("cannot create profile directory %s: %w", p.Dir(), err)
	}

	configured, err := p.Configured()
	if err != nil {
		return err
	}
	if configured {
		fmt.Fprintf(out, "Profile at %s already exists; its stored session will be kept.\n", p.Dir())
	}

	// Bootstrap is always headful: the operator has to see the login page.
	session, err := p.launch(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = session.Close(closeCtx)
	}()

	fmt.Fprintln(out, "A browser window has been opened on the certificate authority page.")
	fmt.Fprintln(out, "Complete the institutional login there (certificate install included).")
	if err := session.Navigate(ctx, p.cfg.Portal.CertificateURL); err != nil {
		return fmt.Errorf("could not open certificate page: %w", err)
	}

	fmt.Fprint(out, "Press ENTER here once the login is complete: ")
	if _, err := bufio.NewReader(in).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("aborted while waiting for operator confirmation: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.writeMarker(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Profile created successfully.")
	p.logger.Info("Profile bootstrap complete.", zap.String("profile_dir", p.Dir()))
	return nil
}

// writeMarker persists the profile marker atomically (write to a temp file in
// the same directory, then rename) so a crash mid-write can never leave a
// half-configured profile behind.
func (p *ProfileStore) writeMarker() error {
	marker := profileMarker{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Version:   markerVersion,
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode profile marker: %w", err)
	}

	tmp, err := os.CreateTemp(p.Dir(), markerFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create marker temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cannot write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot close marker temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(p.Dir(), markerFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot move marker into place: %w", err)
	}
	return nil
}

// readMarker loads the profile marker, if present. Used by diagnostics.
func (p *ProfileStore) readMarker() (*profileMarker, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir(), markerFile))
	if err != nil {
		return nil, err
	}
	var marker profileMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("profile marker is corrupt: %w", err)
	}
	return &marker, nil
}
