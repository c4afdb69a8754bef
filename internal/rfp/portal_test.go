// File: internal/rfp/portal_test.go
package rfp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sipb/gosapweb/internal/browser"
)

// fakePortal is a scripted stand-in for a live browser session. Elements are
// keyed by descriptor name; onClick hooks mutate the fake page the way the
// real portal transitions do.
type fakePortal struct {
	mu sync.Mutex

	aliveErr error
	title    string
	html     string

	visible map[string]bool
	values  map[string]string
	checked map[string]bool
	counts  map[string]int
	texts   map[string][]string

	// dropFills drops the first N writes to a field, simulating keystrokes
	// lost to page scripts.
	dropFills map[string]int

	onClick map[string]func(p *fakePortal)

	uploads [][]string
	calls   []string
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		visible:   make(map[string]bool),
		values:    make(map[string]string),
		checked:   make(map[string]bool),
		counts:    make(map[string]int),
		texts:     make(map[string][]string),
		dropFills: make(map[string]int),
		onClick:   make(map[string]func(p *fakePortal)),
	}
}

func (p *fakePortal) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

// callSeq returns the recorded call log.
func (p *fakePortal) callSeq() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// indexOf returns the position of the first recorded call with the given
// prefix, or -1.
func (p *fakePortal) indexOf(prefix string) int {
	for i, c := range p.callSeq() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (p *fakePortal) show(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range names {
		p.visible[n] = true
	}
}

func (p *fakePortal) Alive() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aliveErr
}

func (p *fakePortal) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate:%s", url)
	return nil
}

func (p *fakePortal) WaitVisible(_ context.Context, d browser.Descriptor, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.visible[d.Name] {
		return nil
	}
	return &browser.ElementNotFoundError{Descriptor: d, Timeout: timeout}
}

func (p *fakePortal) Click(_ context.Context, d browser.Descriptor) error {
	p.mu.Lock()
	hook := p.onClick[d.Name]
	p.record("click:%s", d.Name)
	if strings.HasPrefix(d.Name, "payee type ") {
		p.checked[d.Name] = true
	}
	p.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *fakePortal) FillText(_ context.Context, d browser.Descriptor, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("fill:%s", d.Name)
	if p.dropFills[d.Name] > 0 {
		p.dropFills[d.Name]--
		return nil
	}
	p.values[d.Name] = value
	return nil
}

func (p *fakePortal) SelectOption(_ context.Context, d browser.Descriptor, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("select:%s", d.Name)
	p.values[d.Name] = value
	return nil
}

func (p *fakePortal) Value(_ context.Context, d browser.Descriptor) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[d.Name], nil
}

func (p *fakePortal) Checked(_ context.Context, d browser.Descriptor) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checked[d.Name], nil
}

func (p *fakePortal) Text(_ context.Context, d browser.Descriptor) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts := p.texts[d.Name]; len(ts) > 0 {
		return ts[0], nil
	}
	return "", nil
}

func (p *fakePortal) Texts(_ context.Context, d browser.Descriptor) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texts[d.Name], nil
}

func (p *fakePortal) Count(_ context.Context, d browser.Descriptor) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[d.Name], nil
}

func (p *fakePortal) Exists(_ context.Context, d browser.Descriptor) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible[d.Name] || p.counts[d.Name] > 0 || len(p.texts[d.Name]) > 0, nil
}

func (p *fakePortal) SetFiles(_ context.Context, d browser.Descriptor, paths []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("setfiles:%s", strings.Join(paths, ","))
	p.uploads = append(p.uploads, append([]string(nil), paths...))
	return nil
}

func (p *fakePortal) PageHTML(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, nil
}

func (p *fakePortal) Title(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

var _ Driver = (*fakePortal)(nil)

// scriptSubmissionFlow wires a fakePortal with the transitions of the
// reimbursement creation flow: payee search, details form, save into the
// attachment overlay, and the saved-request page carrying the number.
func scriptSubmissionFlow(assignedNumber string) *fakePortal {
	p := newFakePortal()
	p.show("payee name", "payee search", "payee type MIT", "payee type NONMIT")

	p.onClick["payee search"] = func(p *fakePortal) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.visible["payee results"] = true
		p.counts["payee results"] = 1
	}
	p.onClick["payee results"] = func(p *fakePortal) {
		p.show("rfp name", "country", "address", "city", "state/region", "postal code",
			"service date 0", "g/l account 0", "cost object 0", "amount 0", "explanation 0",
			"add line", "office note", "save and continue")
	}
	p.onClick["add line"] = func(p *fakePortal) {
		p.show("service date 1", "g/l account 1", "cost object 1", "amount 1", "explanation 1")
	}
	p.onClick["save and continue"] = func(p *fakePortal) {
		p.show("upload dialog", "upload file input", "attach", "cancel")
	}
	finish := func(p *fakePortal) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.visible["rfp number"] = true
		p.visible["upload dialog"] = false
		p.texts["rfp number"] = []string{assignedNumber}
		p.visible["attach receipts"] = true
		p.visible["send to"] = true
	}
	p.onClick["cancel"] = finish
	p.onClick["attach"] = finish
	p.onClick["attach receipts"] = func(p *fakePortal) {
		p.show("upload dialog")
	}
	return p
}
