// File: internal/browser/descriptor.go
package browser

import (
	"fmt"
	"strconv"
	"strings"
)

// Descriptor specifies a page element by a resilient strategy rather than a
// fragile structural path. Resolution preference order: visible label text,
// visible button/link text, accessible role, then the CSS selector fallback.
// At least one strategy must be set.
//
// The portal's pages are externally owned and unversioned; keeping every
// descriptor declarative (see the page tables in internal/rfp) means a remote
// UI change requires editing data, not control flow.
type Descriptor struct {
	// Name is a short human-readable identifier used in logs and errors.
	Name string
	// Label is the visible <label> text of a form control. The control is
	// resolved through the label's `for` attribute.
	Label string
	// Text is the visible text of a button or link.
	Text string
	// Role is an accessible role attribute value.
	Role string
	// XPath is a raw XPath expression for targets CSS cannot describe, such
	// as a table cell addressed by its header text.
	XPath string
	// Selector is a CSS fallback, used when no stable label exists.
	Selector string
}

func (d Descriptor) String() string {
	parts := make([]string, 0, 4)
	if d.Label != "" {
		parts = append(parts, "label="+strconv.Quote(d.Label))
	}
	if d.Text != "" {
		parts = append(parts, "text="+strconv.Quote(d.Text))
	}
	if d.Role != "" {
		parts = append(parts, "role="+strconv.Quote(d.Role))
	}
	if d.XPath != "" {
		parts = append(parts, "xpath="+strconv.Quote(d.XPath))
	}
	if d.Selector != "" {
		parts = append(parts, "selector="+strconv.Quote(d.Selector))
	}
	if len(parts) == 0 {
		parts = append(parts, "empty")
	}
	return fmt.Sprintf("%q (%s)", d.Name, strings.Join(parts, ", "))
}

// Zero reports whether the descriptor carries no resolution strategy at all.
func (d Descriptor) Zero() bool {
	return d.Label == "" && d.Text == "" && d.Role == "" && d.XPath == "" && d.Selector == ""
}

// queryKind distinguishes how a query expression is evaluated in the page.
type queryKind int

const (
	queryCSS queryKind = iota
	queryXPath
)

// query is one concrete resolution attempt for a descriptor.
type query struct {
	kind queryKind
	expr string
}

// queries returns the ordered resolution attempts for the descriptor,
// most-resilient strategy first.
func (d Descriptor) queries() []query {
	var qs []query
	if d.Label != "" {
		// Resolve the labelled control via the label's `for` attribute.
		qs = append(qs, query{
			kind: queryXPath,
			expr: fmt.Sprintf("//*[@id = //label[normalize-space(.)=%s]/@for]", xpathString(d.Label)),
		})
	}
	if d.Text != "" {
		qs = append(qs, query{
			kind: queryXPath,
			expr: fmt.Sprintf(
				"//button[normalize-space(.)=%[1]s] | //a[normalize-space(.)=%[1]s] | //input[(@type='submit' or @type='button') and @value=%[1]s]",
				xpathString(d.Text)),
		})
	}
	if d.Role != "" {
		qs = append(qs, query{kind: queryCSS, expr: fmt.Sprintf("[role=%q]", d.Role)})
	}
	if d.XPath != "" {
		qs = append(qs, query{kind: queryXPath, expr: d.XPath})
	}
	if d.Selector != "" {
		qs = append(qs, query{kind: queryCSS, expr: d.Selector})
	}
	return qs
}

// xpathString encodes s as an XPath 1.0 string literal. XPath 1.0 has no
// escape mechanism, so strings containing both quote characters are built
// with concat().
func xpathString(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.WriteString("concat(")
	for i, part := range strings.Split(s, "'") {
		if i > 0 {
			b.WriteString(`, "'", `)
		}
		b.WriteString("'" + part + "'")
	}
	b.WriteString(")")
	return b.String()
}

// resolveScript returns a JS expression resolving the query to an element or
// null.
func resolveScript(q query) string {
	if q.kind == queryXPath {
		return fmt.Sprintf(
			"document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue",
			strconv.Quote(q.expr))
	}
	return fmt.Sprintf("document.querySelector(%s)", strconv.Quote(q.expr))
}

// probeScript builds a JavaScript expression that evaluates to true when the
// query currently matches an element that is rendered and enabled. Presence
// in markup alone is not enough: the element must have a non-empty layout box
// and must not be disabled.
func probeScript(q query) string {
	return fmt.Sprintf(`(function() {
		const el = %s;
		if (!el) { return false; }
		if (el.disabled) { return false; }
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	})()`, resolveScript(q))
}

// countScript builds a JavaScript expression returning how many elements the
// query currently matches.
func countScript(q query) string {
	switch q.kind {
	case queryXPath:
		return fmt.Sprintf(
			"document.evaluate('count(%s)', document, null, XPathResult.NUMBER_TYPE, null).numberValue",
			strings.ReplaceAll(q.expr, "'", `\'`))
	default:
		return fmt.Sprintf("document.querySelectorAll(%s).length", strconv.Quote(q.expr))
	}
}

// textsScript builds a JavaScript expression returning the trimmed visible
// text of every element the query matches, in document order.
func textsScript(q query) string {
	switch q.kind {
	case queryXPath:
		return fmt.Sprintf(`(function() {
			const out = [];
			const it = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			for (let i = 0; i < it.snapshotLength; i++) {
				out.push(it.snapshotItem(i).textContent.trim());
			}
			return out;
		})()`, strconv.Quote(q.expr))
	default:
		return fmt.Sprintf(
			"Array.from(document.querySelectorAll(%s)).map(el => el.textContent.trim())",
			strconv.Quote(q.expr))
	}
}
