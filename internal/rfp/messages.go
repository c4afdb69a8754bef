// File: internal/rfp/messages.go
package rfp

import (
	"strings"

	"golang.org/x/net/html"
)

// Messages are the user-visible notices the portal renders at the top of a
// page. Errors usually mean an attempted action failed and the page did not
// actually advance; they are attached to workflow failures so the operator
// can see what the portal complained about without re-running.
type Messages struct {
	Errors  []string
	Info    []string
	Success []string
}

// Empty reports whether no messages of any kind were found.
func (m Messages) Empty() bool {
	return len(m.Errors) == 0 && len(m.Info) == 0 && len(m.Success) == 0
}

func (m Messages) String() string {
	var parts []string
	for _, e := range m.Errors {
		parts = append(parts, "error: "+e)
	}
	for _, i := range m.Info {
		parts = append(parts, "info: "+i)
	}
	for _, s := range m.Success {
		parts = append(parts, "success: "+s)
	}
	return strings.Join(parts, "; ")
}

// Message selector classes used by the portal's templates.
const (
	classError      = "portlet-msg-error"
	classFieldError = "jqerror"
	classInfo       = "portlet-msg-alert"
	classSuccess    = "portlet-msg-success"
)

// ParseMessages extracts the portal's notice texts from a serialized page.
// A page that fails to parse yields empty messages rather than an error:
// message scraping is diagnostic garnish, never a gate.
func ParseMessages(pageHTML string) Messages {
	var m Messages
	root, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return m
	}

	for n := range root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		classes := nodeClasses(n)
		switch {
		case classes[classError], classes[classFieldError]:
			if text := nodeText(n); text != "" {
				m.Errors = append(m.Errors, text)
			}
		case classes[classInfo]:
			if text := nodeText(n); text != "" {
				m.Info = append(m.Info, text)
			}
		case classes[classSuccess]:
			if text := nodeText(n); text != "" {
				m.Success = append(m.Success, text)
			}
		}
	}
	return m
}

// nodeClasses returns the element's class list as a set.
func nodeClasses(n *html.Node) map[string]bool {
	set := make(map[string]bool)
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			set[c] = true
		}
	}
	return set
}

// nodeText returns the node's text content with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
