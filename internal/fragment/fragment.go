// Package fragment recovers interactive partition buttons from the trusted HTML fragment
// delivered by a BUTTONS message.
//
// The fragment is rendered verbatim elsewhere; this package only finds the affordances
// (elements carrying the partition-btn class) so they keep working in a terminal.
package fragment

import (
	"strings"

	"golang.org/x/net/html"
)

// ButtonClass marks an element that starts a session for its partition when activated.
const ButtonClass = "partition-btn"

// PartitionAttr holds the partition name on a button element.
const PartitionAttr = "data-partition"

// Button is one partition action found in a fragment.
type Button struct {
	Label     string
	Partition string
}

// Parse walks fragment and returns every partition button in document order.
//
// Malformed markup is tolerated the way browsers tolerate it; an error is only returned
// when the tokenizer itself fails.
func Parse(fragment string) ([]Button, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	var buttons []Button
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, ButtonClass) {
			buttons = append(buttons, Button{
				Label:     collectText(n),
				Partition: getAttr(n, PartitionAttr),
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buttons, nil
}

// Text returns the fragment's visible text with whitespace runs collapsed, for plain rendering.
func Text(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return collectText(doc)
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(x *html.Node) {
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case html.ElementNode:
				if strings.EqualFold(c.Data, "script") || strings.EqualFold(c.Data, "style") {
					continue
				}
				rec(c)
			}
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
