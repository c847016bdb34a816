// Package scrape holds the HTML plumbing shared by the portal clients:
// markup navigation, text cleanup and French date parsing.
package scrape

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is one element of a parsed markup tree. The portal parsers
// navigate exclusively through this interface, which keeps them
// independent of the underlying HTML library and lets tests feed them
// hand built fixture trees.
type Node interface {
	// SelectSingle returns the first descendant matching the CSS
	// selector, nil when nothing matches. A selector starting with
	// "> " restricts the match to direct children.
	SelectSingle(selector string) Node
	// SelectAll returns every descendant matching the CSS selector,
	// in document order.
	SelectAll(selector string) []Node
	// Next returns the next element sibling, nil at the end.
	Next() Node
	// Is reports whether the node itself matches the selector.
	Is(selector string) bool
	Text() string
	// Attr returns the attribute value, empty when absent.
	Attr(name string) string
}

// NewDocument parses an HTML page body and returns its root node.
func NewDocument(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return htmlNode{doc.Selection}, nil
}

// NewFragment parses an HTML fragment embedded in a JSON payload.
func NewFragment(html string) (Node, error) {
	return NewDocument(strings.NewReader(html))
}

// TextOf returns the node's cleaned text, tolerating nil nodes.
func TextOf(n Node) string {
	if n == nil {
		return ""
	}
	return CleanText(n.Text())
}

// Nth returns the i-th node of a selection, nil when out of range.
func Nth(nodes []Node, i int) Node {
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return nodes[i]
}

// htmlNode adapts a goquery selection to the Node interface.
type htmlNode struct {
	sel *goquery.Selection
}

func (n htmlNode) find(selector string) *goquery.Selection {
	if rest, ok := strings.CutPrefix(selector, "> "); ok {
		return n.sel.ChildrenFiltered(rest)
	}
	return n.sel.Find(selector)
}

func (n htmlNode) SelectSingle(selector string) Node {
	s := n.find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return htmlNode{s}
}

func (n htmlNode) SelectAll(selector string) []Node {
	var out []Node
	n.find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlNode{s})
	})
	return out
}

func (n htmlNode) Next() Node {
	s := n.sel.Next()
	if s.Length() == 0 {
		return nil
	}
	return htmlNode{s}
}

func (n htmlNode) Is(selector string) bool {
	return n.sel.Is(selector)
}

func (n htmlNode) Text() string {
	return n.sel.Text()
}

func (n htmlNode) Attr(name string) string {
	v, _ := n.sel.Attr(name)
	return v
}

// CleanText trims a scraped string and normalizes the non breaking
// spaces the portals are fond of.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}

// SplitList splits a comma separated cell into trimmed values, dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := CleanText(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
