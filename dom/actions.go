package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Predicates for HTML nodes, used by the box builder and the matcher.

// NodeIsText is a predicate to match text-nodes of a DOM.
func NodeIsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// NodeIsElement is a predicate to match element-nodes of a DOM.
func NodeIsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsWhitespace is true for text consisting of white space only (CSS white
// space: space, tab, line feed, carriage return, form feed).
func IsWhitespace(text string) bool {
	return strings.TrimLeft(text, " \t\n\r\f") == ""
}

// Attr returns the value of an attribute of an HTML node, together with a
// flag indicating if the attribute is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// registered is a predicate for nodes the core is interested in: elements
// and text. Comments, doctype and processing instructions are ignored.
func registered(n *html.Node) bool {
	return NodeIsElement(n) || NodeIsText(n)
}
