// Package dom wraps a parsed HTML tree with checked accessors and a fixed
// XPath locator for the scoreboard page.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var (
	ErrMissingNode = errors.New("missing node")
	ErrMissingAttr = errors.New("missing attribute")
)

// Node is a read-only view of one element or text node.
//
// Children skips comments and whitespace-only text, so positional access
// matches the rendered DOM rather than the formatting of the source HTML.
type Node struct {
	n *html.Node
}

// Wrap returns nil for a nil node.
func Wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n}
}

func (n *Node) HTML() *html.Node { return n.n }

// Tag is the element name, or "" for non-element nodes.
func (n *Node) Tag() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return n.n.Data
}

func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if significant(c) {
			out = append(out, &Node{n: c})
		}
	}
	return out
}

// Child returns the i-th significant child.
func (n *Node) Child(i int) (*Node, error) {
	if i >= 0 {
		idx := 0
		for c := n.n.FirstChild; c != nil; c = c.NextSibling {
			if !significant(c) {
				continue
			}
			if idx == i {
				return &Node{n: c}, nil
			}
			idx++
		}
	}
	return nil, fmt.Errorf("%w: <%s> has no child at index %d", ErrMissingNode, n.describe(), i)
}

func (n *Node) FirstChild() (*Node, error) {
	return n.Child(0)
}

// Attr looks up an attribute by exact key.
func (n *Node) Attr(key string) (string, error) {
	for _, a := range n.n.Attr {
		if a.Key == key {
			return a.Val, nil
		}
	}
	return "", fmt.Errorf("%w: <%s> has no %q attribute", ErrMissingAttr, n.describe(), key)
}

// Text is the concatenated text content of the node and its descendants.
func (n *Node) Text() string {
	return htmlquery.InnerText(n.n)
}

func (n *Node) describe() string {
	switch n.n.Type {
	case html.ElementNode:
		return n.n.Data
	case html.TextNode:
		return "#text"
	case html.DocumentNode:
		return "#document"
	default:
		return "#node"
	}
}

func significant(c *html.Node) bool {
	switch c.Type {
	case html.ElementNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(c.Data) != ""
	default:
		return false
	}
}
