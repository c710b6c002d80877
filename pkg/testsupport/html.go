// Package testsupport collects helpers shared by package tests: HTML fragment
// parsing and querying.
package testsupport

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup as the content of a <body> element.
func ParseFragment(t *testing.T, markup string) []*html.Node {
	t.Helper()

	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return nodes
}

// Matcher selects nodes in FindAll.
type Matcher func(*html.Node) bool

// FindAll walks nodes depth-first in document order and returns every element
// accepted by all matchers.
func FindAll(nodes []*html.Node, matchers ...Matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && matchesAll(n, matchers) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// FindAllIn is FindAll scoped to the descendants of a single node.
func FindAllIn(n *html.Node, matchers ...Matcher) []*html.Node {
	if n == nil {
		return nil
	}
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return FindAll(children, matchers...)
}

func matchesAll(n *html.Node, matchers []Matcher) bool {
	for _, match := range matchers {
		if !match(n) {
			return false
		}
	}
	return true
}

// ByTag matches elements by tag name.
func ByTag(tag string) Matcher {
	return func(n *html.Node) bool { return n.Data == tag }
}

// ByClass matches elements carrying the class token.
func ByClass(class string) Matcher {
	return func(n *html.Node) bool { return HasClass(n, class) }
}

// ByAttr matches elements whose attribute equals value.
func ByAttr(name, value string) Matcher {
	return func(n *html.Node) bool {
		got, ok := Attr(n, name)
		return ok && got == value
	}
}

// HasAttr matches elements carrying the attribute, whatever its value.
func HasAttr(name string) Matcher {
	return func(n *html.Node) bool {
		_, ok := Attr(n, name)
		return ok
	}
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n carries the class token.
func HasClass(n *html.Node, class string) bool {
	value, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(value) {
		if token == class {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(Text(c))
	}
	return b.String()
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
