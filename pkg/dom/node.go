package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is an in-memory element backed by a golang.org/x/net/html node.
// The zero Node is invalid; use Parse, ParseString or Wrap.
type Node struct {
	n *html.Node
}

var _ Container = Node{}

// Parse parses a full HTML document.
func Parse(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Node{}, fmt.Errorf("dom: parse document: %w", err)
	}
	return Node{n: doc}, nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// Wrap returns the Node for an existing html node.
func Wrap(n *html.Node) Node {
	return Node{n: n}
}

// HTML returns the underlying html node.
func (e Node) HTML() *html.Node {
	return e.n
}

// Valid reports whether e refers to a node.
func (e Node) Valid() bool {
	return e.n != nil
}

func (e Node) Identity() any {
	return e.n
}

func (e Node) Tag() string {
	if e.n == nil || e.n.Type != html.ElementNode {
		return ""
	}
	return e.n.Data
}

func (e Node) ID() string {
	id, _ := e.Attr("id")
	return id
}

func (e Node) Attr(name string) (string, bool) {
	if e.n == nil {
		return "", false
	}
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e Node) SetAttr(name, value string) {
	if e.n == nil {
		return
	}
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e Node) RemoveAttr(name string) {
	if e.n == nil {
		return
	}
	attrs := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.n.Attr = attrs
}

func (e Node) AddClass(names ...string) {
	current, _ := e.Attr("class")
	e.SetAttr("class", addClasses(current, names))
}

func (e Node) RemoveClass(names ...string) {
	current, ok := e.Attr("class")
	if !ok {
		return
	}
	e.SetAttr("class", removeClasses(current, names))
}

func (e Node) HasClass(name string) bool {
	current, _ := e.Attr("class")
	return containsField(splitFields(current), name)
}

func (e Node) Text() string {
	if e.n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return sb.String()
}

func (e Node) SetText(text string) {
	if e.n == nil {
		return
	}
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e Node) Style(property string) string {
	style, _ := e.Attr("style")
	return styleProperty(style, property)
}

func (e Node) SetStyle(property, value string) {
	style, _ := e.Attr("style")
	updated := setStyleProperty(style, property, value)
	if updated == "" {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", updated)
}

// AppendMarkup parses markup as a fragment in the context of e and appends the
// resulting nodes as children of e.
func (e Node) AppendMarkup(markup string) ([]Element, error) {
	if e.n == nil {
		return nil, fmt.Errorf("dom: append to invalid node")
	}
	context := e.n
	if context.Type != html.ElementNode {
		// Fragments need an element context; a document parses as <body>.
		context = &html.Node{Type: html.ElementNode, Data: "body"}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	var added []Element
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		e.n.AppendChild(n)
		if n.Type == html.ElementNode {
			added = append(added, Node{n: n})
		}
	}
	return added, nil
}

func (e Node) ElementsByClassName(class string) []Element {
	var out []Element
	e.walkDescendants(func(n Node) {
		if n.HasClass(class) {
			out = append(out, n)
		}
	})
	return out
}

// ElementsByTagName returns all descendant elements with the given tag, in
// document order.
func (e Node) ElementsByTagName(tag string) []Node {
	tag = strings.ToLower(tag)
	var out []Node
	e.walkDescendants(func(n Node) {
		if n.n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// ElementByID returns the first descendant with the given id.
func (e Node) ElementByID(id string) (Node, bool) {
	var found Node
	e.walkDescendants(func(n Node) {
		if !found.Valid() && n.ID() == id {
			found = n
		}
	})
	return found, found.Valid()
}

// Children returns the element children of e.
func (e Node) Children() []Node {
	if e.n == nil {
		return nil
	}
	var out []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, Node{n: c})
		}
	}
	return out
}

// Parent returns the parent element, if any.
func (e Node) Parent() (Node, bool) {
	if e.n == nil || e.n.Parent == nil {
		return Node{}, false
	}
	return Node{n: e.n.Parent}, true
}

// Remove detaches e from its parent.
func (e Node) Remove() {
	if e.n != nil && e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

// Walk calls fn for e and every descendant element in document order.
func (e Node) Walk(fn func(Node)) {
	if e.n == nil {
		return
	}
	if e.n.Type == html.ElementNode {
		fn(e)
	}
	e.walkDescendants(fn)
}

func (e Node) walkDescendants(fn func(Node)) {
	if e.n == nil {
		return
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				fn(Node{n: c})
			}
			walk(c)
		}
	}
	walk(e.n)
}

// Render writes the markup of e, including e itself.
func (e Node) Render(w io.Writer) error {
	if e.n == nil {
		return fmt.Errorf("dom: render invalid node")
	}
	return html.Render(w, e.n)
}

// OuterHTML returns the markup of e, including e itself.
func (e Node) OuterHTML() string {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the markup of e's children.
func (e Node) InnerHTML() string {
	if e.n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
