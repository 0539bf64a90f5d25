package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/stateview/pkg/dom"
)

// Finder locates elements in a document.
type Finder interface {
	// Evaluate returns all matching elements under root, root included
	// (depth-first pre-order).
	Evaluate(root dom.Node) []dom.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []dom.Node
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() dom.Node {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or an invalid Node if none.
func (r FinderResult) FirstOrNil() dom.Node {
	if len(r.elements) == 0 {
		return dom.Node{}
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) dom.Node {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []dom.Node {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// Text returns the text content of the first match. Panics if no matches.
func (r FinderResult) Text() string {
	return r.First().Text()
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// Find evaluates f against root.
func Find(root dom.Node, f Finder) FinderResult {
	return FinderResult{elements: f.Evaluate(root), finder: f}
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(dom.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root dom.Node) []dom.Node {
	var out []dom.Node
	root.Walk(func(n dom.Node) {
		if f.fn(n) {
			out = append(out, n)
		}
	})
	return out
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByID returns a finder that matches the element with the given id.
func ByID(id string) Finder {
	return &predicateFinder{
		fn:   func(n dom.Node) bool { return n.ID() == id },
		desc: fmt.Sprintf("ByID(%q)", id),
	}
}

// ByClass returns a finder that matches elements carrying class.
func ByClass(class string) Finder {
	return &predicateFinder{
		fn:   func(n dom.Node) bool { return n.HasClass(class) },
		desc: fmt.Sprintf("ByClass(%q)", class),
	}
}

// ByTag returns a finder that matches elements with the given tag.
func ByTag(tag string) Finder {
	tag = strings.ToLower(tag)
	return &predicateFinder{
		fn:   func(n dom.Node) bool { return n.Tag() == tag },
		desc: fmt.Sprintf("ByTag(%q)", tag),
	}
}

// ByText returns a finder that matches elements whose trimmed text content
// equals text exactly. Ancestors of a match only match if they contain
// nothing else.
func ByText(text string) Finder {
	return &predicateFinder{
		fn:   func(n dom.Node) bool { return strings.TrimSpace(n.Text()) == text },
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(dom.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}
