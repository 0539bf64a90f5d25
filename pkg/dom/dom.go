// Package dom defines the element handles stateview binds state to.
//
// An Element is owned by whoever created it (a parsed document, the browser).
// stateview never stores anything on the element itself; wrappers are found
// again through the element's Identity.
//
// Two implementations are provided: Node, an in-memory element tree built on
// golang.org/x/net/html that runs anywhere, and JSElement, a browser element
// reached through syscall/js (js/wasm builds only).
package dom

// Element is a UI element handle.
type Element interface {
	// Identity returns a comparable key that is equal for two handles of the
	// same underlying element.
	Identity() any

	// Tag returns the lower-case tag name.
	Tag() string
	// ID returns the id attribute, or "".
	ID() string

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	// AddClass adds each name to the class list, skipping names already present.
	AddClass(names ...string)
	// RemoveClass removes each name from the class list.
	RemoveClass(names ...string)
	HasClass(name string) bool

	// Text returns the concatenated text content.
	Text() string
	// SetText replaces all children with a single text node.
	SetText(text string)

	// Style returns an inline style property, or "".
	Style(property string) string
	// SetStyle sets an inline style property. An empty value removes it.
	SetStyle(property, value string)
}

// Container is an element that accepts new children from markup.
type Container interface {
	Element

	// AppendMarkup parses markup in the context of the container and appends
	// the resulting nodes after the existing children. Existing children are
	// not re-parsed. It returns the element nodes that were appended, in order.
	AppendMarkup(markup string) ([]Element, error)

	// ElementsByClassName returns all descendants carrying class, in
	// document order.
	ElementsByClassName(class string) []Element
}

// Describe returns a short human-readable description of el for error
// messages, e.g. "main#app" or "li.history-item".
func Describe(el Element) string {
	if el == nil {
		return "<nil>"
	}
	desc := el.Tag()
	if desc == "" {
		desc = "#document"
	}
	if id := el.ID(); id != "" {
		return desc + "#" + id
	}
	if class, ok := el.Attr("class"); ok && class != "" {
		return desc + "." + firstField(class)
	}
	return desc
}

func firstField(s string) string {
	fields := splitFields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
