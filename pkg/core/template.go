package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-drift/stateview/pkg/dom"
	sverrors "github.com/go-drift/stateview/pkg/errors"
)

// Placeholder is the token a TemplateFunc emits where the template's class
// attribute belongs, e.g. `<li mod-replace>`. It is replaced by a complete
// class="<tag>" attribute, so the element must not carry a class attribute of
// its own: only the first class attribute counts and the other is lost.
// Extra classes belong in the RenderHook or the listener.
const Placeholder = "mod-replace"

var (
	// ErrMissingPlaceholder is reported when generated markup has no
	// Placeholder. The markup is still inserted, untagged.
	ErrMissingPlaceholder = errors.New("core: template markup has no " + Placeholder + " placeholder")
	// ErrNoElement is returned when generated markup produces no element.
	ErrNoElement = errors.New("core: template markup produced no element")
)

// TemplateFunc generates the markup for one child from data. The root
// element carries Placeholder instead of a class attribute.
type TemplateFunc[D any] func(data D) string

// RenderHook runs after a child has been inserted and wrapped.
type RenderHook func(el dom.Element)

// ModularTemplate inserts children generated from one template into a parent
// container. Each child is wrapped in a StatefulElement sharing the
// template's listener, and tracked in insertion order.
type ModularTemplate[D, S any] struct {
	tag      string
	parent   dom.Container
	render   RenderHook
	generate TemplateFunc[D]
	listener Listener[S]
	registry *Registry
	children []*StatefulElement[S]
}

// NewModularTemplate stores its arguments; nothing is validated or rendered
// until Insert.
func NewModularTemplate[D, S any](
	tag string,
	parent dom.Container,
	render RenderHook,
	generate TemplateFunc[D],
	listener Listener[S],
	opts ...Option,
) *ModularTemplate[D, S] {
	o := buildOptions(opts)
	return &ModularTemplate[D, S]{
		tag:      tag,
		parent:   parent,
		render:   render,
		generate: generate,
		listener: listener,
		registry: o.registry,
	}
}

// Tag returns the class name carried by every child.
func (t *ModularTemplate[D, S]) Tag() string {
	return t.tag
}

// Parent returns the container children are inserted into.
func (t *ModularTemplate[D, S]) Parent() dom.Container {
	return t.parent
}

// Insert generates markup for data, appends it to the parent, wraps the new
// child with initial state and runs the render hook.
//
// The first Placeholder in the markup becomes class="<tag>". Markup without a
// placeholder is inserted untagged and ErrMissingPlaceholder is reported to
// the error handler; the returned child is still correct, only tag-based
// lookup (Latest) is affected.
func (t *ModularTemplate[D, S]) Insert(data D, initial S) (*StatefulElement[S], error) {
	const op = "core.ModularTemplate.Insert"

	markup := t.generate(data)
	if strings.Contains(markup, Placeholder) {
		markup = strings.Replace(markup, Placeholder, `class="`+t.tag+`"`, 1)
	} else {
		sverrors.Report(&sverrors.ViewError{
			Op:      op,
			Kind:    sverrors.KindTemplate,
			Err:     ErrMissingPlaceholder,
			Element: dom.Describe(t.parent),
		})
	}

	added, err := t.parent.AppendMarkup(markup)
	if err != nil {
		return nil, &sverrors.ViewError{
			Op:      op,
			Kind:    sverrors.KindTemplate,
			Err:     err,
			Element: dom.Describe(t.parent),
		}
	}
	if len(added) == 0 {
		return nil, &sverrors.ViewError{
			Op:      op,
			Kind:    sverrors.KindTemplate,
			Err:     fmt.Errorf("%w: %q", ErrNoElement, markup),
			Element: dom.Describe(t.parent),
		}
	}

	child := added[0]
	wrapped := NewStatefulElement(child, initial, t.listener, WithRegistry(t.registry))
	t.children = append(t.children, wrapped)

	if t.render != nil {
		t.render(child)
	}
	return wrapped, nil
}

// Children returns the wrappers produced by Insert, oldest first.
func (t *ModularTemplate[D, S]) Children() []*StatefulElement[S] {
	out := make([]*StatefulElement[S], len(t.children))
	copy(out, t.children)
	return out
}

// Len returns the number of inserted children.
func (t *ModularTemplate[D, S]) Len() int {
	return len(t.children)
}

// Latest returns the last element under the parent carrying the template's
// tag. It identifies "the newest child" by class and document order alone, so
// it goes stale when a generator omits the placeholder or when other code
// reorders tagged elements. Prefer the result of Insert or Children.
func (t *ModularTemplate[D, S]) Latest() (dom.Element, bool) {
	tagged := t.parent.ElementsByClassName(t.tag)
	if len(tagged) == 0 {
		return nil, false
	}
	return tagged[len(tagged)-1], true
}
