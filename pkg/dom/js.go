//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"
)

// JSElement is a browser element reached through syscall/js.
type JSElement struct {
	v js.Value
}

var _ Container = JSElement{}

var (
	identities = js.Global().Get("WeakMap").New()
	nextID     = 0
)

// Document returns the document element (<html>) of the current page.
func Document() JSElement {
	return JSElement{v: js.Global().Get("document").Get("documentElement")}
}

// ByID returns the element with the given id in the current page.
func ByID(id string) (JSElement, bool) {
	v := js.Global().Get("document").Call("getElementById", id)
	if !v.Truthy() {
		return JSElement{}, false
	}
	return JSElement{v: v}, true
}

// QuerySelector returns the first element matching selector.
func QuerySelector(selector string) (JSElement, bool) {
	v := js.Global().Get("document").Call("querySelector", selector)
	if !v.Truthy() {
		return JSElement{}, false
	}
	return JSElement{v: v}, true
}

// WrapJS returns the JSElement for a js.Value holding an element.
func WrapJS(v js.Value) JSElement {
	return JSElement{v: v}
}

// Value returns the underlying js.Value.
func (e JSElement) Value() js.Value {
	return e.v
}

// Identity keys elements through a WeakMap owned by this package, so the
// element object itself is never written to.
func (e JSElement) Identity() any {
	if !e.v.Truthy() {
		return nil
	}
	id := identities.Call("get", e.v)
	if id.IsUndefined() {
		nextID++
		identities.Call("set", e.v, nextID)
		return nextID
	}
	return id.Int()
}

func (e JSElement) Tag() string {
	if !e.v.Truthy() {
		return ""
	}
	tag := e.v.Get("tagName")
	if tag.IsUndefined() {
		return ""
	}
	return js.Global().Get("String").Invoke(tag).Call("toLowerCase").String()
}

func (e JSElement) ID() string {
	id, _ := e.Attr("id")
	return id
}

func (e JSElement) Attr(name string) (string, bool) {
	if !e.v.Truthy() || !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e JSElement) SetAttr(name, value string) {
	if e.v.Truthy() {
		e.v.Call("setAttribute", name, value)
	}
}

func (e JSElement) RemoveAttr(name string) {
	if e.v.Truthy() {
		e.v.Call("removeAttribute", name)
	}
}

func (e JSElement) AddClass(names ...string) {
	if !e.v.Truthy() {
		return
	}
	list := e.v.Get("classList")
	for _, name := range names {
		list.Call("add", name)
	}
}

func (e JSElement) RemoveClass(names ...string) {
	if !e.v.Truthy() {
		return
	}
	list := e.v.Get("classList")
	for _, name := range names {
		list.Call("remove", name)
	}
}

func (e JSElement) HasClass(name string) bool {
	return e.v.Truthy() && e.v.Get("classList").Call("contains", name).Bool()
}

func (e JSElement) Text() string {
	if !e.v.Truthy() {
		return ""
	}
	return e.v.Get("textContent").String()
}

func (e JSElement) SetText(text string) {
	if e.v.Truthy() {
		e.v.Set("textContent", text)
	}
}

func (e JSElement) Style(property string) string {
	if !e.v.Truthy() {
		return ""
	}
	return e.v.Get("style").Call("getPropertyValue", property).String()
}

func (e JSElement) SetStyle(property, value string) {
	if !e.v.Truthy() {
		return
	}
	style := e.v.Get("style")
	if value == "" {
		style.Call("removeProperty", property)
		return
	}
	style.Call("setProperty", property, value)
}

// AppendMarkup inserts markup with insertAdjacentHTML("beforeend"), which
// leaves existing children (and their listeners, focus and input values)
// untouched.
func (e JSElement) AppendMarkup(markup string) (added []Element, err error) {
	if !e.v.Truthy() {
		return nil, fmt.Errorf("dom: append to invalid element")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dom: insertAdjacentHTML: %v", r)
		}
	}()
	before := e.v.Get("children").Length()
	e.v.Call("insertAdjacentHTML", "beforeend", markup)
	children := e.v.Get("children")
	for i := before; i < children.Length(); i++ {
		added = append(added, JSElement{v: children.Index(i)})
	}
	return added, nil
}

func (e JSElement) ElementsByClassName(class string) []Element {
	if !e.v.Truthy() {
		return nil
	}
	list := e.v.Call("getElementsByClassName", class)
	out := make([]Element, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		out = append(out, JSElement{v: list.Index(i)})
	}
	return out
}

// On registers handler for the named DOM event and returns a function that
// removes it and releases the callback.
func (e JSElement) On(event string, handler func(target Element)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			args[0].Call("preventDefault")
		}
		handler(JSElement{v: this})
		return nil
	})
	e.v.Call("addEventListener", event, cb)
	return func() {
		e.v.Call("removeEventListener", event, cb)
		cb.Release()
	}
}

// FormValue returns the value of a form control such as <select>.
func (e JSElement) FormValue() string {
	if !e.v.Truthy() {
		return ""
	}
	return e.v.Get("value").String()
}
