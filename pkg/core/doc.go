// Package core binds explicit state to DOM elements.
//
// A StatefulElement pairs an element handle with a state value and a single
// listener. The listener runs synchronously once on construction and once on
// every state write; it is the only place that touches the element's visual
// presentation.
//
//	main := core.NewStatefulElement[ViewState](el, Loading{}, func(s ViewState, el dom.Element) {
//	    el.RemoveClass("loading", "error", "load-success")
//	    el.AddClass(Name(s))
//	})
//	main.SetState(Failed{}) // listener runs before SetState returns
//
// # Back-references
//
// Code that only holds the raw element (an event handler, a render hook) can
// recover the wrapper through a Registry, a side-table keyed by element
// identity. Elements are never written to.
//
//	if card, ok := core.StateOf[ViewState](el); ok {
//	    card.SetState(Loading{})
//	}
//
// # Templates
//
// ModularTemplate repeatedly instantiates markup into a parent container and
// wraps every inserted child in a StatefulElement sharing one listener:
//
//	items := core.NewModularTemplate("history-item", list, onRender,
//	    func(p Profile) string { return `<li mod-replace>` + p.Name + `</li>` },
//	    itemListener)
//	item, err := items.Insert(profile, ItemState{Current: true})
//
// # Threading
//
// Nothing in this package schedules work. State writes and listener calls run
// on the caller's goroutine, which is expected to be the UI thread (see
// package dispatch). There is no reentrancy guard: a listener may write state,
// including its own element's, and the nested write completes before the
// outer call returns.
package core
