// Package dispatch runs callbacks on a single UI goroutine.
//
// State writes and listener calls are single-threaded. Background work (a
// network fetch) finishes on its own goroutine and hands its result back with
// Dispatch or Loop.Post.
package dispatch

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func()) bool
)

// RegisterDispatch sets the dispatch function used to schedule callbacks on the UI thread.
// fn reports whether the callback was accepted. Pass nil to unregister.
func RegisterDispatch(fn func(callback func()) bool) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback to run on the UI thread.
// Returns true if the callback was scheduled, false if no dispatch function is
// registered, the callback is nil, or the registered function refused it (a
// closed Loop).
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	return fn(callback)
}
