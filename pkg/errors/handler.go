package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

type handlerRef struct {
	h ErrorHandler
}

var current atomic.Pointer[handlerRef]

func init() {
	current.Store(&handlerRef{h: &LogHandler{}})
}

// SetHandler routes reported errors and panics to h. Pass nil to restore a
// non-verbose LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerRef{h: h})
}

// Handler returns the handler currently receiving reports.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report sends err to the handler, filling in Timestamp and StackTrace when
// they are unset.
func Report(err *ViewError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if err.StackTrace == "" {
		err.StackTrace = callers(1)
	}
	Handler().HandleError(err)
}

// ReportPanic sends a recovered panic to the handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Guard runs fn on the calling goroutine. A panic in fn is reported through
// ReportPanic and returned as a *ViewError of KindPanic wrapping the
// *PanicError; otherwise Guard returns nil.
func Guard(op string, fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		pe := &PanicError{
			Op:         op,
			Value:      r,
			StackTrace: callers(1),
			Timestamp:  time.Now(),
		}
		ReportPanic(pe)
		err = &ViewError{
			Op:         op,
			Kind:       KindPanic,
			Err:        pe,
			StackTrace: pe.StackTrace,
			Timestamp:  pe.Timestamp,
		}
	}()
	fn()
	return nil
}

// callers formats the stack above its caller, skipping skip more frames.
// Frames inside the runtime (panic machinery, goroutine entry) are left out.
func callers(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}
