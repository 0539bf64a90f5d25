// Package errors provides structured error handling for stateview.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindFetch indicates a failed network fetch (transport, timeout, status).
	KindFetch
	// KindDecode indicates a malformed upstream payload.
	KindDecode
	// KindTemplate indicates a template generator produced unusable markup.
	KindTemplate
	// KindListener indicates a state listener failure.
	KindListener
	// KindConfig indicates invalid configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindDecode:
		return "decode"
	case KindTemplate:
		return "template"
	case KindListener:
		return "listener"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ViewError represents a structured error raised while binding state to a view.
type ViewError struct {
	// Op is the operation that failed (e.g., "core.ModularTemplate.Insert").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Element describes the element involved, if any (tag, id or class).
	Element string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ViewError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("%s [%s] element=%s: %v", e.Op, e.Kind, e.Element, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "dispatch.Loop.Run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// UpstreamError is the error an upstream API reported inside an otherwise
// successful response body.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return "upstream reported an error"
	}
	return "upstream: " + e.Message
}

// KindOf returns the kind of the first ViewError in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var ve *ViewError
	if stderrors.As(err, &ve) {
		return ve.Kind
	}
	return KindUnknown
}

// ErrorHandler receives errors reported by stateview.
type ErrorHandler interface {
	// HandleError is called when an error occurs that has no caller to return to.
	HandleError(err *ViewError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
