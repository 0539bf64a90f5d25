package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestViewErrorString(t *testing.T) {
	err := &ViewError{
		Op:   "test.operation",
		Kind: KindFetch,
		Err:  &UpstreamError{Message: "rate limited"},
	}
	got := err.Error()
	want := "test.operation [fetch]: upstream: rate limited"
	if got != want {
		t.Errorf("ViewError.Error() = %q, want %q", got, want)
	}
}

func TestViewErrorWithElement(t *testing.T) {
	err := &ViewError{
		Op:      "core.ModularTemplate.Insert",
		Kind:    KindTemplate,
		Element: "ul#history",
		Err:     fmt.Errorf("placeholder missing"),
	}
	want := "element=ul#history"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindFetch, "fetch"},
		{KindDecode, "decode"},
		{KindTemplate, "template"},
		{KindListener, "listener"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	inner := &ViewError{Op: "randomuser.Fetch", Kind: KindFetch, Err: fmt.Errorf("timeout")}
	wrapped := fmt.Errorf("generate: %w", inner)

	if got := KindOf(wrapped); got != KindFetch {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindFetch)
	}
	if got := KindOf(fmt.Errorf("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
}

func TestUpstreamErrorString(t *testing.T) {
	if got := (&UpstreamError{}).Error(); got != "upstream reported an error" {
		t.Errorf("empty UpstreamError = %q", got)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "dispatch.Loop.Run"
	if got, want := err.Error(), "panic in dispatch.Loop.Run: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *ViewError
	handler := &testHandler{
		onError: func(err *ViewError) {
			captured = err
		},
	}

	SetHandler(handler)
	defer SetHandler(nil)

	Report(&ViewError{
		Op:   "test.op",
		Kind: KindTemplate,
		Err:  fmt.Errorf("bad markup"),
	})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}

	// nil is ignored
	captured = nil
	Report(nil)
	if captured != nil {
		t.Error("Report(nil) should not reach the handler")
	}
}

func TestGuard(t *testing.T) {
	var captured *PanicError
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(nil)

	if err := Guard("test.quiet", func() {}); err != nil {
		t.Fatalf("Guard without a panic = %v", err)
	}
	if captured != nil {
		t.Fatal("no panic should be reported")
	}

	err := Guard("dispatch.Loop.Call", func() { panic("listener exploded") })
	if captured == nil {
		t.Fatal("expected panic to be reported")
	}
	if captured.Op != "dispatch.Loop.Call" || captured.Value != "listener exploded" {
		t.Errorf("reported panic = %+v", captured)
	}
	if KindOf(err) != KindPanic {
		t.Errorf("KindOf(Guard) = %v, want panic", KindOf(err))
	}
	var pe *PanicError
	if !stderrors.As(err, &pe) || pe != captured {
		t.Errorf("Guard error should wrap the reported PanicError, got %v", err)
	}
	if !strings.Contains(captured.StackTrace, "TestGuard") {
		t.Errorf("stack trace should start at the panic site:\n%s", captured.StackTrace)
	}
}

func TestCallersSkipsRuntime(t *testing.T) {
	stack := callers(0)
	first, _, _ := strings.Cut(stack, "\n")
	if !strings.HasSuffix(first, "TestCallersSkipsRuntime") {
		t.Errorf("first frame = %q, want the test function", first)
	}
	for _, line := range strings.Split(stack, "\n") {
		if strings.HasPrefix(line, "runtime.") {
			t.Errorf("stack contains runtime frame %q", line)
		}
	}
}

func TestReportFillsStackTrace(t *testing.T) {
	var captured *ViewError
	SetHandler(&testHandler{onError: func(err *ViewError) { captured = err }})
	defer SetHandler(nil)

	Report(&ViewError{Op: "profilecard.listen", Kind: KindListener, Err: fmt.Errorf("bad state")})
	if captured == nil || !strings.Contains(captured.StackTrace, "TestReportFillsStackTrace") {
		t.Errorf("StackTrace not filled: %+v", captured)
	}

	Report(&ViewError{Op: "op", Err: fmt.Errorf("x"), StackTrace: "given"})
	if captured.StackTrace != "given" {
		t.Errorf("StackTrace overwritten: %q", captured.StackTrace)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(&testHandler{})
	SetHandler(nil)
	h, ok := Handler().(*LogHandler)
	if !ok {
		t.Fatalf("SetHandler(nil) should restore a LogHandler, got %T", Handler())
	}
	if h.Verbose {
		t.Error("restored LogHandler should not be verbose")
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}

	h.HandleError(&ViewError{Op: "profilecard.Generate", Kind: KindFetch, Err: fmt.Errorf("boom")})
	if got, want := buf.String(), "[stateview error] profilecard.Generate: boom\n"; got != want {
		t.Errorf("HandleError wrote %q, want %q", got, want)
	}

	buf.Reset()
	h.Verbose = true
	h.HandleError(&ViewError{Op: "op", Kind: KindDecode, Element: "main", Err: fmt.Errorf("bad"), StackTrace: "frame"})
	out := buf.String()
	for _, want := range []string{"[decode]", "element=main", "Stack trace:\nframe"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output %q missing %q", out, want)
		}
	}

	buf.Reset()
	h.HandlePanic(&PanicError{Op: "loop", Value: "oops"})
	if !strings.HasPrefix(buf.String(), "[stateview panic] loop: oops") {
		t.Errorf("HandlePanic wrote %q", buf.String())
	}
}

type testHandler struct {
	onError func(*ViewError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *ViewError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
