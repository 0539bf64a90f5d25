package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

func TestDispatch_Unregistered(t *testing.T) {
	RegisterDispatch(nil)
	if Dispatch(func() {}) {
		t.Error("Dispatch without a registered function should report false")
	}
}

func TestDispatch_Registered(t *testing.T) {
	var queued []func()
	RegisterDispatch(func(cb func()) bool {
		queued = append(queued, cb)
		return true
	})
	defer RegisterDispatch(nil)

	ran := false
	if !Dispatch(func() { ran = true }) {
		t.Fatal("Dispatch should report true")
	}
	if Dispatch(nil) {
		t.Error("Dispatch(nil) should report false")
	}
	if len(queued) != 1 {
		t.Fatalf("queued %d callbacks, want 1", len(queued))
	}
	queued[0]()
	if !ran {
		t.Error("callback did not run")
	}
}

func TestLoop_RunPendingPreservesOrder(t *testing.T) {
	l := NewLoop(8)
	var order []int
	for i := 0; i < 3; i++ {
		l.Post(func() { order = append(order, i) })
	}
	if n := l.RunPending(); n != 3 {
		t.Fatalf("RunPending() = %d, want 3", n)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
	if n := l.RunPending(); n != 0 {
		t.Errorf("second RunPending() = %d, want 0", n)
	}
}

func TestLoop_RunPendingIncludesNestedPosts(t *testing.T) {
	l := NewLoop(4)
	var order []string
	l.Post(func() {
		order = append(order, "outer")
		l.Post(func() { order = append(order, "inner") })
	})
	if n := l.RunPending(); n != 2 {
		t.Fatalf("RunPending() = %d, want 2", n)
	}
	if len(order) != 2 || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}

func TestLoop_CallRunsOnLoopGoroutine(t *testing.T) {
	l := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	}()

	value := 0
	if err := l.Call(ctx, func() { value = 42 }); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if value != 42 {
		t.Errorf("value = %d, want 42", value)
	}

	cancel()
	wg.Wait()
}

func TestLoop_PanicIsReportedAndLoopSurvives(t *testing.T) {
	var panics []*sverrors.PanicError
	sverrors.SetHandler(&panicRecorder{panics: &panics})
	defer sverrors.SetHandler(nil)

	l := NewLoop(4)
	ran := false
	l.Post(func() { panic("listener exploded") })
	l.Post(func() { ran = true })
	l.RunPending()

	if len(panics) != 1 || panics[0].Op != "dispatch.Loop" {
		t.Fatalf("reported panics = %v", panics)
	}
	if !ran {
		t.Error("loop stopped after a panicking callback")
	}
}

func TestLoop_Closed(t *testing.T) {
	l := NewLoop(1)
	l.Close()
	l.Close()

	if l.Post(func() {}) {
		t.Error("Post on a closed loop should report false")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Call(ctx, func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Call on a closed loop = %v, want ErrClosed", err)
	}
	if err := l.Run(ctx); err != nil {
		t.Errorf("Run on a closed loop = %v, want nil", err)
	}
}

func TestDispatch_ClosedLoopReportsFalse(t *testing.T) {
	l := NewLoop(4)
	RegisterDispatch(l.Dispatch)
	defer RegisterDispatch(nil)

	if !Dispatch(func() {}) {
		t.Fatal("Dispatch to an open loop should report true")
	}
	l.Close()
	ran := false
	if Dispatch(func() { ran = true }) {
		t.Error("Dispatch to a closed loop should report false")
	}
	l.RunPending()
	if ran {
		t.Error("callback dispatched after Close ran")
	}
}

func TestLoop_CallReturnsPanic(t *testing.T) {
	var panics []*sverrors.PanicError
	sverrors.SetHandler(&panicRecorder{panics: &panics})
	defer sverrors.SetHandler(nil)

	l := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	err := l.Call(ctx, func() { panic("render failed") })
	if sverrors.KindOf(err) != sverrors.KindPanic {
		t.Fatalf("Call() = %v, want a panic error", err)
	}
	if len(panics) != 1 || panics[0].Op != "dispatch.Loop.Call" {
		t.Errorf("reported panics = %v", panics)
	}
	if err := l.Call(ctx, func() {}); err != nil {
		t.Errorf("loop should survive the panic, Call() = %v", err)
	}
}

func TestLoop_CallContextExpires(t *testing.T) {
	l := NewLoop(1)
	// Nobody runs the loop, so the call can only end through its context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Call(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Call() = %v, want DeadlineExceeded", err)
	}
}

type panicRecorder struct {
	panics *[]*sverrors.PanicError
}

func (r *panicRecorder) HandleError(*sverrors.ViewError) {}

func (r *panicRecorder) HandlePanic(err *sverrors.PanicError) {
	*r.panics = append(*r.panics, err)
}
