package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"waketimed-go/internal/model"
	"waketimed-go/internal/msg"
	"waketimed-go/internal/probe"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustVarName(t *testing.T, s string) model.VarName {
	t.Helper()
	n, err := model.NewVarName(s)
	if err != nil {
		t.Fatalf("NewVarName(%q): %v", s, err)
	}
	return n
}

func newTestWorker(t *testing.T, suspender Suspender, watcher SleepWatcher) (*Worker, chan msg.WorkerMsg, chan msg.EngineMsg) {
	t.Helper()
	in := make(chan msg.WorkerMsg, 16)
	out := make(chan msg.EngineMsg, 16)
	w := New(probe.CreationContext{}, suspender, watcher, testLogger(), in, out)
	return w, in, out
}

func recvWithin(t *testing.T, ch chan msg.EngineMsg, d time.Duration) msg.EngineMsg {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(d):
		t.Fatal("timed out waiting for EngineMsg")
		return nil
	}
}

func TestWorker_LoadAndCallVarIsActive(t *testing.T) {
	w, in, out := newTestWorker(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	name := mustVarName(t, "a")
	in <- msg.LoadPollVarFns{Def: model.VarDef{Name: name, Kind: model.KindBuiltinPoll, BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_const_bool"}}}
	in <- msg.CallVarIsActive{Name: name}

	got := recvWithin(t, out, time.Second)
	r, ok := got.(msg.ReturnVarIsActive)
	if !ok {
		t.Fatalf("got %T, want ReturnVarIsActive", got)
	}
	if r.Name != name || !r.Active {
		t.Fatalf("got %+v", r)
	}
}

func TestWorker_CallVarPollMissingProbe(t *testing.T) {
	w, in, out := newTestWorker(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	name := mustVarName(t, "ghost")
	in <- msg.CallVarPoll{Name: name}

	got := recvWithin(t, out, time.Second)
	r, ok := got.(msg.ReturnVarPoll)
	if !ok {
		t.Fatalf("got %T, want ReturnVarPoll", got)
	}
	if r.Ok {
		t.Fatalf("want Ok=false for a name with no probe instance")
	}
}

func TestWorker_PollVarsTick(t *testing.T) {
	w, in, out := newTestWorker(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	in <- msg.SpawnPollVarInterval{IntervalMs: 10}
	for i := 0; i < 2; i++ {
		got := recvWithin(t, out, time.Second)
		if _, ok := got.(msg.PollVarsTick); !ok {
			t.Fatalf("got %T, want PollVarsTick", got)
		}
	}
}

func TestWorker_SpawnPollVarIntervalCancelsPrevious(t *testing.T) {
	w, in, out := newTestWorker(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	in <- msg.SpawnPollVarInterval{IntervalMs: 5}
	recvWithin(t, out, time.Second) // drain one tick from the first ticker

	in <- msg.SpawnPollVarInterval{IntervalMs: 100000}
	// Drain anything still in flight from the first ticker before it's torn down.
	drainFor(out, 50*time.Millisecond)

	select {
	case m := <-out:
		t.Fatalf("unexpected message after replacing the ticker with a long interval: %+v", m)
	case <-time.After(150 * time.Millisecond):
	}
}

type fakeSuspender struct {
	called atomic.Bool
	err    error
}

func (f *fakeSuspender) Suspend(context.Context) error {
	f.called.Store(true)
	return f.err
}

func TestWorker_SuspendTestModeDoesNotCallSuspender(t *testing.T) {
	fs := &fakeSuspender{}
	w, in, _ := newTestWorker(t, fs, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	in <- msg.Suspend{TestMode: true}
	time.Sleep(50 * time.Millisecond)
	if fs.called.Load() {
		t.Fatalf("suspender must not be invoked in test mode")
	}
}

func TestWorker_SuspendInvokesSuspenderAndLogsFailure(t *testing.T) {
	fs := &fakeSuspender{err: errors.New("rpc failed")}
	w, in, _ := newTestWorker(t, fs, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	in <- msg.Suspend{TestMode: false}
	deadline := time.Now().Add(time.Second)
	for !fs.called.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !fs.called.Load() {
		t.Fatalf("expected suspender to be invoked")
	}
}

func TestWorker_TerminateStopsTicker(t *testing.T) {
	w, in, out := newTestWorker(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	in <- msg.SpawnPollVarInterval{IntervalMs: 5}
	recvWithin(t, out, time.Second)

	in <- msg.Terminate{}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not shut down after Terminate")
	}
}

func drainFor(ch chan msg.EngineMsg, d time.Duration) {
	deadline := time.After(d)
	for {
		select {
		case <-ch:
		case <-deadline:
			return
		}
	}
}
