// Package worker implements the daemon's multi-threaded cooperative runtime:
// it executes probe calls off the Engine thread, owns the periodic poll
// ticker, and drives the suspend-request/PrepareForSleep signal handlers.
// It is the only place in the daemon that may block.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"waketimed-go/internal/model"
	"waketimed-go/internal/msg"
	"waketimed-go/internal/probe"
)

// Suspender performs the platform suspend RPC. A concrete D-Bus-backed
// implementation is an external collaborator; this package only defines the
// seam it's called through.
type Suspender interface {
	Suspend(ctx context.Context) error
}

// SleepWatcher subscribes to the platform's PrepareForSleep-equivalent
// signal and reports suspend/resume transitions on the returned channel
// (true = about to suspend, false = resuming). The channel is closed when
// watching ends; a nil error with a nil channel means "nothing to watch"
// (e.g. no sleep-lifecycle collaborator configured).
type SleepWatcher interface {
	Watch(ctx context.Context) (<-chan bool, error)
}

// NoOpSleepWatcher never emits a suspend/resume transition. It is the
// default when no platform sleep-lifecycle collaborator is wired in (tests,
// or a host where suspend is driven purely by the SleepManager's deadline).
type NoOpSleepWatcher struct{}

func (NoOpSleepWatcher) Watch(ctx context.Context) (<-chan bool, error) {
	ch := make(chan bool)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Config bundles the Worker's tunables.
type Config struct {
	// QueueLen is not read by New: the inbound/outbound queues are the
	// channels the caller passes to New, sized by the caller. Substituting
	// bounded queues for nominally-unbounded channels is safe as long as
	// probe concurrency is also bounded, which this Worker does: one
	// goroutine per outstanding probe call, naturally capped by VarManager's
	// waitlists.
	QueueLen int
}

// Worker is safe to Run exactly once; CallVarIsActive/CallVarPoll/Suspend
// each execute on their own goroutine, so concurrent probe invocations may
// interleave arbitrarily, but every reply for a given variable name is sent
// in the order its call was dispatched (the two goroutines corresponding to
// two CallVarPoll{Name: x} dispatches are themselves spawned in the order
// the messages were read off the inbound channel).
type Worker struct {
	cc        probe.CreationContext
	suspender Suspender
	watcher   SleepWatcher
	logger    *slog.Logger

	in  <-chan msg.WorkerMsg
	out chan<- msg.EngineMsg

	probes map[model.VarName]probe.Probe

	wg           sync.WaitGroup
	cancelTicker context.CancelFunc
}

// New constructs a Worker. suspender and watcher may be nil, in which case
// Suspend only logs (as if TestMode were set) and no sleep-lifecycle signal
// is ever observed, respectively.
func New(cc probe.CreationContext, suspender Suspender, watcher SleepWatcher, logger *slog.Logger, in <-chan msg.WorkerMsg, out chan<- msg.EngineMsg) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if watcher == nil {
		watcher = NoOpSleepWatcher{}
	}
	return &Worker{
		cc:        cc,
		suspender: suspender,
		watcher:   watcher,
		logger:    logger.With("component", "worker"),
		in:        in,
		out:       out,
		probes:    map[model.VarName]probe.Probe{},
	}
}

// sendEngine delivers m to the Engine, giving up (dropping the message)
// only if ctx is already done -- at that point the daemon is shutting down
// and nothing is listening anyway.
func (w *Worker) sendEngine(ctx context.Context, m msg.EngineMsg) {
	select {
	case w.out <- m:
	case <-ctx.Done():
	}
}

// Run processes inbound WorkerMsg values until Terminate is received or ctx
// is cancelled, then cancels the poll ticker, waits for every in-flight
// probe/suspend goroutine to finish, and returns.
func (w *Worker) Run(ctx context.Context) {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	w.startSleepWatcher(watchCtx)

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case m, ok := <-w.in:
			if !ok {
				cancelWatch()
				w.shutdown()
				return
			}
			if _, isTerminate := m.(msg.Terminate); isTerminate {
				cancelWatch()
				w.shutdown()
				return
			}
			w.handle(ctx, m)
		}
	}
}

func (w *Worker) shutdown() {
	if w.cancelTicker != nil {
		w.cancelTicker()
	}
	w.wg.Wait()
}

func (w *Worker) startSleepWatcher(ctx context.Context) {
	ch, err := w.watcher.Watch(ctx)
	if err != nil {
		w.logger.Warn("sleep watcher failed to start", "err", err)
		return
	}
	if ch == nil {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case suspending, ok := <-ch:
				if !ok {
					return
				}
				if suspending {
					w.sendEngine(ctx, msg.SystemIsSuspending{})
				} else {
					w.sendEngine(ctx, msg.SystemIsResuming{})
				}
			}
		}
	}()
}

func (w *Worker) handle(ctx context.Context, m msg.WorkerMsg) {
	switch v := m.(type) {
	case msg.LoadPollVarFns:
		w.loadPollVarFns(ctx, v.Def)
	case msg.CallVarIsActive:
		w.callVarIsActive(ctx, v.Name)
	case msg.CallVarPoll:
		w.callVarPoll(ctx, v.Name)
	case msg.SpawnPollVarInterval:
		w.spawnPollVarInterval(ctx, v.IntervalMs)
	case msg.Suspend:
		w.suspend(ctx, v.TestMode)
	}
}

// loadPollVarFns constructs the probe instance for a BuiltinPoll variable
// definition synchronously, so that a CallVarIsActive/CallVarPoll message
// for the same name processed afterward always observes the constructed
// instance (or its absence, on construction failure). Construction failure
// is logged and leaves the name without an instance, so future polls for
// it yield None.
func (w *Worker) loadPollVarFns(ctx context.Context, def model.VarDef) {
	p, err := probe.New(w.cc, def)
	if err != nil {
		w.logger.Warn("probe construction failed", "var", def.Name, "err", err)
		return
	}
	w.probes[def.Name] = p
}

func (w *Worker) callVarIsActive(ctx context.Context, name model.VarName) {
	p, ok := w.probes[name]
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		active := ok && p.IsActive(ctx)
		w.sendEngine(ctx, msg.ReturnVarIsActive{Name: name, Active: active})
	}()
}

func (w *Worker) callVarPoll(ctx context.Context, name model.VarName) {
	p, ok := w.probes[name]
	if !ok {
		w.logger.Warn("poll requested for variable with no probe instance", "var", name)
		w.sendEngine(ctx, msg.ReturnVarPoll{Name: name, Ok: false})
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		value, polledOk := p.Poll(ctx)
		w.sendEngine(ctx, msg.ReturnVarPoll{Name: name, Value: value, Ok: polledOk})
	}()
}

// spawnPollVarInterval cancels any previous ticker and starts a new one.
// "Skip missed" semantics: each tick is forwarded through sendEngine, which
// blocks until the Engine accepts it or ctx is done, and time.Ticker itself
// never queues more than one pending tick, so a slow consumer never sees a
// burst of catch-up ticks.
func (w *Worker) spawnPollVarInterval(ctx context.Context, intervalMs int64) {
	if w.cancelTicker != nil {
		w.cancelTicker()
		w.cancelTicker = nil
	}
	if intervalMs <= 0 {
		w.logger.Warn("ignoring non-positive poll interval", "interval_ms", intervalMs)
		return
	}

	tickerCtx, cancel := context.WithCancel(ctx)
	w.cancelTicker = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-tickerCtx.Done():
				return
			case <-ticker.C:
				w.sendEngine(ctx, msg.PollVarsTick{})
			}
		}
	}()
}

func (w *Worker) suspend(ctx context.Context, testMode bool) {
	if testMode || w.suspender == nil {
		w.logger.Info("suspend requested (test mode)", "test_mode", testMode)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.suspender.Suspend(ctx); err != nil {
			w.logger.Warn("suspend RPC failed", "err", err)
		}
	}()
}
