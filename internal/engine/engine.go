// Package engine implements the daemon's single-threaded cooperative state
// machine. It owns a VarManager, a RuleManager and a SleepManager, processes
// exactly one inbound msg.EngineMsg at a time, and turns anything that would
// block (probe calls, the suspend RPC, the poll ticker) into a
// msg.WorkerMsg dispatched to the Worker thread.
package engine

import (
	"context"
	"log/slog"
	"time"

	"waketimed-go/errcode"
	"waketimed-go/internal/model"
	"waketimed-go/internal/msg"
	"waketimed-go/internal/rulemanager"
	"waketimed-go/internal/sleepmanager"
	"waketimed-go/internal/varmanager"
)

// State is one of the daemon's four lifecycle states.
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateTerminating
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Config bundles everything the Engine needs that ultimately comes from the
// external config collaborator, already parsed and validated.
type Config struct {
	PollVariableInterval   time.Duration
	StartupAwakeTime       time.Duration
	MinimumAwakeTime       time.Duration
	StayupClearedAwakeTime time.Duration
	TestMode               bool

	// Disabled is the external chassis-type gate's verdict: Start transitions
	// straight to Disabled when the gate rejects the host. The Engine does
	// not evaluate the gate itself; the caller (cmd/waketimed) does and
	// passes the result in.
	Disabled bool
}

// StatusPublisher receives a snapshot after every completed tick;
// earliestPossibleSuspend is the time remaining from now until the deadline
// (negative once it has passed). It is the
// seam internal/export uses to publish GetStatus()'s retained value; it is
// optional (nil is a valid no-op).
type StatusPublisher interface {
	PublishStatus(earliestPossibleSuspend time.Duration, stayupActive bool)
}

// Engine is not safe for concurrent use; it is driven exclusively by its own
// Run loop.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	vars  *varmanager.Manager
	rules *rulemanager.Manager
	sleep *sleepmanager.Manager
	clock sleepmanager.Clock

	out     chan<- msg.WorkerMsg
	publish StatusPublisher

	state State
}

// New constructs an Engine. varDefs and ruleDefs are the already-resolved
// definition sets (the directory-stack resolution that produces them is
// internal/defs's job, not this package's). A RuleManager script compile
// error is returned immediately and is fatal -- no Engine is constructed in
// that case.
func New(cfg Config, varDefs map[model.VarName]model.VarDef, ruleDefs map[model.RuleName]model.RuleDef, clock sleepmanager.Clock, logger *slog.Logger, out chan<- msg.WorkerMsg, publish StatusPublisher) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rules, err := rulemanager.New(ruleDefs)
	if err != nil {
		return nil, err
	}
	sleep := sleepmanager.New(clock, sleepmanager.Config{
		StartupAwakeTime:       cfg.StartupAwakeTime,
		MinimumAwakeTime:       cfg.MinimumAwakeTime,
		StayupClearedAwakeTime: cfg.StayupClearedAwakeTime,
		PollVariableInterval:   cfg.PollVariableInterval,
	})
	return &Engine{
		cfg:     cfg,
		logger:  logger.With("component", "engine"),
		vars:    varmanager.New(varDefs),
		rules:   rules,
		sleep:   sleep,
		clock:   clock,
		out:     out,
		publish: publish,
		state:   StateInitializing,
	}, nil
}

// State returns the Engine's current state, for diagnostics and tests.
func (e *Engine) State() State { return e.state }

// Vars returns the live variable value map, for diagnostics and tests.
func (e *Engine) Vars() map[model.VarName]model.VarValue { return e.vars.Vars() }

// VarDefs returns the live variable definition map, for diagnostics and
// tests (BuiltinPoll survival/pruning is checked here).
func (e *Engine) VarDefs() map[model.VarName]model.VarDef { return e.vars.Defs() }

// StayupValues returns the current rule-name -> stayup-value map, for
// diagnostics and tests.
func (e *Engine) StayupValues() map[model.RuleName]bool { return e.rules.StayupValues() }

// Status implements GetStatus(): the live (earliest_sleep_time,
// stayup_active) pair, read from the actual SleepManager state rather than a
// placeholder.
func (e *Engine) Status(now time.Duration) (earliestSleepTimeMs uint64, stayupActive bool) {
	d := e.sleep.NearestPossibleSuspend() - now
	if d < 0 {
		d = 0
	}
	return uint64(d.Milliseconds()), e.sleep.StayupActive()
}

func (e *Engine) send(m msg.WorkerMsg) {
	select {
	case e.out <- m:
	default:
		// The outbound queue is generously sized (cmd/waketimed) for the
		// daemon's bounded producer rates; a full queue means a dead or
		// wedged Worker, which is the same fatal condition as any other
		// channel send failure.
		e.terminate(errcode.ChannelSendFailure)
	}
}

// Start performs the daemon's startup transitions: either directly to
// Disabled (chassis gate rejected the host) or into Initializing, dispatching
// the first round of LoadPollVarFns/CallVarIsActive work items.
func (e *Engine) Start() {
	if e.cfg.Disabled {
		e.state = StateDisabled
		e.logger.Info("chassis gate rejected host, engine disabled")
		return
	}
	e.sleep.Init()

	defs := e.vars.Init()
	for _, def := range defs {
		e.send(msg.LoadPollVarFns{Def: def})
		e.send(msg.CallVarIsActive{Name: def.Name})
	}
	if e.vars.WaitlistActiveEmpty() {
		// No BuiltinPoll variables at all: proceed straight to the first
		// poll_vars() round, same as the last ReturnVarIsActive arriving.
		e.afterActiveSettled()
	}
}

// Handle dispatches one inbound message according to the Engine's current
// state. While Disabled only Terminate is acted on; once Terminating every
// message is ignored, and Run stops reading.
func (e *Engine) Handle(m msg.EngineMsg) {
	switch e.state {
	case StateDisabled:
		if _, ok := m.(msg.Terminate); ok {
			e.terminate(errcode.OK)
		}
		return
	case StateTerminating:
		return
	}

	switch v := m.(type) {
	case msg.ReturnVarIsActive:
		if e.state != StateInitializing {
			e.logger.Warn("unexpected ReturnVarIsActive outside Initializing", "var", v.Name, "state", e.state)
			return
		}
		e.handleReturnVarIsActive(v.Name, v.Active)
	case msg.ReturnVarPoll:
		e.handleReturnVarPoll(v.Name, v.Value, v.Ok)
	case msg.PollVarsTick:
		if e.state != StateRunning {
			e.logger.Warn("unexpected PollVarsTick outside Running", "state", e.state)
			return
		}
		e.handlePollVarsTick()
	case msg.SystemIsSuspending:
		if e.state != StateRunning {
			e.logger.Warn("unexpected SystemIsSuspending outside Running", "state", e.state)
			return
		}
		e.sleep.HandleSystemIsSuspending()
	case msg.SystemIsResuming:
		if e.state != StateRunning {
			e.logger.Warn("unexpected SystemIsResuming outside Running", "state", e.state)
			return
		}
		e.sleep.HandleSystemIsResuming()
	case msg.Terminate:
		e.terminate(errcode.OK)
	}
}

func (e *Engine) handleReturnVarIsActive(name model.VarName, active bool) {
	e.vars.HandleReturnVarIsActive(name, active)
	if !e.vars.WaitlistActiveEmpty() {
		return
	}
	e.afterActiveSettled()
}

// afterActiveSettled issues the first poll_vars() round once every
// dispatched CallVarIsActive has returned.
func (e *Engine) afterActiveSettled() {
	e.dispatchPollVars()
	if e.vars.IsInitialized() {
		e.enterRunning()
	}
}

func (e *Engine) dispatchPollVars() {
	for _, name := range e.vars.PollVars() {
		e.send(msg.CallVarPoll{Name: name})
	}
}

func (e *Engine) handleReturnVarPoll(name model.VarName, value model.VarValue, ok bool) {
	changed := e.vars.HandleReturnVarPoll(name, value, ok)
	if changed {
		e.logger.Info("variable value changed", "var", name, "value", value.String())
	}
	if !e.vars.WaitlistPollEmpty() {
		return
	}

	switch e.state {
	case StateInitializing:
		if e.vars.IsInitialized() {
			e.enterRunning()
		}
	case StateRunning:
		e.runTick()
	}
}

func (e *Engine) handlePollVarsTick() {
	e.dispatchPollVars()
	if e.vars.WaitlistPollEmpty() {
		// No BuiltinPoll variables outstanding this round (e.g. none are
		// defined): the tick completes immediately instead of waiting for
		// ReturnVarPoll messages that will never arrive.
		e.runTick()
	}
}

// enterRunning transitions Initializing -> Running once
// VarManager.IsInitialized() holds, runs the first tick, and spawns the
// poll interval on entry.
func (e *Engine) enterRunning() {
	e.runTick()
	e.state = StateRunning
	e.send(msg.SpawnPollVarInterval{IntervalMs: e.cfg.PollVariableInterval.Milliseconds()})
	e.logger.Info("engine running")
}

// runTick is the atomic-from-the-Engine's-perspective recomputation: category
// vars, rule scope, stayup values, SleepManager update, then a suspend
// decision.
func (e *Engine) runTick() {
	e.vars.UpdateCategoryVars()
	e.rules.ResetScriptScope(e.vars.Vars())
	e.rules.ComputeStayupValues(func(name model.RuleName, err error) {
		e.logger.Warn("rule evaluation failed", "rule", name, "err", err)
	})

	active := e.rules.IsStayupActive()
	e.sleep.Update(active)

	if e.publish != nil {
		e.publish.PublishStatus(e.sleep.NearestPossibleSuspend()-e.clock.Now(), active)
	}

	if e.sleep.ShouldSuspend() {
		e.send(msg.Suspend{TestMode: e.cfg.TestMode})
	}
}

// terminate implements term_on_err: log (if cause is not a clean shutdown),
// forward Terminate to the Worker, and stop accepting further messages.
func (e *Engine) terminate(cause errcode.Code) {
	if e.state == StateTerminating {
		return
	}
	if cause != errcode.OK {
		e.logger.Error("engine terminating on error", "code", cause)
	} else {
		e.logger.Info("engine terminating")
	}
	e.state = StateTerminating
	select {
	case e.out <- msg.Terminate{}:
	default:
		// The Worker's queue is already full or it's gone; either way there
		// is nothing further this Engine can do.
	}
}

// Run drives the Engine to completion: it calls Start, then processes
// inbound messages until ctx is cancelled or the Engine reaches
// Terminating.
func (e *Engine) Run(ctx context.Context, in <-chan msg.EngineMsg) {
	e.Start()
	for e.state != StateTerminating {
		select {
		case <-ctx.Done():
			e.terminate(errcode.OK)
			return
		case m, ok := <-in:
			if !ok {
				e.terminate(errcode.OK)
				return
			}
			e.Handle(m)
		}
	}
}
