// Package msg defines the two message schemas that cross the daemon's
// thread boundary: EngineMsg (Worker/Signal -> Engine) and WorkerMsg
// (Engine -> Worker). Keeping them in their own package lets internal/engine
// and internal/worker each depend on the message shapes without depending on
// each other.
package msg

import "waketimed-go/internal/model"

// EngineMsg is implemented by every message the Engine accepts.
type EngineMsg interface{ engineMsg() }

// ReturnVarIsActive answers a CallVarIsActive dispatch.
type ReturnVarIsActive struct {
	Name   model.VarName
	Active bool
}

// ReturnVarPoll answers a CallVarPoll dispatch. Ok false means the probe
// returned no value this round (transient failure); Value is meaningless in
// that case.
type ReturnVarPoll struct {
	Name  model.VarName
	Value model.VarValue
	Ok    bool
}

// PollVarsTick is emitted by the Worker's interval ticker.
type PollVarsTick struct{}

// SystemIsSuspending is emitted by the PrepareForSleep watcher when the
// platform is about to suspend.
type SystemIsSuspending struct{}

// SystemIsResuming is emitted by the PrepareForSleep watcher on resume.
type SystemIsResuming struct{}

// Terminate requests a graceful shutdown. It is accepted by both the Engine
// and (as a WorkerMsg) the Worker.
type Terminate struct{}

func (ReturnVarIsActive) engineMsg()  {}
func (ReturnVarPoll) engineMsg()      {}
func (PollVarsTick) engineMsg()       {}
func (SystemIsSuspending) engineMsg() {}
func (SystemIsResuming) engineMsg()   {}
func (Terminate) engineMsg()          {}

// WorkerMsg is implemented by every message the Worker accepts.
type WorkerMsg interface{ workerMsg() }

// CallVarIsActive asks the Worker to invoke a probe's IsActive().
type CallVarIsActive struct {
	Name model.VarName
}

// CallVarPoll asks the Worker to invoke a probe's Poll().
type CallVarPoll struct {
	Name model.VarName
}

// LoadPollVarFns asks the Worker to construct the probe instance backing a
// BuiltinPoll variable definition.
type LoadPollVarFns struct {
	Def model.VarDef
}

// SpawnPollVarInterval (re)starts the periodic PollVarsTick ticker.
type SpawnPollVarInterval struct {
	IntervalMs int64
}

// Suspend asks the Worker to invoke the platform suspend RPC, or merely log
// if TestMode is set.
type Suspend struct {
	TestMode bool
}

func (CallVarIsActive) workerMsg()      {}
func (CallVarPoll) workerMsg()          {}
func (LoadPollVarFns) workerMsg()       {}
func (SpawnPollVarInterval) workerMsg() {}
func (Suspend) workerMsg()              {}
func (Terminate) workerMsg()            {}
