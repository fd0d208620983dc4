// Package sleepmanager maintains the earliest_possible_suspend deadline and
// the stayup_active/suspend_in_progress flags, and decides whether the
// Engine may ask the Worker to suspend the system.
package sleepmanager

import (
	"time"

	"waketimed-go/x/mathx"
)

// Config bundles the four awake-time/interval knobs, all expressed as
// time.Duration internally though every external surface (env vars, GetStatus)
// settles on milliseconds.
type Config struct {
	StartupAwakeTime      time.Duration
	MinimumAwakeTime      time.Duration
	StayupClearedAwakeTime time.Duration
	PollVariableInterval  time.Duration
}

// Manager is not safe for concurrent use; the Engine's single-threaded
// cooperative loop is its only caller.
type Manager struct {
	clock  Clock
	config Config

	nearestPossibleSuspend time.Duration
	stayupActive           bool
	suspendInProgress      bool
}

// New constructs a Manager. Call Init once before using it.
func New(clock Clock, config Config) *Manager {
	return &Manager{clock: clock, config: config}
}

// Init bumps the deadline by startup_awake_time, so the daemon never
// suspends immediately on startup even if no rule is ever true.
func (m *Manager) Init() {
	m.bump(m.config.StartupAwakeTime)
}

// bump sets nearest_possible_suspend to max(current, now+delta).
func (m *Manager) bump(delta time.Duration) {
	candidate := m.clock.Now() + delta
	m.nearestPossibleSuspend = mathx.Max(m.nearestPossibleSuspend, candidate)
}

// Update records this tick's stayup_active flag and, if true, bumps the
// deadline so the device stays awake at least stayup_cleared_awake_time
// plus one more poll interval past the moment the last rule clears.
func (m *Manager) Update(stayupActive bool) {
	m.stayupActive = stayupActive
	if stayupActive {
		m.bump(m.config.StayupClearedAwakeTime + m.config.PollVariableInterval)
	}
}

// ShouldSuspend reports whether suspend may be requested right now:
// now > nearest_possible_suspend && !stayup_active && !suspend_in_progress.
// It does not set suspend_in_progress; per DESIGN.md's resolution of that
// question, that happens only on HandleSystemIsSuspending, mirroring the
// platform's PrepareForSleep signal.
func (m *Manager) ShouldSuspend() bool {
	return m.clock.Now() > m.nearestPossibleSuspend && !m.stayupActive && !m.suspendInProgress
}

// HandleSystemIsSuspending marks suspend_in_progress true. Called when the
// Worker observes the platform's PrepareForSleep(true) signal.
func (m *Manager) HandleSystemIsSuspending() {
	m.suspendInProgress = true
}

// HandleSystemIsResuming marks suspend_in_progress false and bumps the
// deadline by minimum_awake_time, so a resume always guarantees at least
// that much awake time before the next suspend can be requested.
func (m *Manager) HandleSystemIsResuming() {
	m.suspendInProgress = false
	m.bump(m.config.MinimumAwakeTime)
}

// NearestPossibleSuspend returns the current deadline, for diagnostics,
// GetStatus(), and tests.
func (m *Manager) NearestPossibleSuspend() time.Duration { return m.nearestPossibleSuspend }

// StayupActive returns the most recently recorded stayup_active flag.
func (m *Manager) StayupActive() bool { return m.stayupActive }

// SuspendInProgress returns the current suspend_in_progress flag.
func (m *Manager) SuspendInProgress() bool { return m.suspendInProgress }
