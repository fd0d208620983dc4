package sleepmanager

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		StartupAwakeTime:       0,
		MinimumAwakeTime:       5 * time.Second,
		StayupClearedAwakeTime: 0,
		PollVariableInterval:   1 * time.Second,
	}
}

// After one false tick followed by now > deadline, ShouldSuspend becomes
// true exactly once the deadline passes.
func TestShouldSuspend_GatedByDeadline(t *testing.T) {
	clock := NewFakeClock(0)
	m := New(clock, testConfig())
	m.Init()

	m.Update(false)
	if m.ShouldSuspend() {
		t.Fatalf("must not suspend before the deadline passes")
	}

	clock.Advance(testConfig().PollVariableInterval + time.Millisecond)
	if !m.ShouldSuspend() {
		t.Fatalf("expected ShouldSuspend once now > nearest_possible_suspend")
	}
}

// While stayup is active, suspend is never allowed.
func TestShouldSuspend_NeverWhileStayupActive(t *testing.T) {
	clock := NewFakeClock(0)
	m := New(clock, testConfig())
	m.Init()
	m.Update(true)

	clock.Advance(time.Hour)
	if m.ShouldSuspend() {
		t.Fatalf("must not suspend while stayup_active")
	}
}

// After an active tick, the deadline is at least
// now + stayup_cleared_awake_time + poll_variable_interval.
func TestUpdate_BumpsDeadlineWhenStayupActive(t *testing.T) {
	cfg := testConfig()
	cfg.StayupClearedAwakeTime = 2 * time.Second
	clock := NewFakeClock(0)
	m := New(clock, cfg)
	m.Init()

	m.Update(true)
	want := clock.Now() + cfg.StayupClearedAwakeTime + cfg.PollVariableInterval
	if m.NearestPossibleSuspend() < want {
		t.Fatalf("nearest_possible_suspend = %v, want >= %v", m.NearestPossibleSuspend(), want)
	}
}

// nearest_possible_suspend never decreases.
func TestBump_Monotonic(t *testing.T) {
	clock := NewFakeClock(0)
	m := New(clock, testConfig())
	m.Init()

	m.Update(true)
	first := m.NearestPossibleSuspend()

	clock.Advance(10 * time.Millisecond)
	m.Update(false) // should not lower the deadline
	if m.NearestPossibleSuspend() < first {
		t.Fatalf("deadline decreased: %v -> %v", first, m.NearestPossibleSuspend())
	}
}

// Suspend lifecycle: resuming bumps the deadline by at least
// minimum_awake_time and clears suspend_in_progress.
func TestSuspendLifecycle(t *testing.T) {
	clock := NewFakeClock(0)
	cfg := testConfig()
	m := New(clock, cfg)
	m.Init()

	m.Update(false)
	clock.Advance(cfg.PollVariableInterval + time.Millisecond)
	if !m.ShouldSuspend() {
		t.Fatalf("expected ShouldSuspend before dispatching Suspend")
	}

	// Worker observes PrepareForSleep(true).
	m.HandleSystemIsSuspending()
	if !m.SuspendInProgress() {
		t.Fatalf("expected suspend_in_progress after HandleSystemIsSuspending")
	}
	if m.ShouldSuspend() {
		t.Fatalf("must not suspend again while suspend_in_progress")
	}

	beforeResume := m.NearestPossibleSuspend()
	m.HandleSystemIsResuming()
	if m.SuspendInProgress() {
		t.Fatalf("expected suspend_in_progress cleared after resume")
	}
	if m.NearestPossibleSuspend() < beforeResume+cfg.MinimumAwakeTime-time.Nanosecond {
		t.Fatalf("deadline did not advance by >= minimum_awake_time on resume")
	}
	if m.ShouldSuspend() {
		t.Fatalf("must not suspend immediately after resume, before minimum_awake_time elapses")
	}
}

// Boundary: startup_awake_time=0 with stayup_active=false means suspend is
// allowed as soon as the first rule evaluation completes (once "now" moves
// past the initial deadline of 0).
func TestBoundary_ZeroStartupAwakeTime(t *testing.T) {
	clock := NewFakeClock(0)
	cfg := testConfig()
	cfg.PollVariableInterval = 0
	m := New(clock, cfg)
	m.Init()

	m.Update(false)
	clock.Advance(time.Nanosecond)
	if !m.ShouldSuspend() {
		t.Fatalf("expected suspend allowed with zero startup awake time and interval")
	}
}
