package sleepmanager

import (
	"time"

	"golang.org/x/sys/unix"
)

// Clock abstracts the "boot-including-suspend" monotonic clock the
// earliest_possible_suspend deadline needs: one that keeps advancing while
// the system is suspended, so a deadline set before a suspend is still
// honored correctly after resume. time.Now()'s monotonic reading
// (CLOCK_MONOTONIC) pauses during suspend on Linux; CLOCK_BOOTTIME does not.
type Clock interface {
	Now() time.Duration
}

// bootClock reads CLOCK_BOOTTIME via golang.org/x/sys/unix.ClockGettime.
type bootClock struct{}

// NewBootClock returns the production Clock implementation.
func NewBootClock() Clock { return bootClock{} }

func (bootClock) Now() time.Duration {
	var ts unix.Timespec
	// CLOCK_BOOTTIME cannot fail for a valid *Timespec.
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}

// FakeClock is a manually-advanced Clock for tests, so SleepManager's
// timing logic can be exercised deterministically without sleeping.
type FakeClock struct {
	now time.Duration
}

// NewFakeClock returns a FakeClock starting at the given instant.
func NewFakeClock(start time.Duration) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Duration { return c.now }

// Advance moves the fake clock forward by d. Negative d panics: the whole
// point of CLOCK_BOOTTIME is monotonicity, and a test that needs to model a
// backward clock jump should construct a fresh FakeClock instead.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		panic("sleepmanager: FakeClock cannot move backwards")
	}
	c.now += d
}
