package probe

import (
	"context"
	"errors"
)

var errSystemBusUnavailable = errors.New("probe: no system bus connection configured")

// UnavailableSystemBus is the default SystemBus used when no real D-Bus
// connection has been wired in (the D-Bus transport itself is an external
// collaborator of this module). Every call fails, which makes the
// login_seat_busy, login_session_busy and modem_voice_call_present builtins
// report IsActive() == false and be pruned at startup instead of crashing
// the daemon. sleep_block_inhibited is always active, so it stays and every
// one of its polls returns no value. test_* builtins and category variables
// are unaffected.
type UnavailableSystemBus struct{}

func (UnavailableSystemBus) SeatExists(context.Context) (bool, error) { return false, errSystemBusUnavailable }
func (UnavailableSystemBus) SeatIdleHint(context.Context) (bool, error) {
	return false, errSystemBusUnavailable
}
func (UnavailableSystemBus) SessionExists(context.Context) (bool, error) {
	return false, errSystemBusUnavailable
}
func (UnavailableSystemBus) SessionIdleHint(context.Context) (bool, error) {
	return false, errSystemBusUnavailable
}
func (UnavailableSystemBus) Inhibitors(context.Context) (string, error) {
	return "", errSystemBusUnavailable
}
func (UnavailableSystemBus) ModemObjectPaths(context.Context) ([]string, error) {
	return nil, errSystemBusUnavailable
}
func (UnavailableSystemBus) ModemVoiceCallCount(context.Context, string) (int, error) {
	return 0, errSystemBusUnavailable
}
