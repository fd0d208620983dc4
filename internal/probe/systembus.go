package probe

import "context"

// SystemBus abstracts the subset of systemd-logind and ModemManager D-Bus
// calls the built-in probes need. No D-Bus client library is available in
// this module's dependency set (see DESIGN.md); production wiring of a
// concrete implementation is left to the caller that constructs the
// CreationContext.
type SystemBus interface {
	// SeatExists reports whether org.freedesktop.login1's default seat
	// (seat0) is present. Used by login_seat_busy's IsActive.
	SeatExists(ctx context.Context) (bool, error)
	// SeatIdleHint returns seat0's IdleHint property.
	SeatIdleHint(ctx context.Context) (bool, error)

	// SessionExists reports whether any login session is present. Used by
	// login_session_busy's IsActive.
	SessionExists(ctx context.Context) (bool, error)
	// SessionIdleHint returns the IdleHint property of the session
	// associated with the running user, OR'd across sessions if more than
	// one is active.
	SessionIdleHint(ctx context.Context) (bool, error)

	// Inhibitors returns the colon-separated "what" field across every
	// active sleep/shutdown inhibitor currently held, e.g. "shutdown:sleep".
	Inhibitors(ctx context.Context) (string, error)

	// ModemObjectPaths enumerates ModemManager's Modem objects. Returned
	// paths are stable for the life of the process; callers that want to
	// cache them across polls may do so.
	ModemObjectPaths(ctx context.Context) ([]string, error)
	// ModemVoiceCallCount returns the number of calls currently present
	// (any state) on the Voice interface of the modem at path.
	ModemVoiceCallCount(ctx context.Context, path string) (int, error)
}

// CreationContext bundles the shared resources a builtin Factory needs to
// construct a Probe. It is threaded through from cmd/waketimed.
type CreationContext struct {
	Bus SystemBus
}
