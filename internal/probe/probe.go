// Package probe implements the built-in variable sources polled by
// internal/varmanager. A Probe answers two questions about one variable: is
// it relevant at all on this system (IsActive, checked once at startup), and
// what is its current value (Poll, checked once per poll round on the
// daemon-wide poll interval).
//
// Probes that depend on external state reachable only through systemd-logind
// or ModemManager talk to that state through the SystemBus interface rather
// than a concrete D-Bus client, so the probe logic itself stays testable
// without a running bus.
package probe

import (
	"context"

	"waketimed-go/internal/model"
)

// Probe is implemented by every built-in variable source.
type Probe interface {
	// IsActive reports whether this variable is meaningful on the running
	// system. It is evaluated once, at startup; a false result removes the
	// variable from polling for the lifetime of the process.
	IsActive(ctx context.Context) bool

	// Poll returns the variable's current value. The second return reports
	// whether a value could be obtained; false means the value is
	// momentarily unknown (e.g. a transient bus error) and the previous
	// value, if any, should be kept.
	Poll(ctx context.Context) (model.VarValue, bool)
}

// Factory constructs a Probe for one VarDef of KindBuiltinPoll. def.Name is
// available for error messages; def.BuiltinPoll.Params carries the
// builtin-specific configuration loaded from YAML.
type Factory func(cc CreationContext, def model.VarDef) (Probe, error)

var registry = map[string]Factory{}

// RegisterBuiltin makes a builtin poll probe available under name. It is
// called from each builtin's init().
func RegisterBuiltin(name string, f Factory) {
	registry[name] = f
}

// New looks up def.BuiltinPoll.BuiltinName in the registry and constructs a
// Probe for it.
func New(cc CreationContext, def model.VarDef) (Probe, error) {
	f, ok := registry[def.BuiltinPoll.BuiltinName]
	if !ok {
		return nil, unknownBuiltinErr(def.BuiltinPoll.BuiltinName)
	}
	return f(cc, def)
}
