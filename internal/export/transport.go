package export

import (
	"context"
	"fmt"
	"sync"

	"waketimed-go/bus"
)

// Transport serves GetStatus() to some external caller (D-Bus, HTTP, a test
// harness). Start blocks until ctx is cancelled. This adapts a
// RegisterTransport registry pattern that let external packages plug in
// additional link types alongside a bundled default one; here the bundled
// "local" transport is the bus-based Responder above, and a real D-Bus
// transport is registered the same way by whatever process embeds this
// package.
type Transport interface {
	Start(ctx context.Context, conn *bus.Connection, pub *Publisher) error
}

type transportFactory func() Transport

var (
	regMu    sync.RWMutex
	registry = map[string]transportFactory{}
)

func init() {
	RegisterTransport("local", func() Transport { return &localTransport{} })
}

// RegisterTransport makes a named Transport available to NewTransport. Call
// it from an init() in the package providing the transport (e.g. a D-Bus
// binding), the same convention internal/probe's RegisterBuiltin uses.
func RegisterTransport(name string, f transportFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

// NewTransport looks up a registered Transport by name.
func NewTransport(name string) (Transport, error) {
	regMu.RLock()
	f, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("export: unknown transport %q", name)
	}
	return f(), nil
}

// localTransport serves GetStatus() purely over the in-process bus via a
// Responder. cmd/waketimed starts that same Responder directly rather than
// going through NewTransport.
type localTransport struct{}

func (localTransport) Start(ctx context.Context, conn *bus.Connection, pub *Publisher) error {
	NewResponder(conn, pub).Start(ctx)
	return nil
}
