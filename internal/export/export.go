// Package export exposes the Engine's GetStatus() pair
// (earliest_sleep_time, stayup_active) over the daemon's internal bus. It
// adapts a pluggable-Transport pattern built around a reconnect-with-backoff
// link down to a much simpler "publish a retained snapshot, answer a
// request/reply query" shape -- there is no link to reconnect here, only a
// value to serve.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"waketimed-go/bus"
)

// Status is the wire shape of GetStatus()'s return value.
type Status struct {
	EarliestSleepTimeMs uint64
	StayupActive        bool
}

var (
	// topicStatus holds the latest Status as a retained bus message, so any
	// late subscriber immediately sees the current value without waiting
	// for the next tick.
	topicStatus = bus.Topic{"waketimed", "status"}
	// topicStatusGet is the request topic GetStatus() queries via
	// Connection.RequestWait.
	topicStatusGet = bus.Topic{"waketimed", "status", "get"}
)

// Publisher implements engine.StatusPublisher: it republishes a retained
// Status message on every tick and caches the latest value for Responder to
// answer queries from.
type Publisher struct {
	conn *bus.Connection

	mu   sync.Mutex
	last Status
}

// NewPublisher wraps conn. conn should be a connection dedicated to this
// package (one Connection per service, as everywhere else on the bus).
func NewPublisher(conn *bus.Connection) *Publisher {
	return &Publisher{conn: conn}
}

// PublishStatus implements internal/engine.StatusPublisher. earliestPossibleSuspend
// is a duration *from now*; negative durations (deadline already passed) are
// clamped to zero.
func (p *Publisher) PublishStatus(earliestPossibleSuspend time.Duration, stayupActive bool) {
	ms := earliestPossibleSuspend.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	st := Status{EarliestSleepTimeMs: uint64(ms), StayupActive: stayupActive}

	p.mu.Lock()
	p.last = st
	p.mu.Unlock()

	p.conn.Publish(p.conn.NewMessage(topicStatus, st, true))
}

// Status returns the most recently published snapshot.
func (p *Publisher) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Responder answers GetStatus() requests arriving on topicStatusGet with the
// Publisher's current snapshot. It is the "local" transport: an external
// D-Bus service would instead call GetStatus below and return its result
// over its own path/interface.
type Responder struct {
	conn *bus.Connection
	pub  *Publisher
}

// NewResponder constructs a Responder over conn, answering from pub's cache.
func NewResponder(conn *bus.Connection, pub *Publisher) *Responder {
	return &Responder{conn: conn, pub: pub}
}

// Start runs the responder loop until ctx is cancelled.
func (r *Responder) Start(ctx context.Context) {
	sub := r.conn.Subscribe(topicStatusGet)
	defer r.conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			r.conn.Reply(m, r.pub.Status(), false)
		}
	}
}

// GetStatus implements the daemon's exported method
// GetStatus() -> (u64 earliest_sleep_time, bool stayup_active) via a
// request/reply round trip against a running Responder. Any transport
// exposing this externally (D-Bus, HTTP, ...) wraps this call.
func GetStatus(ctx context.Context, conn *bus.Connection) (Status, error) {
	req := conn.NewMessage(topicStatusGet, nil, false)
	reply, err := conn.RequestWait(ctx, req)
	if err != nil {
		return Status{}, err
	}
	st, ok := reply.Payload.(Status)
	if !ok {
		return Status{}, fmt.Errorf("export: unexpected status payload type %T", reply.Payload)
	}
	return st, nil
}
