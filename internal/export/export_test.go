package export

import (
	"context"
	"testing"
	"time"

	"waketimed-go/bus"
)

func TestPublishAndGetStatus(t *testing.T) {
	b := bus.NewBus(4)
	pubConn := b.NewConnection("publisher")
	responderConn := b.NewConnection("responder")
	callerConn := b.NewConnection("caller")

	pub := NewPublisher(pubConn)
	responder := NewResponder(responderConn, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go responder.Start(ctx)
	time.Sleep(20 * time.Millisecond) // let the responder's subscription register

	pub.PublishStatus(1500*time.Millisecond, true)

	qctx, qcancel := context.WithTimeout(context.Background(), time.Second)
	defer qcancel()
	st, err := GetStatus(qctx, callerConn)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.EarliestSleepTimeMs != 1500 || !st.StayupActive {
		t.Fatalf("got %+v", st)
	}
}

func TestPublishStatus_ClampsNegativeDuration(t *testing.T) {
	b := bus.NewBus(4)
	pub := NewPublisher(b.NewConnection("publisher"))
	pub.PublishStatus(-5*time.Second, false)
	if pub.Status().EarliestSleepTimeMs != 0 {
		t.Fatalf("want clamped to 0, got %+v", pub.Status())
	}
}

func TestLocalTransportRegistered(t *testing.T) {
	tr, err := NewTransport("local")
	if err != nil {
		t.Fatalf("NewTransport(local): %v", err)
	}
	if _, ok := tr.(*localTransport); !ok {
		t.Fatalf("got %T, want *localTransport", tr)
	}
}

func TestNewTransport_UnknownName(t *testing.T) {
	if _, err := NewTransport("no_such_transport"); err == nil {
		t.Fatalf("expected an error for an unregistered transport name")
	}
}
