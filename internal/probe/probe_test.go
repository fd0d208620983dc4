package probe

import (
	"context"
	"testing"

	"waketimed-go/internal/model"
)

func TestLoginSeatBusy(t *testing.T) {
	bus := &fakeSystemBus{seatExists: true, seatIdleHint: true}
	p, err := New(CreationContext{Bus: bus}, model.VarDef{
		Kind:        model.KindBuiltinPoll,
		BuiltinPoll: model.BuiltinPollKind{BuiltinName: "login_seat_busy"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.IsActive(context.Background()) {
		t.Fatal("want active")
	}
	v, ok := p.Poll(context.Background())
	if !ok {
		t.Fatal("want poll ok")
	}
	if b, _ := v.AsBool(); b {
		t.Fatal("idle seat should report busy=false")
	}

	bus.seatIdleHint = false
	v, ok = p.Poll(context.Background())
	if !ok {
		t.Fatal("want poll ok")
	}
	if b, _ := v.AsBool(); !b {
		t.Fatal("non-idle seat should report busy=true")
	}

	bus.errSeatIdle = errFake
	if _, ok := p.Poll(context.Background()); ok {
		t.Fatal("want poll failure propagated as not-ok")
	}
}

func TestLoginSeatBusyInactiveWithoutSeat(t *testing.T) {
	bus := &fakeSystemBus{seatExists: false}
	p, _ := New(CreationContext{Bus: bus}, model.VarDef{
		Kind:        model.KindBuiltinPoll,
		BuiltinPoll: model.BuiltinPollKind{BuiltinName: "login_seat_busy"},
	})
	if p.IsActive(context.Background()) {
		t.Fatal("want inactive when no seat present")
	}
}

func TestSleepBlockInhibited(t *testing.T) {
	cases := []struct {
		what string
		want bool
	}{
		{"", false},
		{"sleep", true},
		{"shutdown:sleep", true},
		{"sleep:idle", true},
		{"shutdown:idle", false},
		{"asleep", false},
	}
	for _, c := range cases {
		bus := &fakeSystemBus{inhibitors: c.what}
		p, _ := New(CreationContext{Bus: bus}, model.VarDef{
			Kind:        model.KindBuiltinPoll,
			BuiltinPoll: model.BuiltinPollKind{BuiltinName: "sleep_block_inhibited"},
		})
		if !p.IsActive(context.Background()) {
			t.Fatal("sleep_block_inhibited should always be active")
		}
		v, ok := p.Poll(context.Background())
		if !ok {
			t.Fatalf("poll(%q): want ok", c.what)
		}
		if b, _ := v.AsBool(); b != c.want {
			t.Errorf("poll(%q) = %v, want %v", c.what, b, c.want)
		}
	}
}

func TestModemVoiceCallPresentCachesEnumeration(t *testing.T) {
	bus := &fakeSystemBus{
		modemPaths:      []string{"/org/freedesktop/ModemManager1/Modem/0"},
		modemCallCounts: map[string]int{"/org/freedesktop/ModemManager1/Modem/0": 0},
	}
	p, _ := New(CreationContext{Bus: bus}, model.VarDef{
		Kind:        model.KindBuiltinPoll,
		BuiltinPoll: model.BuiltinPollKind{BuiltinName: "modem_voice_call_present"},
	})

	if !p.IsActive(context.Background()) {
		t.Fatal("want active when a modem is present")
	}

	v, ok := p.Poll(context.Background())
	if !ok || func() bool { b, _ := v.AsBool(); return b }() {
		t.Fatal("want no call present")
	}

	bus.modemCallCounts["/org/freedesktop/ModemManager1/Modem/0"] = 1
	v, ok = p.Poll(context.Background())
	if !ok {
		t.Fatal("want poll ok")
	}
	if b, _ := v.AsBool(); !b {
		t.Fatal("want call present")
	}

	callsAfterFirstPoll := bus.modemPathsCalls
	p.Poll(context.Background())
	if bus.modemPathsCalls != callsAfterFirstPoll {
		t.Fatal("want modem enumeration cached, not repeated")
	}
}

func TestModemVoiceCallPresentRetriesFailedEnumeration(t *testing.T) {
	bus := &fakeSystemBus{errModemPaths: errFake}
	p, _ := New(CreationContext{Bus: bus}, model.VarDef{
		Kind:        model.KindBuiltinPoll,
		BuiltinPoll: model.BuiltinPollKind{BuiltinName: "modem_voice_call_present"},
	})
	if _, ok := p.Poll(context.Background()); ok {
		t.Fatal("want poll failure while enumeration fails")
	}

	bus.errModemPaths = nil
	bus.modemPaths = []string{"/modem/0"}
	bus.modemCallCounts = map[string]int{"/modem/0": 0}
	if _, ok := p.Poll(context.Background()); !ok {
		t.Fatal("want poll to succeed once enumeration recovers")
	}
}

func TestUnknownBuiltin(t *testing.T) {
	_, err := New(CreationContext{}, model.VarDef{
		Kind:        model.KindBuiltinPoll,
		BuiltinPoll: model.BuiltinPollKind{BuiltinName: "no_such_builtin"},
	})
	if err == nil {
		t.Fatal("want error for unknown builtin")
	}
}
