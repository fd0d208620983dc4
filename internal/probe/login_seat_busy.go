package probe

import (
	"context"

	"waketimed-go/internal/model"
)

func init() {
	RegisterBuiltin("login_seat_busy", newLoginSeatBusy)
}

type loginSeatBusy struct {
	bus SystemBus
}

func newLoginSeatBusy(cc CreationContext, _ model.VarDef) (Probe, error) {
	return &loginSeatBusy{bus: cc.Bus}, nil
}

func (p *loginSeatBusy) IsActive(ctx context.Context) bool {
	ok, err := p.bus.SeatExists(ctx)
	return err == nil && ok
}

func (p *loginSeatBusy) Poll(ctx context.Context) (model.VarValue, bool) {
	idle, err := p.bus.SeatIdleHint(ctx)
	if err != nil {
		return model.VarValue{}, false
	}
	return model.Bool(!idle), true
}
