package probe

import (
	"context"

	"waketimed-go/internal/model"
)

func init() {
	RegisterBuiltin("login_session_busy", newLoginSessionBusy)
}

type loginSessionBusy struct {
	bus SystemBus
}

func newLoginSessionBusy(cc CreationContext, _ model.VarDef) (Probe, error) {
	return &loginSessionBusy{bus: cc.Bus}, nil
}

func (p *loginSessionBusy) IsActive(ctx context.Context) bool {
	ok, err := p.bus.SessionExists(ctx)
	return err == nil && ok
}

func (p *loginSessionBusy) Poll(ctx context.Context) (model.VarValue, bool) {
	idle, err := p.bus.SessionIdleHint(ctx)
	if err != nil {
		return model.VarValue{}, false
	}
	return model.Bool(!idle), true
}
