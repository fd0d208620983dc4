package probe

import (
	"context"
	"sync"

	"waketimed-go/internal/model"
)

func init() {
	RegisterBuiltin("modem_voice_call_present", newModemVoiceCallPresent)
}

// modemVoiceCallPresent caches the modem object path list after the first
// successful enumeration, since modems don't appear or disappear during a
// normal run and re-enumerating on every poll would be wasted bus traffic.
// If the first enumeration fails, the next poll retries it.
type modemVoiceCallPresent struct {
	bus SystemBus

	mu    sync.Mutex
	paths []string
}

func newModemVoiceCallPresent(cc CreationContext, _ model.VarDef) (Probe, error) {
	return &modemVoiceCallPresent{bus: cc.Bus}, nil
}

func (p *modemVoiceCallPresent) IsActive(ctx context.Context) bool {
	paths, err := p.bus.ModemObjectPaths(ctx)
	return err == nil && len(paths) > 0
}

func (p *modemVoiceCallPresent) Poll(ctx context.Context) (model.VarValue, bool) {
	paths, ok := p.cachedPaths(ctx)
	if !ok {
		return model.VarValue{}, false
	}
	for _, path := range paths {
		n, err := p.bus.ModemVoiceCallCount(ctx, path)
		if err != nil {
			return model.VarValue{}, false
		}
		if n > 0 {
			return model.Bool(true), true
		}
	}
	return model.Bool(false), true
}

func (p *modemVoiceCallPresent) cachedPaths(ctx context.Context) ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paths != nil {
		return p.paths, true
	}
	paths, err := p.bus.ModemObjectPaths(ctx)
	if err != nil {
		return nil, false
	}
	p.paths = paths
	return paths, true
}
