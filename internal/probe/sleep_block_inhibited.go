package probe

import (
	"context"
	"regexp"

	"waketimed-go/internal/model"
)

// sleepInhibitorPattern matches "sleep" as a whole colon-delimited field of
// logind's inhibitor "what" string (e.g. "shutdown:sleep" or "sleep"), not as
// a substring of some other field.
var sleepInhibitorPattern = regexp.MustCompile(`(^|:)sleep($|:)`)

func init() {
	RegisterBuiltin("sleep_block_inhibited", newSleepBlockInhibited)
}

type sleepBlockInhibited struct {
	bus SystemBus
}

func newSleepBlockInhibited(cc CreationContext, _ model.VarDef) (Probe, error) {
	return &sleepBlockInhibited{bus: cc.Bus}, nil
}

// IsActive is unconditional: the inhibitor list is always queryable,
// regardless of which seats or sessions exist.
func (p *sleepBlockInhibited) IsActive(ctx context.Context) bool {
	return true
}

func (p *sleepBlockInhibited) Poll(ctx context.Context) (model.VarValue, bool) {
	what, err := p.bus.Inhibitors(ctx)
	if err != nil {
		return model.VarValue{}, false
	}
	return model.Bool(sleepInhibitorPattern.MatchString(what)), true
}
