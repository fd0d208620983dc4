package probe

import (
	"context"

	"waketimed-go/internal/model"
)

func init() {
	RegisterBuiltin("test_const_bool", newTestConstBool)
	RegisterBuiltin("test_poll_bool", newTestPollBool)
	RegisterBuiltin("test_inactive", newTestInactive)
}

// testConstBool is always active and always polls to true. It exercises the
// var manager's polling path without depending on any external params.
type testConstBool struct{}

func newTestConstBool(CreationContext, model.VarDef) (Probe, error) {
	return testConstBool{}, nil
}

func (testConstBool) IsActive(context.Context) bool { return true }

func (testConstBool) Poll(context.Context) (model.VarValue, bool) {
	return model.Bool(true), true
}

// testPollBool is always active and polls to whatever bool the def's
// "return_value" param says (default false), letting a test drive a
// variable's value through a fixed definition.
type testPollBool struct {
	value bool
}

func newTestPollBool(_ CreationContext, def model.VarDef) (Probe, error) {
	v, _ := def.BuiltinPoll.Params["return_value"].(bool)
	return testPollBool{value: v}, nil
}

func (testPollBool) IsActive(context.Context) bool { return true }

func (p testPollBool) Poll(context.Context) (model.VarValue, bool) {
	return model.Bool(p.value), true
}

// testInactive reports IsActive() == false unconditionally, so tests can
// exercise the var manager's startup pruning of irrelevant variables.
type testInactive struct{}

func newTestInactive(CreationContext, model.VarDef) (Probe, error) {
	return testInactive{}, nil
}

func (testInactive) IsActive(context.Context) bool { return false }

func (testInactive) Poll(context.Context) (model.VarValue, bool) {
	return model.VarValue{}, false
}
