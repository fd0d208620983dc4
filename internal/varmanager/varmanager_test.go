package varmanager

import (
	"testing"

	"waketimed-go/internal/model"
)

func mustVarName(t *testing.T, s string) model.VarName {
	t.Helper()
	n, err := model.NewVarName(s)
	if err != nil {
		t.Fatalf("NewVarName(%q): %v", s, err)
	}
	return n
}

func TestInactivePruning(t *testing.T) {
	// Definitions a (test_poll_bool) and b (test_inactive). After handling
	// is_active responses, vars == {a: Bool(true)}; b is gone from both
	// var_defs and (implicitly) poll dispatch.
	a := mustVarName(t, "a")
	b := mustVarName(t, "b")
	defs := map[model.VarName]model.VarDef{
		a: {Name: a, DataType: model.DataTypeBool, Kind: model.KindBuiltinPoll,
			BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_poll_bool"}},
		b: {Name: b, DataType: model.DataTypeBool, Kind: model.KindBuiltinPoll,
			BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_inactive"}},
	}
	m := New(defs)
	dispatched := m.Init()
	if len(dispatched) != 2 {
		t.Fatalf("want 2 dispatched defs, got %d", len(dispatched))
	}

	m.HandleReturnVarIsActive(a, true)
	m.HandleReturnVarIsActive(b, false)

	if !m.WaitlistActiveEmpty() {
		t.Fatal("want waitlist_active empty")
	}
	if _, ok := m.Defs()[b]; ok {
		t.Fatal("want b dropped from defs")
	}
	if _, ok := m.Defs()[a]; !ok {
		t.Fatal("want a kept in defs")
	}

	names := m.PollVars()
	if len(names) != 1 || names[0] != a {
		t.Fatalf("want poll dispatch = [a], got %v", names)
	}
	m.HandleReturnVarPoll(a, model.Bool(true), true)
	if !m.IsInitialized() {
		t.Fatal("want initialized after first poll batch drains")
	}
	if v := m.Vars()[a]; !v.Equal(model.Bool(true)) {
		t.Fatalf("vars[a] = %v, want true", v)
	}
	if _, ok := m.Vars()[b]; ok {
		t.Fatal("want no entry for b")
	}
}

func TestCategoryAggregation(t *testing.T) {
	// p (poll, categories=[cat]) and q = CategoryAny{cat}. After first poll
	// true, vars[q] == true; after polling p false, vars[q] == false.
	p := mustVarName(t, "p")
	cat := mustVarName(t, "cat")
	q := mustVarName(t, "q")
	defs := map[model.VarName]model.VarDef{
		p: {Name: p, DataType: model.DataTypeBool, Categories: []model.VarName{cat},
			Kind: model.KindBuiltinPoll, BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_poll_bool"}},
		q: {Name: q, DataType: model.DataTypeBool, Kind: model.KindCategoryAny,
			CategoryAny: model.CategoryAnyKind{CategoryName: cat}},
	}
	m := New(defs)
	m.Init()
	m.HandleReturnVarIsActive(p, true)

	m.PollVars()
	m.HandleReturnVarPoll(p, model.Bool(true), true)
	m.UpdateCategoryVars()
	if v := m.Vars()[q]; !v.Equal(model.Bool(true)) {
		t.Fatalf("vars[q] = %v, want true", v)
	}

	m.PollVars()
	m.HandleReturnVarPoll(p, model.Bool(false), true)
	m.UpdateCategoryVars()
	if v := m.Vars()[q]; !v.Equal(model.Bool(false)) {
		t.Fatalf("vars[q] = %v, want false", v)
	}
}

func TestHandleReturnVarPollReportsChangeOnlyWhenDifferent(t *testing.T) {
	a := mustVarName(t, "a")
	defs := map[model.VarName]model.VarDef{
		a: {Name: a, DataType: model.DataTypeBool, Kind: model.KindBuiltinPoll,
			BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_poll_bool"}},
	}
	m := New(defs)
	m.Init()
	m.PollVars()
	if changed := m.HandleReturnVarPoll(a, model.Bool(true), true); !changed {
		t.Fatal("want changed=true on first value")
	}
	m.PollVars()
	if changed := m.HandleReturnVarPoll(a, model.Bool(true), true); changed {
		t.Fatal("want changed=false on repeated identical value")
	}
	m.PollVars()
	if changed := m.HandleReturnVarPoll(a, model.Bool(false), true); !changed {
		t.Fatal("want changed=true when value flips")
	}
}

func TestHandleReturnVarPollNotOkKeepsPreviousValue(t *testing.T) {
	a := mustVarName(t, "a")
	defs := map[model.VarName]model.VarDef{
		a: {Name: a, DataType: model.DataTypeBool, Kind: model.KindBuiltinPoll,
			BuiltinPoll: model.BuiltinPollKind{BuiltinName: "test_poll_bool"}},
	}
	m := New(defs)
	m.Init()
	m.PollVars()
	m.HandleReturnVarPoll(a, model.Bool(true), true)

	m.PollVars()
	m.HandleReturnVarPoll(a, model.VarValue{}, false)
	if v := m.Vars()[a]; !v.Equal(model.Bool(true)) {
		t.Fatalf("vars[a] = %v, want retained true", v)
	}
}
