// Package varmanager owns the variable definitions, the live variable
// value map, the category reverse index, and the two init/poll waitlists
// described by the daemon's data model. It holds no channel or goroutine of
// its own: internal/engine drives it and is responsible for turning its
// dispatch requests into WorkerMsg sends.
package varmanager

import "waketimed-go/internal/model"

// Manager is not safe for concurrent use; callers (internal/engine) must
// serialize access, which the Engine's single-threaded cooperative loop
// already guarantees.
type Manager struct {
	defs map[model.VarName]model.VarDef
	vars map[model.VarName]model.VarValue

	// categoryVars maps a category name to every variable name whose
	// Categories list contains it.
	categoryVars map[model.VarName][]model.VarName

	waitlistActive map[model.VarName]struct{}
	waitlistPoll   map[model.VarName]struct{}
}

// New builds a Manager from a resolved set of variable definitions (as
// returned by internal/defs.LoadVarDefs) and constructs the category
// reverse index.
func New(defs map[model.VarName]model.VarDef) *Manager {
	m := &Manager{
		defs:           make(map[model.VarName]model.VarDef, len(defs)),
		vars:           map[model.VarName]model.VarValue{},
		categoryVars:   map[model.VarName][]model.VarName{},
		waitlistActive: map[model.VarName]struct{}{},
		waitlistPoll:   map[model.VarName]struct{}{},
	}
	for name, def := range defs {
		m.defs[name] = def
	}
	m.rebuildCategoryIndex()
	return m
}

func (m *Manager) rebuildCategoryIndex() {
	for cat := range m.categoryVars {
		delete(m.categoryVars, cat)
	}
	for name, def := range m.defs {
		if def.Kind == model.KindCategoryAny {
			if _, ok := m.categoryVars[def.CategoryAny.CategoryName]; !ok {
				m.categoryVars[def.CategoryAny.CategoryName] = nil
			}
		}
		for _, cat := range def.Categories {
			m.categoryVars[cat] = append(m.categoryVars[cat], name)
		}
	}
}

// Init returns the BuiltinPoll definitions that need a probe instance and an
// activity check, and marks each as outstanding in waitlist_active.
func (m *Manager) Init() []model.VarDef {
	var out []model.VarDef
	for name, def := range m.defs {
		if def.Kind != model.KindBuiltinPoll {
			continue
		}
		out = append(out, def)
		m.waitlistActive[name] = struct{}{}
	}
	return out
}

// HandleReturnVarIsActive clears name from waitlist_active. If the probe
// reported inactive, the definition (and any value) is forgotten entirely.
func (m *Manager) HandleReturnVarIsActive(name model.VarName, active bool) {
	delete(m.waitlistActive, name)
	if !active {
		delete(m.defs, name)
		delete(m.vars, name)
		m.rebuildCategoryIndex()
	}
}

// WaitlistActiveEmpty reports whether every dispatched CallVarIsActive has
// returned.
func (m *Manager) WaitlistActiveEmpty() bool { return len(m.waitlistActive) == 0 }

// PollVars snapshots the current BuiltinPoll variable names into
// waitlist_poll and returns them for dispatch.
func (m *Manager) PollVars() []model.VarName {
	var out []model.VarName
	for name := range m.waitlistPoll {
		delete(m.waitlistPoll, name)
	}
	for name, def := range m.defs {
		if def.Kind != model.KindBuiltinPoll {
			continue
		}
		out = append(out, name)
		m.waitlistPoll[name] = struct{}{}
	}
	return out
}

// HandleReturnVarPoll clears name from waitlist_poll and, if ok, stores the
// new value. It reports whether the stored value actually changed, so the
// caller can log only on a genuine change.
func (m *Manager) HandleReturnVarPoll(name model.VarName, value model.VarValue, ok bool) (changed bool) {
	delete(m.waitlistPoll, name)
	if !ok {
		return false
	}
	prev, existed := m.vars[name]
	m.vars[name] = value
	return !existed || !prev.Equal(value)
}

// WaitlistPollEmpty reports whether every dispatched CallVarPoll has
// returned.
func (m *Manager) WaitlistPollEmpty() bool { return len(m.waitlistPoll) == 0 }

// IsInitialized reports whether every dispatched CallVarIsActive and
// CallVarPoll has returned.
func (m *Manager) IsInitialized() bool {
	return m.WaitlistActiveEmpty() && m.WaitlistPollEmpty()
}

// UpdateCategoryVars recomputes every CategoryAny variable's value as the
// disjunction of its member variables; absence of a member is treated as
// false.
func (m *Manager) UpdateCategoryVars() {
	for name, def := range m.defs {
		if def.Kind != model.KindCategoryAny {
			continue
		}
		any := false
		for _, member := range m.categoryVars[def.CategoryAny.CategoryName] {
			if v, ok := m.vars[member]; ok {
				if b, isBool := v.AsBool(); isBool && b {
					any = true
					break
				}
			}
		}
		m.vars[name] = model.Bool(any)
	}
}

// Vars returns the live variable map. Callers must treat it as read-only;
// the Engine's single-threaded loop is the only writer.
func (m *Manager) Vars() map[model.VarName]model.VarValue { return m.vars }

// Defs returns the live definition map, for diagnostics and tests.
func (m *Manager) Defs() map[model.VarName]model.VarDef { return m.defs }
