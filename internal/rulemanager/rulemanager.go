// Package rulemanager compiles each stayup rule's value_script once at
// startup and recomputes every rule's boolean stayup status once per Engine
// tick. It owns no channel or goroutine of its own: internal/engine drives
// it the same way it drives internal/varmanager.
package rulemanager

import (
	"waketimed-go/errcode"
	"waketimed-go/internal/model"

	"github.com/dop251/goja"
)

// Manager is not safe for concurrent use; the Engine's single-threaded
// cooperative loop is its only caller.
type Manager struct {
	programs map[model.RuleName]*goja.Program
	vm       *goja.Runtime

	stayupValues map[model.RuleName]bool
}

// New compiles every rule's value_script into a goja.Program. A compile
// error is fatal and is returned immediately; no partial Manager is handed
// back.
func New(defs map[model.RuleName]model.RuleDef) (*Manager, error) {
	m := &Manager{
		programs:     make(map[model.RuleName]*goja.Program, len(defs)),
		vm:           goja.New(),
		stayupValues: map[model.RuleName]bool{},
	}
	for name, def := range defs {
		switch def.Kind {
		case model.KindStayupBool:
			prog, err := goja.Compile(string(name), def.StayupBool.ValueScript, false)
			if err != nil {
				return nil, &errcode.E{C: errcode.ScriptCompileError, Op: "rulemanager.New", Msg: string(name), Err: err}
			}
			m.programs[name] = prog
		default:
			return nil, &errcode.E{C: errcode.DefInvalid, Op: "rulemanager.New", Msg: string(name)}
		}
	}
	return m, nil
}

// ResetScriptScope rebuilds the script runtime's global scope from the
// current variable map, binding each variable name to its current value as
// a constant for this tick. Only Bool values exist today; a future VarValue
// variant would need a case here.
func (m *Manager) ResetScriptScope(vars map[model.VarName]model.VarValue) {
	m.vm = goja.New()
	for name, v := range vars {
		if b, ok := v.AsBool(); ok {
			_ = m.vm.Set(string(name), b)
		}
	}
}

// ComputeStayupValues evaluates every compiled rule against the scope set up
// by the most recent ResetScriptScope call. A rule whose script fails to
// evaluate (missing identifier, type error) is dropped from the result
// entirely rather than recorded as false, contributing nothing to
// is_stayup_active. onEvalError, if non-nil, is called once per such rule
// so the caller can log it at warn level.
func (m *Manager) ComputeStayupValues(onEvalError func(model.RuleName, error)) {
	for name := range m.stayupValues {
		delete(m.stayupValues, name)
	}
	for name, prog := range m.programs {
		v, err := m.vm.RunProgram(prog)
		if err != nil {
			if onEvalError != nil {
				onEvalError(name, err)
			}
			continue
		}
		b, ok := v.Export().(bool)
		if !ok {
			if onEvalError != nil {
				onEvalError(name, &errcode.E{C: errcode.ScriptEvaluationError, Op: "rulemanager.ComputeStayupValues", Msg: string(name) + ": script did not return a bool"})
			}
			continue
		}
		m.stayupValues[name] = b
	}
}

// IsStayupActive reports whether any rule's most recently computed stayup
// value is true.
func (m *Manager) IsStayupActive() bool {
	for _, v := range m.stayupValues {
		if v {
			return true
		}
	}
	return false
}

// StayupValues returns the current rule-name -> stayup-value map. Callers
// must treat it as read-only.
func (m *Manager) StayupValues() map[model.RuleName]bool { return m.stayupValues }
