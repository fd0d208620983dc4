package model

import "waketimed-go/errcode"

// DataType names the type a VarDef's values will hold. Bool is the only
// implemented type today (see VarValue).
type DataType string

const DataTypeBool DataType = "bool"

// VarDefKind discriminates the two ways a variable's value can be produced.
type VarDefKind int

const (
	// KindBuiltinPoll means the value comes from a named probe (internal/probe).
	KindBuiltinPoll VarDefKind = iota
	// KindCategoryAny means the value is the disjunction of every variable
	// tagged with a given category name.
	KindCategoryAny
)

// BuiltinPollKind is the payload for a VarDef of KindBuiltinPoll.
type BuiltinPollKind struct {
	BuiltinName string
	Params      map[string]any
}

// CategoryAnyKind is the payload for a VarDef of KindCategoryAny.
type CategoryAnyKind struct {
	CategoryName VarName
}

// VarDef describes one variable definition, as loaded from YAML (see
// internal/defs) or constructed by a test.
type VarDef struct {
	Name       VarName
	DataType   DataType
	Categories []VarName

	Kind         VarDefKind
	BuiltinPoll  BuiltinPollKind
	CategoryAny  CategoryAnyKind
}

// Validate checks structural invariants that aren't already enforced by the
// field types (name validity is checked by the caller via NewVarName, since
// the raw name string originates from the definition file's stem).
func (d VarDef) Validate() error {
	if d.DataType != DataTypeBool {
		return errcode.DefInvalid
	}
	switch d.Kind {
	case KindBuiltinPoll:
		if d.BuiltinPoll.BuiltinName == "" {
			return errcode.DefInvalid
		}
	case KindCategoryAny:
		if d.CategoryAny.CategoryName == "" {
			return errcode.DefInvalid
		}
	default:
		return errcode.DefInvalid
	}
	return nil
}
