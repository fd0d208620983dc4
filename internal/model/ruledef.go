package model

import "waketimed-go/errcode"

// RuleDefKind discriminates the ways a rule's stayup status can be computed.
// StayupBool is the only kind implemented today.
type RuleDefKind int

const (
	KindStayupBool RuleDefKind = iota
)

// StayupBoolKind is the payload for a RuleDef of KindStayupBool: a boolean
// expression in the embedded scripting language (internal/rulemanager),
// whose free identifiers reference variables by name.
type StayupBoolKind struct {
	ValueScript string
}

// RuleDef describes one stayup rule definition.
type RuleDef struct {
	Name RuleName
	Kind RuleDefKind

	StayupBool StayupBoolKind
}

func (d RuleDef) Validate() error {
	switch d.Kind {
	case KindStayupBool:
		if d.StayupBool.ValueScript == "" {
			return errcode.DefInvalid
		}
	default:
		return errcode.DefInvalid
	}
	return nil
}
