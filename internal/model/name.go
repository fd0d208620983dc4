// Package model defines the core data structures shared across every layer
// of the daemon: variable and rule names, values, and definitions. These
// types represent the canonical in-memory form of the evaluation pipeline's
// data model; every other internal package depends on this package and
// nothing here depends on any other internal package.
package model

import (
	"regexp"

	"waketimed-go/errcode"
)

const (
	maxVarNameLen  = 40
	maxRuleNameLen = 80
)

var (
	varNamePattern  = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)
	ruleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
)

// VarName is a validated variable identifier, e.g. "login_seat_busy".
type VarName string

// NewVarName validates raw and returns it as a VarName, or the errcode.Code
// describing why it was rejected (Empty, TooLong, DisallowedCharacters,
// IncorrectPattern).
func NewVarName(raw string) (VarName, error) {
	if err := validateName(raw, maxVarNameLen, varNamePattern); err != nil {
		return "", err
	}
	return VarName(raw), nil
}

// RuleName is a validated stayup rule identifier, e.g. "stayup_on_call".
type RuleName string

// NewRuleName validates raw and returns it as a RuleName, using the same
// error taxonomy as NewVarName but a different pattern/length (rules may
// start with a letter only, and are allowed a longer maximum length).
func NewRuleName(raw string) (RuleName, error) {
	if err := validateName(raw, maxRuleNameLen, ruleNamePattern); err != nil {
		return "", err
	}
	return RuleName(raw), nil
}

func validateName(raw string, maxLen int, pattern *regexp.Regexp) error {
	if raw == "" {
		return errcode.NameEmpty
	}
	if len(raw) > maxLen {
		return errcode.NameTooLong
	}
	for _, r := range raw {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return errcode.NameDisallowedCharacters
		}
	}
	if !pattern.MatchString(raw) {
		return errcode.NameIncorrectPattern
	}
	return nil
}
