// Package config parses the environment-variable surface the daemon's
// tunables are published through. Full config loading (YAML plus
// environment overrides, beyond these six variables) is an external
// collaborator's job; this package implements exactly the six variables
// whose shape the core itself depends on.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the parsed, validated environment surface.
type Config struct {
	PollVariableInterval   time.Duration
	StartupAwakeTime       time.Duration
	MinimumAwakeTime       time.Duration
	StayupClearedAwakeTime time.Duration
	AllowedChassisTypes    []string
	TestMode               bool
}

const (
	envPollVariableInterval   = "WAKETIMED_POLL_VARIABLE_INTERVAL"
	envStartupAwakeTime       = "WAKETIMED_STARTUP_AWAKE_TIME"
	envMinimumAwakeTime       = "WAKETIMED_MINIMUM_AWAKE_TIME"
	envStayupClearedAwakeTime = "WAKETIMED_STAYUP_CLEARED_AWAKE_TIME"
	envAllowedChassisTypes    = "WAKETIMED_ALLOWED_CHASSIS_TYPES"
	envTestMode               = "WAKETIMED_TEST_MODE"
)

// defaults provide a one-minute poll interval, a minute of guaranteed awake
// time at startup and after resume, and no extra grace period once stayup
// clears.
var defaults = Config{
	PollVariableInterval:   60 * time.Second,
	StartupAwakeTime:       60 * time.Second,
	MinimumAwakeTime:       60 * time.Second,
	StayupClearedAwakeTime: 0,
	AllowedChassisTypes:    []string{"all"},
}

// FromEnv reads and validates the six WAKETIMED_* environment variables,
// falling back to defaults for any that are unset.
func FromEnv() (Config, error) {
	cfg := defaults

	if v, ok := os.LookupEnv(envPollVariableInterval); ok {
		ms, err := parsePositiveMs(envPollVariableInterval, v)
		if err != nil {
			return Config{}, err
		}
		cfg.PollVariableInterval = ms
	}
	if v, ok := os.LookupEnv(envStartupAwakeTime); ok {
		ms, err := parseNonNegativeMs(envStartupAwakeTime, v)
		if err != nil {
			return Config{}, err
		}
		cfg.StartupAwakeTime = ms
	}
	if v, ok := os.LookupEnv(envMinimumAwakeTime); ok {
		ms, err := parseNonNegativeMs(envMinimumAwakeTime, v)
		if err != nil {
			return Config{}, err
		}
		cfg.MinimumAwakeTime = ms
	}
	if v, ok := os.LookupEnv(envStayupClearedAwakeTime); ok {
		ms, err := parseNonNegativeMs(envStayupClearedAwakeTime, v)
		if err != nil {
			return Config{}, err
		}
		cfg.StayupClearedAwakeTime = ms
	}
	if v, ok := os.LookupEnv(envAllowedChassisTypes); ok {
		cfg.AllowedChassisTypes = splitCSV(v)
	}
	if v, ok := os.LookupEnv(envTestMode); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %q is not a boolean: %w", envTestMode, v, err)
		}
		cfg.TestMode = b
	}

	return cfg, nil
}

func parsePositiveMs(name, raw string) (time.Duration, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s: %q must be a positive integer (milliseconds)", name, raw)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func parseNonNegativeMs(name, raw string) (time.Duration, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: %s: %q must be a non-negative integer (milliseconds)", name, raw)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChassisAllowed reports whether chassisType passes the gate: "all" in the
// allowed list always passes, regardless of the detected type.
func ChassisAllowed(allowed []string, chassisType string) bool {
	for _, a := range allowed {
		if a == "all" || strings.EqualFold(a, chassisType) {
			return true
		}
	}
	return false
}
