package main

import (
	"os"
	"strconv"
	"strings"
)

// chassisTypesByDMICode maps the subset of SMBIOS/DMI chassis-type codes
// (see /sys/class/dmi/id/chassis_type) this daemon's gate cares about to the
// lowercase names operators list in WAKETIMED_ALLOWED_CHASSIS_TYPES.
var chassisTypesByDMICode = map[int]string{
	3:  "desktop",
	8:  "laptop",
	9:  "laptop",
	10: "notebook",
	11: "handheld",
	14: "notebook",
	30: "tablet",
	31: "convertible",
	32: "detachable",
}

// detectChassisType reads the host's DMI chassis type. Detection itself is an
// external collaborator's concern; this is the reference implementation
// cmd/waketimed wires by default. An unreadable or unrecognized code yields
// "unknown", which only ever matches an explicit "unknown" or the "all"
// entry in the allowed list.
func detectChassisType() string {
	raw, err := os.ReadFile("/sys/class/dmi/id/chassis_type")
	if err != nil {
		return "unknown"
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return "unknown"
	}
	if name, ok := chassisTypesByDMICode[code]; ok {
		return name
	}
	return "unknown"
}
