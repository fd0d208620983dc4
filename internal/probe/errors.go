package probe

import "waketimed-go/errcode"

func unknownBuiltinErr(name string) error {
	return &errcode.E{C: errcode.ProbeConstructionError, Op: "probe.New", Msg: "unknown builtin: " + name}
}
