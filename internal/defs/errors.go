package defs

import "waketimed-go/errcode"

func errDefInvalidKind(kind string) error {
	return &errcode.E{C: errcode.DefInvalid, Op: "defs.parse", Msg: "unrecognized kind: " + kind}
}

func errParse(path string, cause error) error {
	return &errcode.E{C: errcode.DefParseError, Op: "defs.parse", Msg: path, Err: cause}
}
