package embedded

import (
	"embed"
	"io/fs"
)

//go:embed vars/*.yaml
var varsFS embed.FS

//go:embed rules/*.yaml
var rulesFS embed.FS

// VarDefs returns the embedded default variable definitions, rooted so its
// contents appear at "." rather than "vars/".
func VarDefs() fs.FS {
	sub, err := fs.Sub(varsFS, "vars")
	if err != nil {
		panic(err)
	}
	return sub
}

// RuleDefs returns the embedded default rule definitions, rooted the same
// way as VarDefs.
func RuleDefs() fs.FS {
	sub, err := fs.Sub(rulesFS, "rules")
	if err != nil {
		panic(err)
	}
	return sub
}
