package defs

import (
	"io/fs"
	"os"
)

// Source is one level of a definition directory stack. Label identifies the
// source in override/void reports (e.g. "embedded" or a real directory
// path); FS provides its files.
type Source struct {
	Label string
	FS    fs.FS
}

// DirSource builds a Source from a real directory on disk. Missing
// directories are tolerated: Stat is checked lazily when the loader walks
// the source, not here, so a configured-but-absent override directory is
// simply treated as empty.
func DirSource(path string) Source {
	return Source{Label: path, FS: os.DirFS(path)}
}
