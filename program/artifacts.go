package program

import (
	"path/filepath"
	"strconv"
)

// ArtifactPaths holds the on-disk paths persisted state keeps for a
// program's Address: an optional compiled artifact and an optional
// directory of generated sources. Remove uses both to clean up; callers
// that only need one still get a stable, non-duplicated join.
type ArtifactPaths struct {
	Compiled string
	Arduino  string
}

// Artifacts builds the persisted-state paths for addr under root (the
// programs/ directory). Both paths may or may not exist on disk; callers
// are expected to ignore a not-exist error when deleting.
func Artifacts(root string, addr int) ArtifactPaths {
	id := strconv.Itoa(addr)
	return ArtifactPaths{
		Compiled: filepath.Join(root, id+".dll"),
		Arduino:  filepath.Join(root, "arduino", id),
	}
}
