package install

import (
	"os"
	"path/filepath"
)

// PreflightResult reports whether the install directory looks writable.
type PreflightResult struct {
	// Ancestor is the nearest existing directory at or above the target.
	Ancestor string
	// Writable is true when Ancestor can be written by the current user.
	Writable bool
}

// Preflight inspects the nearest existing ancestor of dir without creating
// anything. It is advisory: copy errors remain the authoritative failure.
func Preflight(dir string) PreflightResult {
	current := filepath.Clean(dir)
	for {
		if info, err := os.Stat(current); err == nil && info.IsDir() {
			return PreflightResult{Ancestor: current, Writable: writable(current)}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return PreflightResult{Ancestor: current, Writable: false}
		}
		current = parent
	}
}
