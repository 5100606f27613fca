package install

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rshade/dfm-setup/internal/platform"
)

// protectedPrefixes are the top-level directories that need sudo to write.
//
//nolint:gochecknoglobals // fixed policy
var protectedPrefixes = []string{"/opt", "/usr", "/Applications"}

// RequiresElevation reports whether installing into dir needs elevated
// rights. Only the first path segment is examined. Windows is never
// pre-detected; its own consent prompt appears at copy time.
func RequiresElevation(p platform.Profile, dir string) bool {
	if !p.IsUnix() {
		return false
	}

	clean := path.Clean(filepath.ToSlash(dir))
	if !strings.HasPrefix(clean, "/") {
		return false
	}

	top := "/" + strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)[0]
	for _, prefix := range protectedPrefixes {
		if top == prefix {
			return true
		}
	}
	return false
}
