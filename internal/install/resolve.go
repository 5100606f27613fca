// Package install resolves where the forester executable goes, decides
// whether writing there needs elevated rights, and stages the executable.
package install

import (
	"path/filepath"
	"strings"

	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/platform"
)

const (
	// ProductName is the install directory name.
	ProductName = "Forester"

	windowsProgramFiles = `C:\Program Files`
)

// Resolved is the destination of one installer run.
type Resolved struct {
	// InstallDir is the product directory; persisted to setup.cfg.
	InstallDir string
	// BinaryDestination is <InstallDir>/bin/<executable>.
	BinaryDestination string
	// AddonBaseDirectory is the host application's per-user config base,
	// where version-labeled instance directories live.
	AddonBaseDirectory string
	// RequiresElevation is true when writing InstallDir needs sudo.
	RequiresElevation bool
}

// DefaultInstallDir returns the per-OS default install directory.
func DefaultInstallDir(p platform.Profile, env platform.Env) string {
	switch p.OS {
	case platform.OSLinux:
		return "/opt/" + ProductName
	case platform.OSMacOS:
		return "/Applications/" + ProductName
	case platform.OSWindows:
		return windowsProgramFiles + `\` + ProductName
	default:
		return filepath.Join(env.Home, ProductName)
	}
}

// AddonBaseDir returns the directory holding Blender's version-labeled
// per-user configuration directories.
func AddonBaseDir(p platform.Profile, env platform.Env) string {
	switch p.OS {
	case platform.OSMacOS:
		return filepath.Join(env.Home, "Library", "Application Support", "Blender")
	case platform.OSWindows:
		return joinPath(p, env.AppData, "Blender Foundation", "Blender")
	default:
		if env.XDGConfigHome != "" {
			return filepath.Join(env.XDGConfigHome, "blender")
		}
		return filepath.Join(env.Home, ".config", "blender")
	}
}

// Resolve computes the destination. A non-empty override replaces the
// default install directory verbatim; nothing is checked on disk.
func Resolve(p platform.Profile, env platform.Env, override string) Resolved {
	dir := DefaultInstallDir(p, env)
	if o := strings.TrimSpace(override); o != "" {
		dir = o
	}

	return Resolved{
		InstallDir:         dir,
		BinaryDestination:  joinPath(p, dir, "bin", p.ExecutableName(bundle.ExecutableBase)),
		AddonBaseDirectory: AddonBaseDir(p, env),
		RequiresElevation:  RequiresElevation(p, dir),
	}
}

// joinPath joins with the target platform's separator so Windows
// destinations keep backslashes even when computed elsewhere.
func joinPath(p platform.Profile, elem ...string) string {
	if p.IsWindows() && filepath.Separator != '\\' {
		parts := make([]string, 0, len(elem))
		for _, e := range elem {
			if e = strings.TrimRight(e, `\/`); e != "" {
				parts = append(parts, e)
			}
		}
		return strings.Join(parts, `\`)
	}
	return filepath.Join(elem...)
}
