// Package bundle defines the on-disk layout shared by the package builder,
// which produces it, and the installer, which consumes it:
//
//	<root>/forester/{linux,macos,windows}/bin/forester[.exe]
//	<root>/addons/blender/difference_machine/...
//	<root>/install scripts, README.txt
package bundle

import (
	"path/filepath"

	"github.com/rshade/dfm-setup/internal/platform"
)

const (
	// ForesterDir holds the per-platform executables.
	ForesterDir = "forester"
	// AddonsDir holds the editor-extension payloads.
	AddonsDir = "addons"
	// ExecutableBase is the executable name without extension.
	ExecutableBase = "forester"
	// AddonName is the directory name of the Blender add-on payload.
	AddonName = "difference_machine"
	// HostAppDir groups add-ons by host application inside AddonsDir.
	HostAppDir = "blender"
	// ReadmeName is the generated readme at the bundle root.
	ReadmeName = "README.txt"
)

// PlatformDirs lists the per-platform directories under ForesterDir.
//
//nolint:gochecknoglobals // fixed layout
var PlatformDirs = []platform.OS{platform.OSLinux, platform.OSMacOS, platform.OSWindows}

// Binary returns the staged executable path for profile inside root.
func Binary(root string, p platform.Profile) string {
	return filepath.Join(root, ForesterDir, string(p.OS), "bin", p.ExecutableName(ExecutableBase))
}

// AddonPayload returns the add-on payload directory inside root.
func AddonPayload(root string) string {
	return filepath.Join(root, AddonsDir, HostAppDir, AddonName)
}
