// Package platform maps raw kernel and machine identifiers onto the closed
// set of platforms the installer understands, and captures the environment
// inputs used to compute per-user directories.
package platform

// OS is the normalized operating system.
type OS string

// Arch is the normalized CPU architecture.
type Arch string

const (
	OSLinux   OS = "linux"
	OSMacOS   OS = "macos"
	OSWindows OS = "windows"
	OSUnknown OS = "unknown"

	ArchX64     Arch = "x64"
	ArchARM64   Arch = "arm64"
	ArchUnknown Arch = "unknown"
)

// Profile is the detected platform. It is derived once at startup and
// passed by value afterwards.
type Profile struct {
	OS   OS
	Arch Arch
}

// String returns "os/arch".
func (p Profile) String() string {
	return string(p.OS) + "/" + string(p.Arch)
}

// IsWindows reports whether the profile is Windows.
func (p Profile) IsWindows() bool {
	return p.OS == OSWindows
}

// IsUnix reports whether the profile uses unix permissions and path rules.
// Unknown kernels are treated as unix-like.
func (p Profile) IsUnix() bool {
	return p.OS != OSWindows
}

// ExecutableName returns the file name of an executable on this platform.
func (p Profile) ExecutableName(base string) string {
	if p.IsWindows() {
		return base + ".exe"
	}
	return base
}

// Env holds the environment-derived inputs for default directories.
type Env struct {
	Home          string // user home directory
	AppData       string // %APPDATA% (Windows roaming profile)
	XDGConfigHome string // $XDG_CONFIG_HOME, may be empty
}
