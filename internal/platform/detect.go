package platform

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/rshade/dfm-setup/internal/logging"
)

// Detect maps a raw kernel name (uname -s, GOOS) and machine name
// (uname -m, GOARCH) to a Profile. Unrecognized values map to unknown.
func Detect(kernel, machine string) Profile {
	return Profile{OS: normalizeOS(kernel), Arch: normalizeArch(machine)}
}

func normalizeOS(kernel string) OS {
	k := strings.ToLower(strings.TrimSpace(kernel))
	switch {
	case k == "linux":
		return OSLinux
	case k == "darwin":
		return OSMacOS
	case k == "windows", k == "windows_nt",
		strings.HasPrefix(k, "mingw"),
		strings.HasPrefix(k, "msys"),
		strings.HasPrefix(k, "cygwin"):
		return OSWindows
	default:
		return OSUnknown
	}
}

func normalizeArch(machine string) Arch {
	m := strings.ToLower(strings.TrimSpace(machine))
	switch {
	case m == "x86_64", m == "amd64", m == "x64":
		return ArchX64
	case m == "arm64", m == "aarch64", strings.HasPrefix(m, "armv8"):
		return ArchARM64
	default:
		return ArchUnknown
	}
}

// InfoFunc returns host information. It matches host.InfoWithContext.
type InfoFunc func(ctx context.Context) (*host.InfoStat, error)

// HostDetector detects the running platform.
type HostDetector struct {
	info InfoFunc
}

// NewHostDetector returns a detector backed by gopsutil.
func NewHostDetector() *HostDetector {
	return &HostDetector{info: host.InfoWithContext}
}

// Detect reads the raw identifiers from gopsutil and maps them. If gopsutil
// fails or reports nothing, the Go runtime identifiers are used instead.
func (d *HostDetector) Detect(ctx context.Context) Profile {
	log := logging.FromContext(ctx)

	kernel, machine := runtime.GOOS, runtime.GOARCH
	if d.info != nil {
		stat, err := d.info(ctx)
		switch {
		case err != nil:
			log.Debug().
				Str("component", "platform").
				Err(err).
				Msg("host info unavailable, using runtime identifiers")
		case stat != nil:
			if stat.OS != "" {
				kernel = stat.OS
			}
			if stat.KernelArch != "" {
				machine = stat.KernelArch
			}
		}
	}

	profile := Detect(kernel, machine)
	log.Debug().
		Str("component", "platform").
		Str("kernel", kernel).
		Str("machine", machine).
		Str("profile", profile.String()).
		Msg("platform detected")

	return profile
}

// EnvFromOS captures the environment inputs of the current process.
func EnvFromOS() (Env, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Env{}, err
	}
	return Env{
		Home:          home,
		AppData:       os.Getenv("APPDATA"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
	}, nil
}
