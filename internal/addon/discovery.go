// Package addon discovers Blender installations and deploys the
// difference_machine add-on into them.
package addon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/rshade/dfm-setup/internal/logging"
)

// versionDir matches the version-labeled directories Blender creates under
// its user config base, e.g. "4.2" or "3.6.1".
var versionDir = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// HostInstance is one discovered Blender configuration directory.
type HostInstance struct {
	VersionLabel string
	RootPath     string
}

// Discover lists the version-labeled instances under base, oldest first.
// A missing base yields an empty result.
func Discover(ctx context.Context, base string) ([]HostInstance, error) {
	log := logging.FromContext(ctx)

	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().
				Str("component", "addon").
				Str("operation", "discover").
				Str("base", base).
				Msg("host config base does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}

	type ranked struct {
		instance HostInstance
		version  *semver.Version
	}
	found := make([]ranked, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !versionDir.MatchString(e.Name()) {
			continue
		}
		v, err := semver.NewVersion(e.Name())
		if err != nil {
			log.Debug().
				Str("component", "addon").
				Str("operation", "discover").
				Str("dir", e.Name()).
				Err(err).
				Msg("ignoring directory with unparsable version")
			continue
		}
		found = append(found, ranked{
			instance: HostInstance{VersionLabel: e.Name(), RootPath: filepath.Join(base, e.Name())},
			version:  v,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].version.LessThan(found[j].version)
	})

	instances := make([]HostInstance, len(found))
	for i, r := range found {
		instances[i] = r.instance
	}

	log.Debug().
		Str("component", "addon").
		Str("operation", "discover").
		Str("base", base).
		Int("count", len(instances)).
		Msg("host instances discovered")

	return instances, nil
}

// Labels returns the version labels of instances in order.
func Labels(instances []HostInstance) []string {
	labels := make([]string, len(instances))
	for i, in := range instances {
		labels[i] = in.VersionLabel
	}
	return labels
}
