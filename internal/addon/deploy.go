package addon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	cp "github.com/otiai10/copy"

	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/logging"
)

var (
	// ErrHostVersionNotFound is returned when the requested version label
	// is not among the discovered instances.
	ErrHostVersionNotFound = errors.New("host application version not found")

	// ErrTargetPathNotFound is returned when an explicit target directory
	// does not exist.
	ErrTargetPathNotFound = errors.New("target directory does not exist")

	// ErrNoHostInstances is returned by all-mode when nothing was discovered.
	ErrNoHostInstances = errors.New("no host application instances found")

	// ErrNoWritableTarget is returned by all-mode when every instance failed.
	ErrNoWritableTarget = errors.New("add-on could not be deployed to any instance")
)

const addonDirPerm = 0o755

// Mode selects which instances receive the payload.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeVersion Mode = "version"
	ModePath    Mode = "path"
)

// Target is the deployment selection.
type Target struct {
	Mode    Mode
	Version string
	Path    string
}

// ParseTarget maps a prompt answer onto a target: "all" (or empty) selects
// every instance, anything else is a version label.
func ParseTarget(answer string) Target {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, string(ModeAll)) {
		return Target{Mode: ModeAll}
	}
	return Target{Mode: ModeVersion, Version: answer}
}

// InstanceResult is the outcome for one destination.
type InstanceResult struct {
	Instance    HostInstance
	Destination string
	Err         error
}

// Report collects per-destination outcomes.
type Report struct {
	Results []InstanceResult
	// Skipped is true when no payload was present in the bundle.
	Skipped bool
}

// Deployed returns the destinations that received the payload.
func (r *Report) Deployed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Destination)
		}
	}
	return out
}

// Err aggregates the per-destination failures, or returns nil.
func (r *Report) Err() error {
	var merr *multierror.Error
	for _, res := range r.Results {
		if res.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", res.Instance.VersionLabel, res.Err))
		}
	}
	return formatErrorOrNil(merr)
}

// Deployer copies the payload tree into host instances.
type Deployer struct {
	// Payload is the add-on directory inside the bundle.
	Payload string
}

// InstanceDestination returns where the add-on lives inside an instance.
func InstanceDestination(root string) string {
	return filepath.Join(root, "extensions", "user_default", bundle.AddonName)
}

// Deploy copies the payload according to target. base is the discovery
// directory for all and version modes.
func (d *Deployer) Deploy(ctx context.Context, base string, target Target) (*Report, error) {
	log := logging.FromContext(ctx)

	if info, err := os.Stat(d.Payload); err != nil || !info.IsDir() {
		log.Info().
			Str("component", "addon").
			Str("operation", "deploy").
			Str("payload", d.Payload).
			Msg("no add-on payload in bundle, skipping")
		return &Report{Skipped: true}, nil
	}

	switch target.Mode {
	case ModePath:
		return d.deployPath(ctx, target.Path)
	case ModeVersion:
		return d.deployVersion(ctx, base, target.Version)
	case ModeAll, "":
		return d.deployAll(ctx, base)
	default:
		return nil, fmt.Errorf("unknown deployment mode %q", target.Mode)
	}
}

func (d *Deployer) deployAll(ctx context.Context, base string) (*Report, error) {
	log := logging.FromContext(ctx)

	instances, err := Discover(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoHostInstances, base)
	}

	report := &Report{}
	for _, in := range instances {
		res := d.deployInstance(in)
		if res.Err != nil {
			log.Warn().
				Str("component", "addon").
				Str("operation", "deploy_all").
				Str("version", in.VersionLabel).
				Err(res.Err).
				Msg("deployment to instance failed, continuing")
		}
		report.Results = append(report.Results, res)
	}

	if len(report.Deployed()) == 0 {
		return report, fmt.Errorf("%w: %w", ErrNoWritableTarget, report.Err())
	}
	return report, nil
}

func (d *Deployer) deployVersion(ctx context.Context, base, label string) (*Report, error) {
	instances, err := Discover(ctx, base)
	if err != nil {
		return nil, err
	}

	for _, in := range instances {
		if in.VersionLabel != label {
			continue
		}
		res := d.deployInstance(in)
		report := &Report{Results: []InstanceResult{res}}
		if res.Err != nil {
			return report, res.Err
		}
		return report, nil
	}

	available := "none"
	if len(instances) > 0 {
		available = strings.Join(Labels(instances), ", ")
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrHostVersionNotFound, label, available)
}

func (d *Deployer) deployPath(ctx context.Context, dir string) (*Report, error) {
	log := logging.FromContext(ctx)

	dir = strings.TrimSpace(dir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrTargetPathNotFound, dir)
	}

	dest := filepath.Join(dir, bundle.AddonName)
	res := InstanceResult{
		Instance:    HostInstance{VersionLabel: "custom", RootPath: dir},
		Destination: dest,
		Err:         d.copyTo(dest),
	}

	log.Debug().
		Str("component", "addon").
		Str("operation", "deploy_path").
		Str("dst", dest).
		Msg("copied add-on to explicit path")

	report := &Report{Results: []InstanceResult{res}}
	return report, res.Err
}

func (d *Deployer) deployInstance(in HostInstance) InstanceResult {
	dest := InstanceDestination(in.RootPath)
	return InstanceResult{Instance: in, Destination: dest, Err: d.copyTo(dest)}
}

// copyTo replaces dest with a fresh copy of the payload.
func (d *Deployer) copyTo(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), addonDirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("removing previous add-on at %s: %w", dest, err)
	}

	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Shallow },
		OnDirExists: func(string, string) cp.DirExistsAction {
			return cp.Replace
		},
	}
	if err := cp.Copy(d.Payload, dest, opts); err != nil {
		return fmt.Errorf("copying add-on to %s: %w", dest, err)
	}
	return nil
}
