// Package setup runs an install session: it walks the installer steps in
// order, collecting a result for each so the user sees every outcome even
// when a step fails.
package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rshade/dfm-setup/internal/addon"
	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/config"
	"github.com/rshade/dfm-setup/internal/install"
	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/platform"
	"github.com/rshade/dfm-setup/internal/proc"
)

// ErrSetupFailed is returned when a critical step failed.
var ErrSetupFailed = errors.New("setup failed: one or more critical steps failed")

// StepStatus represents the outcome of a single step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step did not apply or was declined.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// String returns the lowercase status name.
func (s StepStatus) String() string {
	switch s {
	case StepSuccess:
		return "success"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	case StepError:
		return "error"
	default:
		return "unknown"
	}
}

// StepResult describes the outcome of executing a single step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// Result is the aggregate outcome of a session.
type Result struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool

	Resolved  install.Resolved
	SetupFile string
	// Deployed lists the add-on destinations that were written.
	Deployed []string
}

// Options configure a session.
type Options struct {
	// BundleDir is the root of the unpacked installation bundle.
	BundleDir string
	Profile   platform.Profile
	Env       platform.Env
	Prompter  Prompter
	Runner    proc.Runner
	// SetupFile overrides ~/.dfm-setup/setup.cfg.
	SetupFile string
	// OnStep is called as each step completes.
	OnStep func(StepResult)
}

type session struct {
	opts   Options
	result *Result
}

// Run executes the install steps. A missing executable or a failed
// executable install stops the session; every other failure is recorded
// and the remaining steps still run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Prompter == nil {
		opts.Prompter = Defaults{}
	}
	if opts.SetupFile == "" {
		opts.SetupFile = config.SetupFilePath(opts.Env.Home)
	}

	s := &session{opts: opts, result: &Result{SetupFile: opts.SetupFile}}
	err := s.run(ctx)

	for _, step := range s.result.Steps {
		if step.Status == StepError && step.Critical {
			s.result.HasErrors = true
		}
		if step.Status == StepWarning {
			s.result.HasWarnings = true
		}
	}

	if err != nil {
		return s.result, err
	}
	if s.result.HasErrors {
		return s.result, s.firstCritical()
	}
	return s.result, nil
}

func (s *session) run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	p := s.opts.Profile

	s.record(ctx, StepResult{
		Name:    "Platform",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Detected platform %s", p),
	})

	src := bundle.Binary(s.opts.BundleDir, p)
	if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
		s.record(ctx, StepResult{
			Name:     "Bundle",
			Status:   StepError,
			Message:  fmt.Sprintf("No forester executable for %s in bundle (expected %s)", p, src),
			Critical: true,
			Err:      fmt.Errorf("%w: %s", install.ErrMissingArtifact, src),
		})
		return nil
	}
	s.record(ctx, StepResult{Name: "Bundle", Status: StepSuccess, Message: "Found " + src})

	resolved, err := s.resolveDestination(ctx)
	if err != nil {
		return err
	}
	s.result.Resolved = resolved

	s.preflight(ctx, resolved)

	installer := &install.BinaryInstaller{
		Runner: s.opts.Runner,
		Stager: install.NewStager(p, resolved, s.opts.Runner),
	}
	bin, err := installer.Install(ctx, src, resolved)
	if err != nil {
		s.record(ctx, StepResult{
			Name:     "Executable",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to install forester: %v", err),
			Critical: true,
			Err:      err,
		})
		return nil
	}
	s.record(ctx, StepResult{
		Name:    "Executable",
		Status:  StepSuccess,
		Message: "Installed forester to " + bin.Destination,
	})

	if bin.Verified {
		s.record(ctx, StepResult{
			Name:    "Verification",
			Status:  StepSuccess,
			Message: fmt.Sprintf("forester %s: %s", bin.VerifyFlag, bin.VerifyOutput),
		})
	} else {
		s.record(ctx, StepResult{
			Name:    "Verification",
			Status:  StepWarning,
			Message: "forester did not answer --version or --help; it may still work",
		})
	}

	if err = s.deployAddons(ctx, resolved); err != nil {
		return err
	}

	if err = config.WriteInstallPath(s.opts.SetupFile, resolved.InstallDir); err != nil {
		log.Warn().
			Str("component", "setup").
			Str("operation", "write_config").
			Err(err).
			Msg("setup config not written")
		s.record(ctx, StepResult{
			Name:    "Config",
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not write %s: %v", s.opts.SetupFile, err),
			Err:     err,
		})
		return nil
	}
	recorded, err := config.ReadInstallPath(s.opts.SetupFile)
	if err != nil || recorded != resolved.InstallDir {
		s.record(ctx, StepResult{
			Name:    "Config",
			Status:  StepWarning,
			Message: fmt.Sprintf("%s was written but does not read back as %s", s.opts.SetupFile, resolved.InstallDir),
			Err:     err,
		})
		return nil
	}
	s.record(ctx, StepResult{
		Name:    "Config",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Recorded install path %s in %s", recorded, s.opts.SetupFile),
	})
	return nil
}

func (s *session) resolveDestination(ctx context.Context) (install.Resolved, error) {
	p := s.opts.Profile
	def := install.DefaultInstallDir(p, s.opts.Env)

	answer, err := s.opts.Prompter.Ask(KeyInstallDir, "Install directory for forester", def)
	if err != nil {
		return install.Resolved{}, err
	}
	resolved := install.Resolve(p, s.opts.Env, answer)

	msg := "Install directory: " + resolved.InstallDir
	if resolved.RequiresElevation {
		msg += " (administrator rights will be requested)"
	}
	s.record(ctx, StepResult{Name: "Destination", Status: StepSuccess, Message: msg})
	return resolved, nil
}

func (s *session) preflight(ctx context.Context, resolved install.Resolved) {
	if resolved.RequiresElevation || !s.opts.Profile.IsUnix() {
		return
	}
	pf := install.Preflight(resolved.InstallDir)
	if pf.Writable {
		return
	}
	s.record(ctx, StepResult{
		Name:   "Preflight",
		Status: StepWarning,
		Message: fmt.Sprintf("%s is not writable by the current user; the copy may fail "+
			"(re-run with administrator/root privileges or choose another directory)", pf.Ancestor),
	})
}

func (s *session) deployAddons(ctx context.Context, resolved install.Resolved) error {
	deployer := &addon.Deployer{Payload: bundle.AddonPayload(s.opts.BundleDir)}
	if info, err := os.Stat(deployer.Payload); err != nil || !info.IsDir() {
		s.record(ctx, StepResult{
			Name:    "Add-on",
			Status:  StepSkipped,
			Message: "No Blender add-on in bundle",
		})
		return nil
	}

	answer, err := s.opts.Prompter.Ask(KeyDeployAddons, "Install the Blender add-on?", "yes")
	if err != nil {
		return err
	}
	if !IsYes(answer, true) {
		s.record(ctx, StepResult{Name: "Add-on", Status: StepSkipped, Message: "Skipped Blender add-on"})
		return nil
	}

	base := resolved.AddonBaseDirectory
	target, requested := s.requestedTarget()
	if requested {
		return s.deploy(ctx, deployer, base, target)
	}

	instances, err := addon.Discover(ctx, base)
	if err != nil {
		s.record(ctx, StepResult{
			Name:    "Add-on",
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not list Blender versions: %v", err),
			Err:     err,
		})
	}

	if len(instances) > 0 {
		question := fmt.Sprintf("Blender version to install into (%s, or all)",
			strings.Join(addon.Labels(instances), ", "))
		answer, err = s.opts.Prompter.Ask(KeyBlenderVersion, question, string(addon.ModeAll))
		if err != nil {
			return err
		}
		target = addon.ParseTarget(answer)
	} else {
		answer, err = s.opts.Prompter.Ask(KeyAddonPath,
			"No Blender configuration found. Directory to copy the add-on into (empty to skip)", "")
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			s.record(ctx, StepResult{
				Name:    "Add-on",
				Status:  StepSkipped,
				Message: "No Blender configuration found under " + base,
			})
			return nil
		}
		target = addon.Target{Mode: addon.ModePath, Path: answer}
	}
	return s.deploy(ctx, deployer, base, target)
}

// requestedTarget returns the target answered up front: an explicit
// directory wins over a version label. "all" is not a request, since it
// depends on what discovery finds.
func (s *session) requestedTarget() (addon.Target, bool) {
	answers, ok := s.opts.Prompter.(Answerer)
	if !ok {
		return addon.Target{}, false
	}
	if path, given := answers.Answer(KeyAddonPath); given && strings.TrimSpace(path) != "" {
		return addon.Target{Mode: addon.ModePath, Path: path}, true
	}
	if label, given := answers.Answer(KeyBlenderVersion); given {
		if target := addon.ParseTarget(label); target.Mode == addon.ModeVersion {
			return target, true
		}
	}
	return addon.Target{}, false
}

func (s *session) deploy(ctx context.Context, deployer *addon.Deployer, base string, target addon.Target) error {
	report, err := deployer.Deploy(ctx, base, target)
	if report != nil {
		s.result.Deployed = report.Deployed()
	}
	switch {
	case err != nil:
		s.record(ctx, StepResult{
			Name:     "Add-on",
			Status:   StepError,
			Message:  fmt.Sprintf("Add-on not installed: %v", err),
			Critical: true,
			Err:      err,
		})
	case report.Err() != nil:
		s.record(ctx, StepResult{
			Name:    "Add-on",
			Status:  StepWarning,
			Message: fmt.Sprintf("Add-on installed to %d location(s); some failed: %v", len(report.Deployed()), report.Err()),
			Err:     report.Err(),
		})
	default:
		s.record(ctx, StepResult{
			Name:    "Add-on",
			Status:  StepSuccess,
			Message: fmt.Sprintf("Add-on installed to %s", strings.Join(report.Deployed(), ", ")),
		})
	}
	return nil
}

func (s *session) record(ctx context.Context, step StepResult) {
	ev := logging.FromContext(ctx).Debug()
	if step.Status == StepError {
		ev = logging.FromContext(ctx).Error().Err(step.Err)
	}
	ev.Str("component", "setup").
		Str("step", step.Name).
		Str("status", step.Status.String()).
		Msg(step.Message)

	s.result.Steps = append(s.result.Steps, step)
	if s.opts.OnStep != nil {
		s.opts.OnStep(step)
	}
}

func (s *session) firstCritical() error {
	for _, step := range s.result.Steps {
		if step.Status == StepError && step.Critical {
			return fmt.Errorf("%w: %s: %w", ErrSetupFailed, step.Name, step.Err)
		}
	}
	return ErrSetupFailed
}
