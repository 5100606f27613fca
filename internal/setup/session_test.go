package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dfm-setup/internal/addon"
	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/config"
	"github.com/rshade/dfm-setup/internal/install"
	"github.com/rshade/dfm-setup/internal/platform"
	"github.com/rshade/dfm-setup/internal/proc"
)

var linux = platform.Profile{OS: platform.OSLinux, Arch: platform.ArchX64}

type fixture struct {
	bundle     string
	home       string
	installDir string
	blender    string
	runner     *proc.Fake
}

// newFixture builds a bundle with an executable and add-on, and a home
// directory with the given Blender versions.
func newFixture(t *testing.T, versions ...string) *fixture {
	t.Helper()
	f := &fixture{
		bundle: t.TempDir(),
		home:   t.TempDir(),
		runner: &proc.Fake{Handler: func(string, []string) ([]byte, error) {
			return []byte("forester 1.0.0"), nil
		}},
	}
	f.installDir = filepath.Join(f.home, "Forester")
	f.blender = filepath.Join(f.home, ".config", "blender")

	bin := bundle.Binary(f.bundle, linux)
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o600))

	payload := bundle.AddonPayload(f.bundle)
	require.NoError(t, os.MkdirAll(payload, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(payload, "__init__.py"), []byte("bl_info = {}\n"), 0o600))

	for _, v := range versions {
		require.NoError(t, os.MkdirAll(filepath.Join(f.blender, v), 0o755))
	}
	return f
}

func (f *fixture) options(answers map[string]string) Options {
	if _, ok := answers[KeyInstallDir]; !ok {
		answers[KeyInstallDir] = f.installDir
	}
	return Options{
		BundleDir: f.bundle,
		Profile:   linux,
		Env:       platform.Env{Home: f.home},
		Prompter:  &Preset{Answers: answers, Next: Defaults{}},
		Runner:    f.runner,
	}
}

func statuses(r *Result) map[string]StepStatus {
	out := make(map[string]StepStatus, len(r.Steps))
	for _, s := range r.Steps {
		out[s.Name] = s.Status
	}
	return out
}

func TestRun_FullInstall(t *testing.T) {
	f := newFixture(t, "3.6", "4.1", "4.2")
	var seen []string
	opts := f.options(map[string]string{})
	opts.OnStep = func(s StepResult) { seen = append(seen, s.Name) }

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.False(t, result.HasErrors)
	assert.False(t, result.HasWarnings)
	assert.Equal(t, []string{"Platform", "Bundle", "Destination", "Executable", "Verification", "Add-on", "Config"}, seen)

	assert.FileExists(t, filepath.Join(f.installDir, "bin", "forester"))
	assert.Len(t, result.Deployed, 3)
	for _, v := range []string{"3.6", "4.1", "4.2"} {
		assert.FileExists(t, filepath.Join(addon.InstanceDestination(filepath.Join(f.blender, v)), "__init__.py"))
	}

	got, err := config.ReadInstallPath(config.SetupFilePath(f.home))
	require.NoError(t, err)
	assert.Equal(t, f.installDir, got)
}

func TestRun_MissingExecutableStops(t *testing.T) {
	f := newFixture(t, "4.2")
	require.NoError(t, os.Remove(bundle.Binary(f.bundle, linux)))

	result, err := Run(context.Background(), f.options(map[string]string{}))

	require.ErrorIs(t, err, ErrSetupFailed)
	require.ErrorIs(t, err, install.ErrMissingArtifact)
	assert.True(t, result.HasErrors)
	assert.NoDirExists(t, f.installDir)
	assert.NoFileExists(t, config.SetupFilePath(f.home))
	assert.Empty(t, f.runner.Calls)
}

func TestRun_UnknownBlenderVersionContinuesToConfig(t *testing.T) {
	f := newFixture(t, "3.6", "4.1", "4.2")

	result, err := Run(context.Background(), f.options(map[string]string{KeyBlenderVersion: "9.9"}))

	require.ErrorIs(t, err, addon.ErrHostVersionNotFound)
	assert.Equal(t, StepError, statuses(result)["Add-on"])
	assert.Equal(t, StepSuccess, statuses(result)["Config"])
	assert.FileExists(t, config.SetupFilePath(f.home))
	for _, v := range []string{"3.6", "4.1", "4.2"} {
		assert.NoDirExists(t, filepath.Join(f.blender, v, "extensions"))
	}
}

func TestRun_RequestedVersionWithoutBlenderConfigFails(t *testing.T) {
	f := newFixture(t)

	result, err := Run(context.Background(), f.options(map[string]string{
		KeyDeployAddons:   "yes",
		KeyBlenderVersion: "4.2",
	}))

	require.ErrorIs(t, err, addon.ErrHostVersionNotFound)
	assert.ErrorContains(t, err, "available: none")
	assert.Equal(t, StepError, statuses(result)["Add-on"])
	assert.Equal(t, StepSuccess, statuses(result)["Config"])
	assert.Empty(t, result.Deployed)
}

func TestRun_ExplicitAddonPathOverridesDiscovery(t *testing.T) {
	f := newFixture(t, "3.6", "4.2")
	target := t.TempDir()

	result, err := Run(context.Background(), f.options(map[string]string{
		KeyDeployAddons: "yes",
		KeyAddonPath:    target,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(target, bundle.AddonName)}, result.Deployed)
	assert.FileExists(t, filepath.Join(target, bundle.AddonName, "__init__.py"))
	for _, v := range []string{"3.6", "4.2"} {
		assert.NoDirExists(t, filepath.Join(f.blender, v, "extensions"))
	}
}

func TestRun_SingleBlenderVersion(t *testing.T) {
	f := newFixture(t, "3.6", "4.2")

	result, err := Run(context.Background(), f.options(map[string]string{KeyBlenderVersion: "4.2"}))
	require.NoError(t, err)

	assert.Equal(t, []string{addon.InstanceDestination(filepath.Join(f.blender, "4.2"))}, result.Deployed)
	assert.NoDirExists(t, filepath.Join(f.blender, "3.6", "extensions"))
}

func TestRun_NoBlenderConfig(t *testing.T) {
	t.Run("empty path skips", func(t *testing.T) {
		f := newFixture(t)

		result, err := Run(context.Background(), f.options(map[string]string{}))
		require.NoError(t, err)
		assert.Equal(t, StepSkipped, statuses(result)["Add-on"])
	})

	t.Run("explicit path", func(t *testing.T) {
		f := newFixture(t)
		target := t.TempDir()

		result, err := Run(context.Background(), f.options(map[string]string{KeyAddonPath: target}))
		require.NoError(t, err)
		assert.Equal(t, StepSuccess, statuses(result)["Add-on"])
		assert.FileExists(t, filepath.Join(target, bundle.AddonName, "__init__.py"))
	})

	t.Run("missing explicit path", func(t *testing.T) {
		f := newFixture(t)
		missing := filepath.Join(t.TempDir(), "nope")

		result, err := Run(context.Background(), f.options(map[string]string{KeyAddonPath: missing}))
		require.ErrorIs(t, err, addon.ErrTargetPathNotFound)
		assert.Equal(t, StepSuccess, statuses(result)["Config"])
	})
}

func TestRun_DeclineAddon(t *testing.T) {
	f := newFixture(t, "4.2")

	result, err := Run(context.Background(), f.options(map[string]string{KeyDeployAddons: "n"}))
	require.NoError(t, err)

	assert.Equal(t, StepSkipped, statuses(result)["Add-on"])
	assert.NoDirExists(t, filepath.Join(f.blender, "4.2", "extensions"))
}

func TestRun_NoAddonInBundle(t *testing.T) {
	f := newFixture(t, "4.2")
	require.NoError(t, os.RemoveAll(filepath.Join(f.bundle, bundle.AddonsDir)))

	result, err := Run(context.Background(), f.options(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, StepSkipped, statuses(result)["Add-on"])
}

func TestRun_VerificationFailureWarns(t *testing.T) {
	f := newFixture(t)
	f.runner.Handler = func(string, []string) ([]byte, error) { return nil, proc.ErrFakeFailure }

	result, err := Run(context.Background(), f.options(map[string]string{}))
	require.NoError(t, err)

	assert.True(t, result.HasWarnings)
	assert.Equal(t, StepWarning, statuses(result)["Verification"])
	assert.FileExists(t, filepath.Join(f.installDir, "bin", "forester"))
}

func TestRun_ElevatedDestination(t *testing.T) {
	f := newFixture(t)

	result, err := Run(context.Background(), f.options(map[string]string{KeyInstallDir: "/opt/Forester"}))
	require.NoError(t, err)

	assert.True(t, result.Resolved.RequiresElevation)
	require.NotEmpty(t, f.runner.Calls)
	assert.Equal(t, "sudo", f.runner.Calls[0].Name)
	assert.Equal(t, "/opt/Forester/bin/forester", f.runner.Calls[1].Name)

	got, err := config.ReadInstallPath(config.SetupFilePath(f.home))
	require.NoError(t, err)
	assert.Equal(t, "/opt/Forester", got)
}

func TestRun_ElevationDeclinedStops(t *testing.T) {
	f := newFixture(t)
	f.runner.Handler = func(name string, _ []string) ([]byte, error) {
		if name == "sudo" {
			return nil, proc.ErrFakeFailure
		}
		return nil, nil
	}

	result, err := Run(context.Background(), f.options(map[string]string{KeyInstallDir: "/opt/Forester"}))

	require.ErrorIs(t, err, install.ErrElevationFailed)
	assert.Equal(t, StepError, statuses(result)["Executable"])
	assert.NotContains(t, statuses(result), "Config")
}

func TestRun_ConfigWriteFailureWarns(t *testing.T) {
	f := newFixture(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	opts := f.options(map[string]string{})
	opts.SetupFile = filepath.Join(blocker, "setup.cfg")

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, StepWarning, statuses(result)["Config"])
	assert.True(t, result.HasWarnings)
}
