package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rshade/dfm-setup/internal/platform"
	"github.com/rshade/dfm-setup/internal/proc"
	"github.com/rshade/dfm-setup/internal/setup"
)

// addonsNone disables add-on deployment when passed to --addons.
const addonsNone = "none"

// installOptions holds the install flags.
type installOptions struct {
	BundleDir      string
	InstallDir     string
	Addons         string
	AddonPath      string
	NonInteractive bool
	Yes            bool
}

// installDeps are the host-facing collaborators of an install.
type installDeps struct {
	runner   proc.Runner
	profile  func(ctx context.Context) platform.Profile
	env      func() (platform.Env, error)
	setupCfg string
}

func defaultInstallDeps() installDeps {
	return installDeps{
		runner:  proc.NewExec(),
		profile: platform.NewHostDetector().Detect,
		env:     platform.EnvFromOS,
	}
}

func newInstallCmd(deps installDeps) *cobra.Command {
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install forester and the Blender add-on",
		Long: `Installs the forester executable from the bundle, deploys the Difference
Machine add-on into Blender and records the install location in
~/.dfm-setup/setup.cfg.

Every question has a default; press Enter to accept it. Flags answer the
corresponding question without asking.`,
		Example: `  # Interactive install
  dfm-setup install

  # Accept every default without asking
  dfm-setup install --yes

  # Install without the add-on
  dfm-setup install --addons none

  # Copy the add-on into a specific directory
  dfm-setup install --addon-path ~/blender-addons`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, &opts, deps)
		},
	}

	addInstallFlags(cmd, &opts)
	return cmd
}

func addInstallFlags(cmd *cobra.Command, opts *installOptions) {
	cmd.Flags().StringVar(&opts.BundleDir, "bundle-dir", "",
		"root of the unpacked bundle (default: directory containing dfm-setup)")
	cmd.Flags().StringVar(&opts.InstallDir, "install-dir", "",
		"install directory for forester (default depends on the platform)")
	cmd.Flags().StringVar(&opts.Addons, "addons", "",
		`Blender versions to receive the add-on: "all", a version such as 4.2, or "none"`)
	cmd.Flags().StringVar(&opts.AddonPath, "addon-path", "",
		"copy the add-on into this directory instead of a discovered Blender version")
	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"never prompt; use defaults and plain status markers")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false,
		"accept the default answer to every question")
	cmd.MarkFlagsMutuallyExclusive("addons", "addon-path")
}

// runInstall gathers answers, runs the session and prints each step.
func runInstall(cmd *cobra.Command, opts *installOptions, deps installDeps) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Auto-detect non-interactive mode when stdin is not a TTY
	if !opts.NonInteractive && !inputIsInteractive(cmd.InOrStdin()) {
		opts.NonInteractive = true
	}

	env, err := deps.env()
	if err != nil {
		return err
	}

	bundleDir := opts.BundleDir
	if bundleDir == "" {
		bundleDir = defaultBundleDir()
	}

	var next setup.Prompter = setup.Defaults{}
	if !opts.NonInteractive && !opts.Yes {
		next = setup.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	prompter := &setup.Preset{Answers: presetAnswers(cmd.Flags(), opts), Next: next}

	result, err := setup.Run(ctx, setup.Options{
		BundleDir: bundleDir,
		Profile:   deps.profile(ctx),
		Env:       env,
		Prompter:  prompter,
		Runner:    deps.runner,
		SetupFile: deps.setupCfg,
		OnStep: func(step setup.StepResult) {
			printStep(cmd.OutOrStdout(), step, opts.NonInteractive)
		},
	})

	printSummary(cmd.OutOrStdout(), result)
	return err
}

// presetAnswers maps explicitly set flags onto prompt answers.
func presetAnswers(flags *pflag.FlagSet, opts *installOptions) map[string]string {
	answers := make(map[string]string)

	if flags.Changed("install-dir") {
		answers[setup.KeyInstallDir] = opts.InstallDir
	}
	if flags.Changed("addon-path") {
		answers[setup.KeyDeployAddons] = "yes"
		answers[setup.KeyAddonPath] = opts.AddonPath
	}
	if flags.Changed("addons") {
		if strings.EqualFold(strings.TrimSpace(opts.Addons), addonsNone) {
			answers[setup.KeyDeployAddons] = "no"
		} else {
			answers[setup.KeyDeployAddons] = "yes"
			answers[setup.KeyBlenderVersion] = opts.Addons
		}
	}
	return answers
}

// inputIsInteractive reports whether r is a terminal. Readers that are not
// files, such as those injected by tests, count as interactive.
func inputIsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	return isTerminal(f)
}

// defaultBundleDir is the directory holding the running executable, which
// is the image root when dfm-setup is launched from the mounted image.
func defaultBundleDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
