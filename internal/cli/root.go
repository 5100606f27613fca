// Package cli implements the dfm-setup command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/dfm-setup/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root command. Run without a subcommand it
// performs an interactive install.
func NewRootCmd(ver string) *cobra.Command {
	return newRootCmd(ver, defaultInstallDeps())
}

func newRootCmd(ver string, deps installDeps) *cobra.Command {
	var logResult *logging.LogPathResult
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "dfm-setup",
		Short: "Install forester and the Difference Machine Blender add-on",
		Long: `dfm-setup installs the forester version-control executable, deploys the
Difference Machine add-on into your Blender configuration and records the
install location for the add-on.

Run without a subcommand to start an interactive install.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, &opts, deps)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging to the console")
	cmd.PersistentFlags().String("log-file", "", "write the detailed log to this file (default: XDG state dir)")
	addInstallFlags(cmd, &opts)

	cmd.AddCommand(newInstallCmd(deps), newPackageCmd(deps.runner))
	return cmd
}

const rootCmdExample = `  # Interactive install from the mounted image
  dfm-setup

  # Unattended install into the default location for every Blender version
  dfm-setup install --non-interactive

  # Install into your home directory and only into Blender 4.2
  dfm-setup install --install-dir ~/Forester --addons 4.2

  # Build the distributable image
  dfm-setup package --manifest package.yaml`
