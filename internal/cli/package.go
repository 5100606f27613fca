package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/packaging"
	"github.com/rshade/dfm-setup/internal/proc"
)

// packageOptions holds the package flags.
type packageOptions struct {
	Manifest string
	Binaries string
	Addons   string
	Scripts  string
	Staging  string
	Output   string
	Label    string
}

func newPackageCmd(runner proc.Runner) *cobra.Command {
	var opts packageOptions

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Build the distributable installation image",
		Long: `Assembles the forester executables, the Blender add-ons and the install
scripts into a staging tree and turns it into a disk image with the first
available tool (xorriso, genisoimage, mkisofs).

If no image tool is installed the staging tree is left in place and the
command still succeeds. Values from --manifest are overridden by flags.`,
		Example: `  # Package using the conventional layout in the current directory
  dfm-setup package

  # Package from a manifest
  dfm-setup package --manifest package.yaml

  # Override the output path
  dfm-setup package --output dist/forester-1.2.iso --label FORESTER_1_2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPackage(cmd, &opts, runner)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "YAML build manifest")
	cmd.Flags().StringVar(&opts.Binaries, "binaries", "", "directory with forester/{linux,macos,windows}/bin")
	cmd.Flags().StringVar(&opts.Addons, "addons", "", "directory with the add-on payloads")
	cmd.Flags().StringVar(&opts.Scripts, "scripts", "", "directory with the install scripts")
	cmd.Flags().StringVar(&opts.Staging, "staging", "", "staging directory (rebuilt on every run)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "image file to write")
	cmd.Flags().StringVar(&opts.Label, "label", "", "volume label of the image")

	return cmd
}

// loadManifest combines defaults, the manifest file and explicit flags.
func loadManifest(cmd *cobra.Command, opts *packageOptions) (packaging.Manifest, error) {
	wd, err := os.Getwd()
	if err != nil {
		return packaging.Manifest{}, fmt.Errorf("getting working directory: %w", err)
	}

	m := packaging.DefaultManifest(wd)
	if opts.Manifest != "" {
		if m, err = packaging.LoadManifest(opts.Manifest); err != nil {
			return packaging.Manifest{}, err
		}
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"binaries", opts.Binaries, &m.Sources.Binaries},
		{"addons", opts.Addons, &m.Sources.Addons},
		{"scripts", opts.Scripts, &m.Sources.Scripts},
		{"staging", opts.Staging, &m.StagingDir},
		{"output", opts.Output, &m.Output},
		{"label", opts.Label, &m.VolumeLabel},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) && o.value != "" {
			*o.dst = o.value
		}
	}
	return m, nil
}

func runPackage(cmd *cobra.Command, opts *packageOptions, runner proc.Runner) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.FromContext(ctx)

	m, err := loadManifest(cmd, opts)
	if err != nil {
		return err
	}

	log.Debug().
		Str("component", "cli").
		Str("operation", "package").
		Str("staging", m.StagingDir).
		Str("output", m.Output).
		Msg("packaging bundle")

	result, err := packaging.NewBuilder(packaging.DefaultTools(runner)).Build(ctx, m)
	out := cmd.OutOrStdout()
	if result != nil {
		for _, w := range result.Warnings {
			_, _ = fmt.Fprintf(out, "Warning: %s\n", w)
		}
	}
	if err != nil {
		if result != nil {
			_, _ = fmt.Fprintf(out, "Staging tree kept for inspection: %s\n", result.StagingDir)
		}
		return err
	}

	switch result.Outcome {
	case packaging.OutcomeNoTool:
		_, _ = fmt.Fprintf(out, "No image tool found (install xorriso, genisoimage or mkisofs).\n")
		_, _ = fmt.Fprintf(out, "Staging tree ready at %s\n", result.StagingDir)
	case packaging.OutcomePackaged:
		_, _ = fmt.Fprintf(out, "Image written to %s (%s)\n", result.ImagePath, result.Tool)
	}
	return nil
}
