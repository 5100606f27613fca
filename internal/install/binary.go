package install

import (
	"context"
	"fmt"
	"os"

	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/proc"
)

// BinaryResult describes an installed executable.
type BinaryResult struct {
	Source      string
	Destination string
	Elevated    bool
	// Verified is true when the installed executable answered --version
	// or --help.
	Verified bool
	// VerifyFlag is the flag that succeeded.
	VerifyFlag string
	// VerifyOutput is the last line of output from the verification run.
	VerifyOutput string
}

// BinaryInstaller stages the executable and checks that it runs.
type BinaryInstaller struct {
	Runner proc.Runner
	Stager Stager
}

// verifyFlags are tried in order; the first success verifies the binary.
//
//nolint:gochecknoglobals // fixed order
var verifyFlags = []string{"--version", "--help"}

// Install copies src to resolved.BinaryDestination. The source is checked
// before anything at the destination is touched. A verification failure is
// reported through BinaryResult.Verified, never as an error.
func (b *BinaryInstaller) Install(ctx context.Context, src string, resolved Resolved) (*BinaryResult, error) {
	log := logging.FromContext(ctx)

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: executable not found at %s", ErrMissingArtifact, src)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingArtifact, src, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrMissingArtifact, src)
	}

	log.Debug().
		Str("component", "install").
		Str("operation", "install_binary").
		Str("src", src).
		Str("dst", resolved.BinaryDestination).
		Bool("elevated", b.Stager.Elevated()).
		Msg("staging executable")

	if err := b.Stager.Stage(ctx, src, resolved.BinaryDestination); err != nil {
		return nil, err
	}

	result := &BinaryResult{
		Source:      src,
		Destination: resolved.BinaryDestination,
		Elevated:    b.Stager.Elevated(),
	}
	result.Verified, result.VerifyFlag, result.VerifyOutput = Verify(ctx, b.Runner, resolved.BinaryDestination)

	log.Info().
		Str("component", "install").
		Str("operation", "install_binary").
		Str("path", result.Destination).
		Bool("verified", result.Verified).
		Msg("executable installed")

	return result, nil
}

// Verify runs path with --version and then --help. It returns whether one
// succeeded, which flag did, and a one-line summary of the output.
func Verify(ctx context.Context, runner proc.Runner, path string) (bool, string, string) {
	log := logging.FromContext(ctx)

	var lastOut string
	for _, flag := range verifyFlags {
		out, err := runner.Output(ctx, path, flag)
		lastOut = proc.Summarize(out)
		if err == nil {
			return true, flag, lastOut
		}
		log.Debug().
			Str("component", "install").
			Str("operation", "verify").
			Str("flag", flag).
			Err(err).
			Msg("verification attempt failed")
	}
	return false, "", lastOut
}
