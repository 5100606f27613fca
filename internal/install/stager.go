package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/platform"
	"github.com/rshade/dfm-setup/internal/proc"
)

const (
	binDirPerm     = 0o755
	binaryFilePerm = 0o755
)

// elevatedScript creates the directory, copies and marks executable in one
// sudo invocation so the user is asked for rights once per group.
const elevatedScript = `mkdir -p "$1" && cp -f "$2" "$3" && chmod 755 "$3"`

// Stager places one executable at its destination, creating the parent
// directory first.
type Stager interface {
	Stage(ctx context.Context, src, dst string) error
	Elevated() bool
}

// NewStager picks the elevated stager when the destination requires it.
func NewStager(p platform.Profile, resolved Resolved, runner proc.Runner) Stager {
	if resolved.RequiresElevation {
		return &ElevatedStager{Runner: runner}
	}
	return &DirectStager{Profile: p}
}

// DirectStager writes with the current user's rights.
type DirectStager struct {
	Profile platform.Profile
}

// Elevated implements Stager.
func (s *DirectStager) Elevated() bool { return false }

// Stage implements Stager.
func (s *DirectStager) Stage(_ context.Context, src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, binDirPerm); err != nil {
		return copyFailure(fmt.Sprintf("create %s", dir), err)
	}

	if err := copyFile(src, dst); err != nil {
		return copyFailure(fmt.Sprintf("copy to %s", dst), err)
	}

	if s.Profile.IsUnix() {
		if err := os.Chmod(dst, binaryFilePerm); err != nil {
			return copyFailure(fmt.Sprintf("chmod %s", dst), err)
		}
	}
	return nil
}

// ElevatedStager runs the directory creation and copy through sudo.
type ElevatedStager struct {
	Runner proc.Runner
}

// Elevated implements Stager.
func (s *ElevatedStager) Elevated() bool { return true }

// Stage implements Stager.
func (s *ElevatedStager) Stage(ctx context.Context, src, dst string) error {
	log := logging.FromContext(ctx)
	log.Info().
		Str("component", "install").
		Str("operation", "stage").
		Str("dst", dst).
		Msg("requesting elevated rights")

	dir := filepath.Dir(dst)
	if err := s.Runner.Run(ctx, "sudo", "sh", "-c", elevatedScript, "sh", dir, src, dst); err != nil {
		return fmt.Errorf("%w: installing %s: %w", ErrElevationFailed, dst, err)
	}
	return nil
}

func copyFailure(action string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s: %w (re-run with administrator/root privileges)", ErrCopyFailure, action, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrCopyFailure, action, err)
}

// copyFile copies a file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copying file: %w", copyErr)
	}

	if syncErr := dstFile.Sync(); syncErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("syncing destination: %w", syncErr)
	}

	if closeErr := dstFile.Close(); closeErr != nil {
		return fmt.Errorf("closing destination: %w", closeErr)
	}

	return nil
}
