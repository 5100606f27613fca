package install

import "errors"

var (
	// ErrMissingArtifact is returned when the staged executable is absent.
	ErrMissingArtifact = errors.New("required artifact missing")

	// ErrCopyFailure is returned when the destination cannot be written.
	ErrCopyFailure = errors.New("copy to destination failed")

	// ErrElevationFailed is returned when the elevated copy is declined or fails.
	ErrElevationFailed = errors.New("privilege elevation failed")
)
