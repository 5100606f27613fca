// Package packaging assembles the installation bundle into a staging tree
// and turns it into a disk image with the first available image tool.
package packaging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"

	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/platform"
)

// ErrImageBuildFailure is returned when the selected tool fails or
// produces no image.
var ErrImageBuildFailure = errors.New("image build failed")

// ErrUnsafeStaging is returned when the staging tree overlaps a source
// group or the image output, since rebuilding it would delete them.
var ErrUnsafeStaging = errors.New("staging directory overlaps packaging inputs or output")

const (
	stagingDirPerm = 0o755
	entryPointPerm = 0o755
)

// Outcome classifies a successful packaging run.
type Outcome string

const (
	// OutcomePackaged means an image was written and staging removed.
	OutcomePackaged Outcome = "packaged"
	// OutcomeNoTool means no image tool was found; staging was kept.
	OutcomeNoTool Outcome = "no_tool"
)

// Result describes a packaging run.
type Result struct {
	Outcome    Outcome
	Tool       string
	ImagePath  string
	StagingDir string
	// Warnings lists artifact groups that were absent.
	Warnings []string
}

// Builder runs the packaging pipeline.
type Builder struct {
	Tools []Tool
}

// NewBuilder returns a Builder using tools.
func NewBuilder(tools []Tool) *Builder {
	return &Builder{Tools: tools}
}

// Build rebuilds the staging tree from m and packages it. The staging tree
// is removed only after an image was produced.
func (b *Builder) Build(ctx context.Context, m Manifest) (*Result, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "packaging").
		Str("operation", "build").
		Logger()

	result := &Result{StagingDir: m.StagingDir}

	if err := checkStaging(m); err != nil {
		return result, err
	}
	if err := os.RemoveAll(m.StagingDir); err != nil {
		return result, fmt.Errorf("removing previous staging tree: %w", err)
	}
	if err := os.MkdirAll(m.StagingDir, stagingDirPerm); err != nil {
		return result, fmt.Errorf("creating staging tree: %w", err)
	}

	groups := []struct {
		name string
		src  string
		dst  string
	}{
		{"binaries", m.Sources.Binaries, filepath.Join(m.StagingDir, bundle.ForesterDir)},
		{"addons", m.Sources.Addons, filepath.Join(m.StagingDir, bundle.AddonsDir)},
		{"scripts", m.Sources.Scripts, m.StagingDir},
	}
	for _, g := range groups {
		staged, err := stageGroup(g.src, g.dst)
		if err != nil {
			return result, fmt.Errorf("staging %s: %w", g.name, err)
		}
		if !staged {
			msg := fmt.Sprintf("%s not found at %s", g.name, g.src)
			result.Warnings = append(result.Warnings, msg)
			log.Warn().Str("group", g.name).Str("src", g.src).Msg("artifact group missing, continuing")
		}
	}

	if err := markEntryPoints(m.StagingDir); err != nil {
		return result, err
	}
	if err := writeReadme(m.StagingDir); err != nil {
		return result, err
	}

	tool, ok := SelectTool(ctx, b.Tools)
	if !ok {
		result.Outcome = OutcomeNoTool
		log.Info().Str("staging", m.StagingDir).Msg("no image tool available, staging tree left in place")
		return result, nil
	}
	result.Tool = tool.Name()

	if err := os.Remove(m.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("removing previous image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.Output), stagingDirPerm); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	log.Info().Str("tool", tool.Name()).Str("output", m.Output).Msg("building image")
	if err := tool.Build(ctx, m.StagingDir, m.Output, m.VolumeLabel); err != nil {
		return result, fmt.Errorf("%w: %w", ErrImageBuildFailure, err)
	}
	if info, err := os.Stat(m.Output); err != nil || !info.Mode().IsRegular() {
		return result, fmt.Errorf("%w: %s produced no image at %s", ErrImageBuildFailure, tool.Name(), m.Output)
	}

	if err := os.RemoveAll(m.StagingDir); err != nil {
		log.Warn().Err(err).Msg("removing staging tree after packaging")
	}
	result.Outcome = OutcomePackaged
	result.ImagePath = m.Output
	return result, nil
}

// checkStaging refuses a staging tree that is, contains or sits inside a
// source group, or that contains the image output.
func checkStaging(m Manifest) error {
	if strings.TrimSpace(m.StagingDir) == "" {
		return fmt.Errorf("%w: no staging directory", ErrUnsafeStaging)
	}
	staging, err := filepath.Abs(m.StagingDir)
	if err != nil {
		return fmt.Errorf("resolving staging directory: %w", err)
	}

	sources := map[string]string{
		"binaries": m.Sources.Binaries,
		"addons":   m.Sources.Addons,
		"scripts":  m.Sources.Scripts,
	}
	for name, src := range sources {
		if src == "" {
			continue
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("resolving %s source: %w", name, err)
		}
		if within(staging, abs) || within(abs, staging) {
			return fmt.Errorf("%w: %s overlaps %s source %s", ErrUnsafeStaging, m.StagingDir, name, src)
		}
	}

	if m.Output != "" {
		out, err := filepath.Abs(m.Output)
		if err != nil {
			return fmt.Errorf("resolving output path: %w", err)
		}
		if within(staging, out) {
			return fmt.Errorf("%w: output %s is inside %s", ErrUnsafeStaging, m.Output, m.StagingDir)
		}
	}
	return nil
}

// within reports whether p is dir or lies below it. Both must be absolute.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// stageGroup copies src into dst. It reports false when src is absent.
func stageGroup(src, dst string) (bool, error) {
	if src == "" {
		return false, nil
	}
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}
	if err := cp.Copy(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// markEntryPoints sets the execute bit on the unix executables and on
// shell scripts at the staging root.
func markEntryPoints(staging string) error {
	var targets []string
	for _, osName := range bundle.PlatformDirs {
		p := platform.Profile{OS: osName}
		if p.IsWindows() {
			continue
		}
		targets = append(targets, bundle.Binary(staging, p))
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("reading staging tree: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && (strings.HasSuffix(name, ".sh") || strings.HasSuffix(name, ".command")) {
			targets = append(targets, filepath.Join(staging, name))
		}
	}

	for _, t := range targets {
		if err := os.Chmod(t, entryPointPerm); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("marking %s executable: %w", t, err)
		}
	}
	return nil
}
