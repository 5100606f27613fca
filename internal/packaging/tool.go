package packaging

import (
	"context"
	"fmt"
	"sort"

	"github.com/rshade/dfm-setup/internal/logging"
	"github.com/rshade/dfm-setup/internal/proc"
)

// Tool turns a directory tree into a disk image.
type Tool interface {
	Name() string
	// Priority orders candidates; lower runs first.
	Priority() int
	// Probe reports whether the tool is available on this machine.
	Probe(ctx context.Context) bool
	// Build writes an image of tree to output with the given volume label.
	Build(ctx context.Context, tree, output, label string) error
}

// isoTool drives an mkisofs-compatible command line.
type isoTool struct {
	name     string
	priority int
	prefix   []string
	runner   proc.Runner
}

func (t *isoTool) Name() string  { return t.name }
func (t *isoTool) Priority() int { return t.priority }

func (t *isoTool) Probe(ctx context.Context) bool {
	path, err := t.runner.LookPath(t.name)
	logging.FromContext(ctx).Debug().
		Str("component", "packaging").
		Str("operation", "probe").
		Str("tool", t.name).
		Str("path", path).
		Bool("found", err == nil).
		Msg("probed image tool")
	return err == nil
}

func (t *isoTool) Build(ctx context.Context, tree, output, label string) error {
	args := append([]string(nil), t.prefix...)
	args = append(args, "-V", label, "-J", "-R", "-o", output, tree)

	out, err := t.runner.Output(ctx, t.name, args...)
	if err != nil {
		if summary := proc.Summarize(out); summary != "" {
			return fmt.Errorf("%s: %w: %s", t.name, err, summary)
		}
		return fmt.Errorf("%s: %w", t.name, err)
	}
	return nil
}

// DefaultTools returns the supported image tools in priority order.
func DefaultTools(runner proc.Runner) []Tool {
	return []Tool{
		&isoTool{name: "xorriso", priority: 10, prefix: []string{"-as", "mkisofs"}, runner: runner},
		&isoTool{name: "genisoimage", priority: 20, runner: runner},
		&isoTool{name: "mkisofs", priority: 30, runner: runner},
	}
}

// SelectTool returns the available tool with the lowest priority value.
func SelectTool(ctx context.Context, tools []Tool) (Tool, bool) {
	ordered := append([]Tool(nil), tools...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	for _, t := range ordered {
		if t.Probe(ctx) {
			return t, true
		}
	}
	return nil, false
}
