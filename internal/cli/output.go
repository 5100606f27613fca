package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/dfm-setup/internal/setup"
)

//nolint:gochecknoglobals // shared styles
var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status setup.StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case setup.StepSuccess:
			return "[OK]"
		case setup.StepWarning:
			return "[WARN]"
		case setup.StepSkipped:
			return "[SKIP]"
		case setup.StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case setup.StepSuccess:
		return styleOK.Render("\u2713") // ✓
	case setup.StepWarning:
		return styleWarning.Render("!")
	case setup.StepSkipped:
		return styleSkipped.Render("-")
	case setup.StepError:
		return styleError.Render("\u2717") // ✗
	default:
		return "?"
	}
}

// printStep outputs a single step's status line.
func printStep(w io.Writer, step setup.StepResult, nonInteractive bool) {
	_, _ = fmt.Fprintf(w, "%s %s\n", formatStatus(step.Status, nonInteractive), step.Message)
}

// printSummary outputs the final completion message.
func printSummary(w io.Writer, result *setup.Result) {
	if result == nil {
		return
	}
	_, _ = fmt.Fprintln(w)
	switch {
	case result.HasErrors:
		_, _ = fmt.Fprintln(w, "Setup completed with errors. Review the messages above for remediation steps.")
	case result.HasWarnings:
		_, _ = fmt.Fprintln(w, "Setup complete with warnings.")
	default:
		_, _ = fmt.Fprintln(w, "Setup complete! Open Blender and enable the Difference Machine add-on.")
	}
}
