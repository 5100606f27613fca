// Package proc runs external programs for the installer and the package
// builder. Everything that shells out goes through Runner so tests can
// substitute a fake.
package proc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external programs.
type Runner interface {
	// Run executes name with the process's terminal attached, for programs
	// that may need to interact with the user (sudo password prompts).
	Run(ctx context.Context, name string, args ...string) error
	// Output executes name and returns its combined stdout and stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// LookPath reports the resolved path of name on PATH.
	LookPath(name string) (string, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns a Runner wired to the process's standard streams.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// Output implements Runner.
func (e *Exec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// LookPath implements Runner.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Summarize trims command output to its last non-empty line for messages.
func Summarize(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
