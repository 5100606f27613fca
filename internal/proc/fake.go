package proc

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Call records one invocation made through a Fake.
type Call struct {
	Name string
	Args []string
}

// Line renders the call as a single command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is a scripted Runner for tests.
type Fake struct {
	Calls []Call
	// Handler decides the result of Run and Output. A nil Handler succeeds.
	Handler func(name string, args []string) ([]byte, error)
	// Paths lists the programs LookPath should find.
	Paths map[string]string
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) error {
	_, err := f.Output(ctx, name, args...)
	return err
}

// Output implements Runner.
func (f *Fake) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	if f.Handler == nil {
		return nil, nil
	}
	return f.Handler(name, args)
}

// LookPath implements Runner.
func (f *Fake) LookPath(name string) (string, error) {
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// ErrFakeFailure is a convenience error for scripted failures.
var ErrFakeFailure = errors.New("scripted failure")
