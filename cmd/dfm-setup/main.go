// Command dfm-setup installs forester and the Difference Machine Blender
// add-on, and packages them into a distributable image.
package main

import (
	"fmt"
	"os"

	"github.com/rshade/dfm-setup/internal/cli"
	"github.com/rshade/dfm-setup/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
