// Command pathfinder is a static type checker for Python source, exposing
// its core analysis through the check/importsort/version subcommands
// defined under cmd.
package main

import (
	"fmt"
	"os"

	"github.com/shivasurya/pathfinder-pytype/cmd"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	os.Exit(cmd.ExitCode(err))
}
