// Package cmd is the Cobra command tree for the pathfinder CLI, adapted
// from the teacher's cmd/root.go: the same persistent-flag/analytics
// wiring pattern, generalized from the query-language front-end to the
// type checker's --project/--typeshed-path/--pythonversion surface (§6).
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shivasurya/pathfinder-pytype/internal/analytics"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

var (
	// Version/GitCommit are set at build time via -ldflags, mirroring
	// the teacher's main.go package-level vars.
	Version   = "dev"
	GitCommit = "none"
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "pathfinder is a static type checker for Python",
	Long:  `pathfinder analyzes Python source for type errors, unresolved imports, and possibly-unbound names.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics")
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
	},
}

// Execute runs the command tree; main.go's only job is to call this and
// translate a returned error into an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymous usage metrics collection")
	rootCmd.PersistentFlags().String("project", "", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Path to a pathfinderconfig.json file")
	rootCmd.PersistentFlags().String("typeshed-path", "", "Path to a typeshed checkout")
	rootCmd.PersistentFlags().String("venv-path", "", "Path to a virtualenv to resolve third-party imports against")
	rootCmd.PersistentFlags().String("pythonpath", "", "Extra search path entries, OS-path-separated")
	rootCmd.PersistentFlags().String("pythonversion", "3.12", "Target Python version, e.g. 3.11")
	rootCmd.PersistentFlags().String("pythonplatform", "All", "Target platform: Linux, Darwin, Windows, or All")
}

// parsePyVersion parses the "--pythonversion" flag's "M.N" spelling.
func parsePyVersion(s string) (pytoken.PyVersion, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return pytoken.PyVersion{}, fmt.Errorf("invalid --pythonversion %q, expected M.N", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return pytoken.PyVersion{}, fmt.Errorf("invalid --pythonversion %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return pytoken.PyVersion{}, fmt.Errorf("invalid --pythonversion %q: %w", s, err)
	}
	return pytoken.PyVersion{Major: major, Minor: minor}, nil
}
