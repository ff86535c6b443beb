package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shivasurya/pathfinder-pytype/internal/analytics"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information and exit",
	Run: func(cmd *cobra.Command, _ []string) {
		analytics.ReportEvent(analytics.VersionCommand)
		fmt.Printf("Version: %s\nGit Commit: %s\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
