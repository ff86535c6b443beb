package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shivasurya/pathfinder-pytype/internal/analytics"
	"github.com/shivasurya/pathfinder-pytype/internal/importsort"
	"github.com/shivasurya/pathfinder-pytype/internal/pyparser"
)

var importSortCmd = &cobra.Command{
	Use:   "importsort [files...]",
	Short: "Sort and group each file's leading import block",
	RunE:  runImportSort,
}

func init() {
	rootCmd.AddCommand(importSortCmd)
	importSortCmd.Flags().Bool("diff", false, "Print a unified diff instead of rewriting files")
}

func runImportSort(cmd *cobra.Command, args []string) error {
	showDiff, _ := cmd.Flags().GetBool("diff")
	pyVersionFlag, _ := cmd.Flags().GetString("pythonversion")
	version, err := parsePyVersion(pyVersionFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder:", err)
		return cobraExit(exitUsage)
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "pathfinder: importsort requires at least one file")
		return cobraExit(exitUsage)
	}

	analytics.ReportEvent(analytics.ImportSortCommand)

	changedAny := false
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pathfinder:", err)
			return cobraExit(exitIOOrConfig)
		}
		src := string(raw)
		file, parseErrs := pyparser.Parse(path, src, version)
		if len(parseErrs) > 0 {
			fmt.Fprintf(os.Stderr, "pathfinder: %s: syntax errors, skipping\n", path)
			continue
		}
		rewritten, changed := importsort.Sort(src, file)
		if !changed {
			continue
		}
		changedAny = true
		if showDiff {
			printUnifiedDiff(path, src, rewritten)
			continue
		}
		if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "pathfinder:", err)
			return cobraExit(exitIOOrConfig)
		}
		fmt.Printf("sorted imports in %s\n", path)
	}
	if changedAny && showDiff {
		return cobraExit(exitErrorsFound)
	}
	return cobraExit(exitOK)
}

// printUnifiedDiff prints a minimal line-oriented diff of the import
// block region; it is not a general Myers diff, just enough to show the
// reviewer the before/after grouping --diff promises.
func printUnifiedDiff(path, before, after string) {
	fmt.Printf("--- %s\n+++ %s\n", path, path)
	beforeLines := splitLines(before)
	afterLines := splitLines(after)
	i, j := 0, 0
	for i < len(beforeLines) && j < len(afterLines) && beforeLines[i] == afterLines[j] {
		i++
		j++
	}
	tail := 0
	for tail < len(beforeLines)-i && tail < len(afterLines)-j &&
		beforeLines[len(beforeLines)-1-tail] == afterLines[len(afterLines)-1-tail] {
		tail++
	}
	for k := i; k < len(beforeLines)-tail; k++ {
		fmt.Printf("-%s\n", beforeLines[k])
	}
	for k := j; k < len(afterLines)-tail; k++ {
		fmt.Printf("+%s\n", afterLines[k])
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
