package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shivasurya/pathfinder-pytype/internal/analytics"
	"github.com/shivasurya/pathfinder-pytype/internal/config"
	"github.com/shivasurya/pathfinder-pytype/internal/diagnostic"
	"github.com/shivasurya/pathfinder-pytype/internal/logging"
	"github.com/shivasurya/pathfinder-pytype/internal/program"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
)

// exit codes per §6: 0 no errors, 1 errors found, 2 usage error, 3 I/O or
// configuration error.
const (
	exitOK          = 0
	exitErrorsFound = 1
	exitUsage       = 2
	exitIOOrConfig  = 3
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Analyze Python source files and report diagnostics",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("watch", false, "Keep running, re-analyzing on file changes")
	checkCmd.Flags().Bool("outputjson", false, "Print diagnostics as a JSON array instead of a table")
	checkCmd.Flags().String("sarif-file", "", "Also write a SARIF 2.1.0 report to this path")
	checkCmd.Flags().String("verifytypes", "", "Report the fraction of a module's public surface with known types")
	checkCmd.Flags().String("createstub", "", "Write a trivial .pyi skeleton for the resolved module")
	checkCmd.Flags().Bool("lib", false, "Use library source (not just stubs) for third-party types")
}

func runCheck(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	outputJSON, _ := cmd.Flags().GetBool("outputjson")
	sarifFile, _ := cmd.Flags().GetString("sarif-file")
	verifyTypesModule, _ := cmd.Flags().GetString("verifytypes")
	createStubModule, _ := cmd.Flags().GetString("createstub")
	useLib, _ := cmd.Flags().GetBool("lib")

	projectFlag, _ := cmd.Flags().GetString("project")
	configPath, _ := cmd.Flags().GetString("config")
	typeshedPath, _ := cmd.Flags().GetString("typeshed-path")
	venvPath, _ := cmd.Flags().GetString("venv-path")
	pythonPath, _ := cmd.Flags().GetString("pythonpath")
	pyVersionFlag, _ := cmd.Flags().GetString("pythonversion")
	pyPlatform, _ := cmd.Flags().GetString("pythonplatform")

	projectRoot := projectFlag
	if projectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "pathfinder: cannot determine working directory:", err)
			return cobraExit(exitIOOrConfig)
		}
		projectRoot = wd
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder: invalid --project path:", err)
		return cobraExit(exitUsage)
	}
	projectRoot = absRoot

	cfg := config.Default()
	if configPath == "" {
		candidate := filepath.Join(projectRoot, "pathfinderconfig.json")
		if _, statErr := os.Stat(candidate); statErr == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		loaded, loadErr := config.LoadFile(configPath, projectRoot)
		if loadErr != nil {
			fmt.Fprintln(os.Stderr, "pathfinder: loading config:", loadErr)
			return cobraExit(exitIOOrConfig)
		}
		cfg = loaded
	}
	if pyVersionFlag != "" {
		cfg.PythonVersion = pyVersionFlag
	}
	if pyPlatform != "" {
		cfg.PythonPlatform = pyPlatform
	}
	if typeshedPath != "" {
		cfg.TypeshedPath = typeshedPath
	}
	if venvPath != "" {
		cfg.VenvPath = venvPath
	}
	if pythonPath != "" {
		cfg.PythonPath = pythonPath
	}
	if useLib {
		cfg.UseLibraryCodeForTypes = true
	}

	pyVersion, err := parsePyVersion(cfg.PythonVersion)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder:", err)
		return cobraExit(exitUsage)
	}

	logger := logging.New(logging.VerbosityDefault)
	if outputJSON {
		logger.DisableColor()
	}

	prog := program.New(nil)
	prog.SetOptions(program.Options{
		PythonVersion:          pyVersion,
		PythonPlatform:         cfg.PythonPlatform,
		Rules:                  cfg.Rules(),
		Environments:           convertEnvironments(cfg.ExecutionEnvironments),
		ProjectRoot:            projectRoot,
		TypeshedPath:           cfg.TypeshedPath,
		UseLibraryCodeForTypes: cfg.UseLibraryCodeForTypes,
		Watch:                  watch,
	})

	if createStubModule != "" {
		return runCreateStub(prog, createStubModule, projectRoot)
	}
	if verifyTypesModule != "" {
		return runVerifyTypes(prog, verifyTypesModule, projectRoot)
	}

	files, err := discoverFiles(args, cfg, projectRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder:", err)
		return cobraExit(exitIOOrConfig)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "pathfinder: no Python source files found")
		return cobraExit(exitUsage)
	}

	analytics.ReportEvent(eventFor(outputJSON))

	prog.SetTrackedFiles(files)
	if err := runToCompletion(prog, logger); err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder: analysis cancelled:", err)
		return cobraExit(exitIOOrConfig)
	}

	hadError := report(prog, files, outputJSON, sarifFile)
	if !watch {
		if hadError {
			return cobraExit(exitErrorsFound)
		}
		return cobraExit(exitOK)
	}

	return watchLoop(prog, files, logger, outputJSON, sarifFile)
}

func eventFor(outputJSON bool) string {
	if outputJSON {
		return analytics.CheckCommandJSON
	}
	return analytics.CheckCommand
}

func convertEnvironments(envs []config.ExecutionEnvironment) []pyimport.ExecutionEnvironment {
	out := make([]pyimport.ExecutionEnvironment, len(envs))
	for i, e := range envs {
		out[i] = pyimport.ExecutionEnvironment{
			Root:           e.Root,
			PythonVersion:  e.PythonVersion,
			PythonPlatform: e.PythonPlatform,
			ExtraPaths:     e.ExtraPaths,
		}
	}
	return out
}

// discoverFiles resolves the CLI's positional file arguments, or (when
// none given) walks projectRoot applying cfg's include/exclude/ignore
// globs, per §6.
func discoverFiles(args []string, cfg *config.Config, projectRoot string) ([]string, error) {
	if len(args) > 0 {
		out := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return nil, err
			}
			out = append(out, abs)
		}
		return out, nil
	}
	var candidates []string
	err := filepath.Walk(projectRoot, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".py") && !strings.HasSuffix(path, ".pyi") {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}
		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", projectRoot, err)
	}
	included := cfg.IncludedFiles(candidates)
	out := make([]string, len(included))
	for i, rel := range included {
		out[i] = filepath.Join(projectRoot, rel)
	}
	return out, nil
}

// runToCompletion drives Analyze to exhaustion, one whole-file slice at a
// time, per §5's interruptible-budget model.
func runToCompletion(prog *program.Program, logger *logging.Logger) error {
	ctx := context.Background()
	for {
		more, err := prog.Analyze(program.Budget{Ctx: ctx, MaxFiles: 8})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// report force-computes and prints diagnostics for files, returning
// whether any error-severity diagnostic was found.
func report(prog *program.Program, files []string, outputJSON bool, sarifFile string) bool {
	byFile := make(map[string][]diagnostic.Diagnostic, len(files))
	hadError := false
	for _, f := range files {
		diags, err := prog.GetDiagnostics(f, nil)
		if err != nil {
			continue
		}
		byFile[f] = diags
		for _, d := range diags {
			if d.Severity == diagnostic.SeverityError {
				hadError = true
			}
		}
	}

	if sarifFile != "" {
		writeSARIF(prog, byFile, sarifFile)
	}

	if outputJSON {
		printJSON(byFile)
		return hadError
	}
	printTable(byFile)
	return hadError
}

func writeSARIF(prog *program.Program, byFile map[string][]diagnostic.Diagnostic, path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder: creating SARIF file:", err)
		return
	}
	defer f.Close()
	idxs := make(map[string]*sourcetext.Index, len(byFile))
	for path := range byFile {
		if sf, ok := prog.GetSourceFile(path); ok && sf.Index != nil {
			idxs[path] = sf.Index
		}
	}
	diagnostic.SetToolVersion(Version)
	if err := diagnostic.WriteSARIF(f, byFile, idxs); err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder: writing SARIF file:", err)
	}
}

func printJSON(byFile map[string][]diagnostic.Diagnostic) {
	type jsonDiag struct {
		File     string `json:"file"`
		Severity string `json:"severity"`
		Code     string `json:"code"`
		Start    int    `json:"start"`
		End      int    `json:"end"`
		Message  string `json:"message"`
	}
	var all []jsonDiag
	for _, diags := range byFile {
		for _, d := range diags {
			all = append(all, jsonDiag{
				File: d.File, Severity: d.Severity.String(), Code: d.Code,
				Start: d.Range.Start, End: d.Range.End, Message: d.Message,
			})
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(all)
}

func printTable(byFile map[string][]diagnostic.Diagnostic) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Severity", "File", "Range", "Code", "Message"})
	total := 0
	for path, diags := range byFile {
		for _, d := range diags {
			t.AppendRow(table.Row{d.Severity.String(), path, fmt.Sprintf("%d-%d", d.Range.Start, d.Range.End), d.Code, d.Message})
			total++
		}
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Printf("%d diagnostic(s)\n", total)
}

// watchLoop polls file modification times and pushes ApplyWatchEvent
// calls into the Program, per §5's "watch events are pushed in by the
// caller" design — the core owns no watcher goroutine of its own.
func watchLoop(prog *program.Program, files []string, logger *logging.Logger, outputJSON bool, sarifFile string) error {
	mtimes := make(map[string]time.Time, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			mtimes[f] = info.ModTime()
		}
	}
	logger.Progress("watching %d file(s) for changes", len(files))
	for {
		time.Sleep(500 * time.Millisecond)
		changed := false
		for _, f := range files {
			info, err := os.Stat(f)
			if err != nil {
				continue
			}
			if prev, ok := mtimes[f]; !ok || info.ModTime().After(prev) {
				mtimes[f] = info.ModTime()
				prog.ApplyWatchEvent(program.WatchChanged, f)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := runToCompletion(prog, logger); err != nil {
			return err
		}
		report(prog, files, outputJSON, sarifFile)
	}
}

// cobraExit signals a desired process exit code to main.go without
// calling os.Exit directly from deep within command logic, since cobra
// itself has already printed any error it returns.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return "" }

func cobraExit(code int) error {
	if code == exitOK {
		return nil
	}
	return exitCodeError{code}
}

// ExitCode extracts the process exit code main.go should use from an
// error Execute() returned, defaulting to 1 for an ordinary cobra error.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if ec, ok := err.(exitCodeError); ok {
		return ec.code
	}
	return exitErrorsFound
}
