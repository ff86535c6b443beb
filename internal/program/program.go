// Package program implements the Program module named in §4.6: the
// orchestration layer owning the file-path -> source-file map, driving
// interruptible analysis slices, and answering diagnostic/editor queries
// by wrapping the parser, binder, evaluator, and import resolver built in
// internal/pyparser, internal/binder, internal/evaluator, and
// internal/pyimport.
package program

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/diagnostic"
	"github.com/shivasurya/pathfinder-pytype/internal/evaluator"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/pyparser"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
)

// FileSystem is the core's pluggable view of storage, per §5: read, stat,
// and list-directory are synchronous from the core's point of view; watch
// events are pushed in by the caller (see ApplyWatchEvent) rather than
// the core owning a watcher goroutine.
type FileSystem interface {
	ReadFile(path string) (string, error)
	Stat(path string) (isDir bool, ok bool)
	ListDirectory(path string) ([]string, error)
}

// OSFileSystem implements FileSystem against the real file system.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (OSFileSystem) Stat(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

func (OSFileSystem) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// resolverFS adapts FileSystem to pyimport.FileSystem's (near-identical,
// differently-named) method set.
type resolverFS struct{ fs FileSystem }

func (r resolverFS) Stat(path string) (bool, bool)          { return r.fs.Stat(path) }
func (r resolverFS) ReadDir(path string) ([]string, error)  { return r.fs.ListDirectory(path) }

// Options bundles the configuration §4.6's set_options propagates: Python
// version/platform, the diagnostic rule table, execution environments and
// search paths, and the watch flag.
type Options struct {
	PythonVersion          pytoken.PyVersion
	PythonPlatform         string
	Rules                  diagnostic.RuleTable
	Environments           []pyimport.ExecutionEnvironment
	ProjectRoot            string
	TypeshedPath           string
	TypingsPath            string
	BundledStub            string
	UseLibraryCodeForTypes bool
	Watch                  bool
}

// relevantlyChanged reports whether moving from old to cur invalidates
// every cached file, per §4.6 "invalidates caches on semantically
// relevant flag changes" — the watch flag alone is not semantically
// relevant to analysis results, so it's excluded.
func relevantlyChanged(old, cur Options) bool {
	if old.PythonVersion != cur.PythonVersion {
		return true
	}
	if old.PythonPlatform != cur.PythonPlatform {
		return true
	}
	if old.ProjectRoot != cur.ProjectRoot || old.TypeshedPath != cur.TypeshedPath ||
		old.TypingsPath != cur.TypingsPath || old.BundledStub != cur.BundledStub {
		return true
	}
	if old.UseLibraryCodeForTypes != cur.UseLibraryCodeForTypes {
		return true
	}
	if len(old.Environments) != len(cur.Environments) {
		return true
	}
	for i := range old.Environments {
		if old.Environments[i] != cur.Environments[i] {
			return true
		}
	}
	return false
}

// SourceFile is the Program's record for one tracked-or-dependency file,
// per §4.6 "owns file-path -> source-file map".
type SourceFile struct {
	Path    string
	Tracked bool

	// Generation increments every time this file is freshly
	// parsed+bound, per §9 "per-file generation counter" — a file is
	// never parsed twice for the same generation/version, and callers
	// can tell a cached answer apart from one computed after an edit.
	Generation int

	Source      string
	Index       *sourcetext.Index
	Tree        *pyast.File
	ParseErrors []pyparser.Error
	Bound       *binder.BoundFile

	sink     *diagnostic.Sink
	analyzed bool
	dirty    bool
}

// Program is the core orchestration layer of §4.6.
type Program struct {
	fs       FileSystem
	opts     Options
	resolver *pyimport.Resolver
	ev       *evaluator.Evaluator
	builtin  *binder.Scope

	files        map[string]*SourceFile
	trackedOrder []string
}

// New constructs a Program backed by fs (OSFileSystem{} if nil).
func New(fs FileSystem) *Program {
	if fs == nil {
		fs = OSFileSystem{}
	}
	p := &Program{
		fs:      fs,
		files:   make(map[string]*SourceFile),
		builtin: binder.NewBuiltinScope(),
	}
	p.ev = evaluator.New(p)
	p.resolver = pyimport.NewResolver(pyimport.Options{}, resolverFS{fs})
	return p
}

// SetOptions implements §4.6's set_options: propagates the given options
// and, when a semantically relevant flag changed, invalidates every
// cached file so the next Analyze slice recomputes from scratch.
func (p *Program) SetOptions(opts Options) {
	changed := relevantlyChanged(p.opts, opts)
	p.opts = opts
	p.resolver = pyimport.NewResolver(pyimport.Options{
		TypingsPath:  opts.TypingsPath,
		TypeshedPath: opts.TypeshedPath,
		BundledStub:  opts.BundledStub,
		Environments: opts.Environments,
		ProjectRoot:  opts.ProjectRoot,
	}, resolverFS{p.fs})
	if changed {
		p.invalidateAll()
	}
}

func (p *Program) invalidateAll() {
	for _, sf := range p.files {
		if sf.Bound != nil {
			p.ev.InvalidateFile(sf.Bound)
		}
		sf.Tree = nil
		sf.Bound = nil
		sf.analyzed = false
		sf.dirty = true
		if sf.sink != nil {
			sf.sink.Reset()
		}
	}
}

// SetTrackedFiles implements §4.6's set_tracked_files: paths become the
// eagerly-analysed set; files no longer named are demoted to
// lazily-loaded dependencies (their cached state, if any, is kept — only
// their Tracked flag and Analyze priority change).
func (p *Program) SetTrackedFiles(paths []string) {
	tracked := make(map[string]bool, len(paths))
	for _, raw := range paths {
		path := filepath.Clean(raw)
		tracked[path] = true
		sf := p.ensureEntry(path)
		if !sf.Tracked {
			sf.Tracked = true
			sf.dirty = true
		}
	}
	for path, sf := range p.files {
		if sf.Tracked && !tracked[path] {
			sf.Tracked = false
		}
	}
	order := make([]string, 0, len(tracked))
	for path := range tracked {
		order = append(order, path)
	}
	sort.Strings(order)
	p.trackedOrder = order
}

func (p *Program) ensureEntry(path string) *SourceFile {
	sf, ok := p.files[path]
	if !ok {
		sf = &SourceFile{Path: path, sink: diagnostic.NewSink(), dirty: true}
		p.files[path] = sf
	}
	return sf
}

// GetSourceFile implements §4.6's get_source_file lookup.
func (p *Program) GetSourceFile(path string) (*SourceFile, bool) {
	sf, ok := p.files[filepath.Clean(path)]
	return sf, ok
}

// Budget bounds one Analyze call's slice of work, per §5 "analyze(budget)
// chunks work, returning control between whole-file work items".
// Ctx is checked at the yield points named in §5: before each read,
// after parsing, after binding, and at each top-level statement
// evaluated; a cancelled operation unwinds without mutating the shared
// cache (the file's SourceFile entry is only overwritten once its full
// analysis completes).
type Budget struct {
	Ctx context.Context
	// MaxFiles caps how many whole-file work items this slice processes;
	// 0 means exactly one.
	MaxFiles int
}

// Analyze implements §4.6's analyze(budget): processes up to
// budget.MaxFiles dirty files (tracked files first, then dependents, both
// in path order per §5), returning whether more work remains.
func (p *Program) Analyze(budget Budget) (bool, error) {
	ctx := budget.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	maxFiles := budget.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 1
	}
	for done := 0; done < maxFiles; done++ {
		path, ok := p.nextDirty()
		if !ok {
			return false, nil
		}
		if err := ctx.Err(); err != nil {
			return true, err
		}
		if err := p.analyzeFile(ctx, path); err != nil {
			return p.hasMoreWork(), err
		}
	}
	return p.hasMoreWork(), nil
}

func (p *Program) nextDirty() (string, bool) {
	for _, path := range p.trackedOrder {
		if sf := p.files[path]; sf != nil && sf.dirty {
			return path, true
		}
	}
	var rest []string
	for path, sf := range p.files {
		if !sf.Tracked && sf.dirty {
			rest = append(rest, path)
		}
	}
	if len(rest) == 0 {
		return "", false
	}
	sort.Strings(rest)
	return rest[0], true
}

func (p *Program) hasMoreWork() bool {
	_, ok := p.nextDirty()
	return ok
}

// analyzeFile runs one file's full parse+bind+evaluate-diagnostics slice.
// An infrastructure failure (§7.3, e.g. the file disappeared) is turned
// into a single error diagnostic attributed to the file and does not
// propagate as an error — analysis continues with other files; only
// ctx cancellation returns an error, per §5's "cancelled unwinds without
// mutating shared cache".
func (p *Program) analyzeFile(ctx context.Context, path string) error {
	sf := p.ensureEntry(path)

	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := p.fs.ReadFile(path)
	if err != nil {
		sf.sink.Reset()
		sf.sink.Report(diagnostic.Diagnostic{
			File:     path,
			Severity: diagnostic.SeverityError,
			Code:     diagnostic.RuleInternalError,
			Message:  fmt.Sprintf("reading %s: %v", path, err),
		})
		sf.analyzed = true
		sf.dirty = false
		return nil
	}

	tree, perrs := pyparser.Parse(path, src, p.opts.PythonVersion)
	if err := ctx.Err(); err != nil {
		return err
	}
	bound := binder.Bind(tree, p.builtin)
	if err := ctx.Err(); err != nil {
		return err
	}

	prev := *sf
	sf.Source = src
	sf.Index = sourcetext.NewIndex(src)
	sf.Tree = tree
	sf.ParseErrors = perrs
	sf.Bound = bound
	sf.Generation++
	sf.sink = diagnostic.NewSink()

	for _, e := range perrs {
		sev := p.opts.Rules.SeverityFor(diagnostic.RuleSyntaxError)
		sf.sink.Report(diagnostic.Diagnostic{
			File:     path,
			Severity: sev,
			Code:     diagnostic.RuleSyntaxError,
			Range:    sourcetext.Range{Start: e.Start, End: e.End},
			Message:  e.Message,
		})
	}

	if err := p.computeDiagnostics(ctx, sf); err != nil {
		*sf = prev
		return err
	}
	if prev.Bound != nil {
		p.ev.InvalidateFile(prev.Bound)
	}
	sf.analyzed = true
	sf.dirty = false
	return nil
}

// GetDiagnostics implements §4.6's get_diagnostics: force-computes (via
// Analyze's same machinery, ignoring the cooperative budget) then returns
// diagnostics ordered by start offset, optionally narrowed to rng.
func (p *Program) GetDiagnostics(path string, rng *sourcetext.Range) ([]diagnostic.Diagnostic, error) {
	path = filepath.Clean(path)
	sf := p.ensureEntry(path)
	if sf.dirty || !sf.analyzed {
		if err := p.analyzeFile(context.Background(), path); err != nil {
			return nil, err
		}
	}
	all := sf.sink.Diagnostics()
	if rng == nil {
		return all, nil
	}
	var out []diagnostic.Diagnostic
	for _, d := range all {
		if d.InRange(*rng) {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- evaluator.FileProvider ---

// BoundFileAt implements evaluator.FileProvider: force-loads (parses and
// binds, but does not evaluate diagnostics for) path if it isn't tracked
// yet, the lazy-dependency half of §4.6 "others are lazily loaded on
// import".
func (p *Program) BoundFileAt(path string) (*binder.BoundFile, bool) {
	sf, ok := p.files[path]
	if ok && sf.Bound != nil && !sf.dirty {
		return sf.Bound, true
	}
	if err := p.loadDependency(path); err != nil {
		return nil, false
	}
	sf = p.files[path]
	if sf == nil || sf.Bound == nil {
		return nil, false
	}
	return sf.Bound, true
}

// loadDependency parses+binds (but does not run the diagnostics pass for)
// a file reached only through an import, never through set_tracked_files
// or an explicit get_diagnostics call.
func (p *Program) loadDependency(path string) error {
	sf := p.ensureEntry(path)
	if sf.Bound != nil && !sf.dirty {
		return nil
	}
	src, err := p.fs.ReadFile(path)
	if err != nil {
		return err
	}
	tree, perrs := pyparser.Parse(path, src, p.opts.PythonVersion)
	bound := binder.Bind(tree, p.builtin)
	sf.Source = src
	sf.Index = sourcetext.NewIndex(src)
	sf.Tree = tree
	sf.ParseErrors = perrs
	sf.Bound = bound
	sf.Generation++
	sf.dirty = false
	return nil
}

// ResolveImport implements evaluator.FileProvider, wrapping the bare
// pyimport.Result return in the (Result, ok) shape the evaluator expects.
func (p *Program) ResolveImport(fromFile, module string, level int) (pyimport.Result, bool) {
	res := p.resolver.Resolve(fromFile, module, level)
	return res, len(res.ResolvedPaths) > 0
}
