// Package pyimport implements the import resolver (§4.3): a pure function
// of (importing file, execution environment, dotted module reference) to
// a resolved file list, import classification, and stub/namespace flags.
package pyimport

import (
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ImportType classifies where a resolved module came from, per §4.3 step 4.
type ImportType int

const (
	ImportUnknown ImportType = iota
	ImportBuiltin
	ImportThirdParty
	ImportLocal
	ImportLocalTypings
)

func (t ImportType) String() string {
	switch t {
	case ImportBuiltin:
		return "builtin"
	case ImportThirdParty:
		return "third-party"
	case ImportLocal:
		return "local"
	case ImportLocalTypings:
		return "local-typings"
	default:
		return "unknown"
	}
}

// ExecutionEnvironment is one root directory with its own search path
// list, per the GLOSSARY.
type ExecutionEnvironment struct {
	Root           string
	PythonVersion  string
	PythonPlatform string
	ExtraPaths     []string
}

// Options bundles the configuration the resolver consults, mirroring the
// configuration file fields named in §6.
type Options struct {
	TypingsPath  string
	TypeshedPath string
	BundledStub  string // fallback typeshed bundled with the implementation
	Environments []ExecutionEnvironment
	ProjectRoot  string
}

// Result is one resolved import, per §4.3.
type Result struct {
	ResolvedPaths      []string // at most one entry; a namespace package resolves to its directory
	Type               ImportType
	IsStubFile         bool
	IsRelative         bool
	ImplicitSubImports []string // submodules implicitly bound, e.g. `import a.b.c` also binds `a`, `a.b`
}

// FileSystem is the pluggable, synchronous-from-the-core's-view interface
// the resolver reads through (§5 "Resources").
type FileSystem interface {
	Stat(path string) (isDir bool, ok bool)
	ReadDir(path string) ([]string, error)
}

// OSFileSystem implements FileSystem against the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

func (OSFileSystem) ReadDir(path string) ([]string, error) {
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

type cacheKey struct {
	importingFile string
	module        string
	level         int
}

// Resolver resolves dotted module references to files, idempotently and
// without side effects (§5 "Import resolution is idempotent and pure").
// Resolved-path lookups are memoised in a bounded LRU so long --watch
// sessions don't grow an unbounded cache (§ domain stack, golang-lru).
type Resolver struct {
	opts  Options
	fs    FileSystem
	cache *lru.Cache[cacheKey, Result]
}

func NewResolver(opts Options, fs FileSystem) *Resolver {
	if fs == nil {
		fs = OSFileSystem{}
	}
	cache, _ := lru.New[cacheKey, Result](2048)
	return &Resolver{opts: opts, fs: fs, cache: cache}
}

// Resolve implements the §4.3 algorithm. `module` is the dotted reference
// as written; `level` is the leading-dot count (0 for an absolute import).
func (r *Resolver) Resolve(importingFile, module string, level int) Result {
	key := cacheKey{importingFile, module, level}
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}
	var result Result
	if level > 0 {
		result = r.resolveRelative(importingFile, module, level)
	} else {
		result = r.resolveAbsolute(importingFile, module)
	}
	r.cache.Add(key, result)
	return result
}

// resolveRelative resolves against the importing file's package chain
// (§4.3 step 1): walk up `level` package directories from the importing
// file, then descend `module`'s dotted segments.
func (r *Resolver) resolveRelative(importingFile, module string, level int) Result {
	dir := filepath.Dir(importingFile)
	for i := 1; i < level; i++ {
		dir = filepath.Dir(dir)
	}
	result := Result{IsRelative: true, Type: ImportLocal}
	segments := splitDotted(module)
	candidate := dir
	for _, seg := range segments {
		candidate = filepath.Join(candidate, seg)
	}
	r.resolveAtCandidateRoot(candidate, &result)
	return result
}

// resolveAbsolute implements §4.3 step 2's probe order: configured
// typings path, then each execution environment's extra paths, then its
// root, then the configured typeshed path, then the bundled fallback.
func (r *Resolver) resolveAbsolute(importingFile, module string) Result {
	segments := splitDotted(module)
	roots := r.probeRoots(importingFile)
	for _, root := range roots {
		candidate := root.path
		for _, seg := range segments {
			candidate = filepath.Join(candidate, seg)
		}
		result := Result{Type: root.kind}
		if r.resolveAtCandidateRoot(candidate, &result) {
			r.fillImplicitSubImports(module, &result)
			return result
		}
	}
	return Result{Type: ImportUnknown}
}

type probeRoot struct {
	path string
	kind ImportType
}

func (r *Resolver) probeRoots(importingFile string) []probeRoot {
	var roots []probeRoot
	if r.opts.TypingsPath != "" {
		roots = append(roots, probeRoot{r.opts.TypingsPath, ImportLocalTypings})
	}
	for _, env := range r.opts.Environments {
		if !strings.HasPrefix(importingFile, env.Root) {
			continue
		}
		for _, extra := range env.ExtraPaths {
			roots = append(roots, probeRoot{extra, ImportThirdParty})
		}
		roots = append(roots, probeRoot{env.Root, ImportLocal})
	}
	if r.opts.ProjectRoot != "" {
		roots = append(roots, probeRoot{r.opts.ProjectRoot, ImportLocal})
	}
	if r.opts.TypeshedPath != "" {
		roots = append(roots, probeRoot{r.opts.TypeshedPath, ImportBuiltin})
	}
	if r.opts.BundledStub != "" {
		roots = append(roots, probeRoot{r.opts.BundledStub, ImportBuiltin})
	}
	return roots
}

// resolveAtCandidateRoot applies §4.3 step 3: prefer a .pyi stub over .py,
// treat a directory with __init__.py[i] as a regular package, and resolve
// a PEP-420 namespace package (a directory with no __init__ file but that
// does contain Python sources) to that one directory. Portions of the
// same namespace package under later search roots are not collected.
func (r *Resolver) resolveAtCandidateRoot(candidate string, result *Result) bool {
	if stubPath := candidate + ".pyi"; fileExists(r.fs, stubPath) {
		result.ResolvedPaths = []string{stubPath}
		result.IsStubFile = true
		return true
	}
	if pyPath := candidate + ".py"; fileExists(r.fs, pyPath) {
		result.ResolvedPaths = []string{pyPath}
		return true
	}
	if isDir, ok := r.fs.Stat(candidate); ok && isDir {
		for _, initName := range []string{"__init__.pyi", "__init__.py"} {
			initPath := filepath.Join(candidate, initName)
			if fileExists(r.fs, initPath) {
				result.ResolvedPaths = []string{initPath}
				result.IsStubFile = strings.HasSuffix(initName, ".pyi")
				return true
			}
		}
		if containsPythonSource(r.fs, candidate) {
			result.ResolvedPaths = []string{candidate}
			return true
		}
	}
	return false
}

func containsPythonSource(fs FileSystem, dir string) bool {
	names, err := fs.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, name := range names {
		if strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".pyi") {
			return true
		}
	}
	return false
}

func fileExists(fs FileSystem, path string) bool {
	isDir, ok := fs.Stat(path)
	return ok && !isDir
}

// fillImplicitSubImports records that `import a.b.c` also implicitly
// binds the prefixes `a` and `a.b` in the importing scope.
func (r *Resolver) fillImplicitSubImports(module string, result *Result) {
	segments := splitDotted(module)
	for i := 1; i < len(segments); i++ {
		result.ImplicitSubImports = append(result.ImplicitSubImports, strings.Join(segments[:i], "."))
	}
}

func splitDotted(module string) []string {
	if module == "" {
		return nil
	}
	return strings.Split(module, ".")
}
