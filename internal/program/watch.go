package program

import (
	"path/filepath"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
)

// WatchEventKind enumerates the three file-system events §6 names for
// --watch mode.
type WatchEventKind int

const (
	WatchAdded WatchEventKind = iota
	WatchChanged
	WatchRemoved
)

// ApplyWatchEvent implements §6's watch surface: the caller (a file
// watcher outside the core, per §5's "FileSystem... watch, synchronous
// from the core's view" — the core itself owns no watcher goroutine)
// pushes one event at a time. The affected file and every file that
// imports it (directly, so far as already-loaded bound files show) are
// marked dirty for the next Analyze slice.
func (p *Program) ApplyWatchEvent(kind WatchEventKind, path string) {
	path = filepath.Clean(path)
	switch kind {
	case WatchRemoved:
		delete(p.files, path)
	case WatchAdded, WatchChanged:
		sf := p.ensureEntry(path)
		sf.dirty = true
		sf.analyzed = false
	}
	p.invalidateDependents(path)
}

// invalidateDependents marks dirty every loaded file whose bound import
// graph resolved to path, so a changed dependency's ripple effects (a
// widened/narrowed export type) are picked up on the next force-compute.
// This is a direct-dependents-only approximation: it does not walk a
// transitive closure, since the core keeps no reverse-import index.
func (p *Program) invalidateDependents(path string) {
	for other, sf := range p.files {
		if other == path || sf.Bound == nil {
			continue
		}
		if dependsOn(p, sf, path) {
			sf.dirty = true
		}
	}
}

// dependsOn reports whether sf's Import/ImportFrom statements resolve to
// target, by replaying resolution rather than keeping a separate index.
func dependsOn(p *Program, sf *SourceFile, target string) bool {
	found := false
	root := sf.Tree.Get(sf.Tree.Root)
	if root == nil {
		return false
	}
	for _, stmtID := range root.Children {
		stmt := sf.Tree.Get(stmtID)
		if stmt == nil {
			continue
		}
		switch stmt.Kind {
		case pyast.KindImport:
			for _, c := range stmt.Children {
				cn := sf.Tree.Get(c)
				if cn == nil {
					continue
				}
				if res, ok := p.ResolveImport(sf.Path, cn.ImportModule, 0); ok {
					for _, rp := range res.ResolvedPaths {
						if rp == target {
							found = true
						}
					}
				}
			}
		case pyast.KindImportFrom:
			if res, ok := p.ResolveImport(sf.Path, stmt.ImportModule, stmt.ImportLevel); ok {
				for _, rp := range res.ResolvedPaths {
					if rp == target {
						found = true
					}
				}
			}
		}
		if found {
			return true
		}
	}
	return false
}
