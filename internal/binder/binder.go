// Package binder implements the single-pass binder of §4.4: it walks a
// file's parse tree once to build lexical scopes, symbol tables,
// declarations, and a reverse control-flow graph of flow nodes. It never
// resolves types; the evaluator consumes its output (BoundFile) lazily.
package binder

import (
	"strings"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
)

// Bind runs the binder over file and returns its bound output. builtin is
// the process-wide shared builtin scope (construct once with
// NewBuiltinScope and reuse across every file in a program).
func Bind(file *pyast.File, builtin *Scope) *BoundFile {
	b := &binder{
		file: file,
		out: &BoundFile{
			File:          file,
			Scopes:        make(map[pyast.NodeID]*Scope),
			ReferenceFlow: make(map[pyast.NodeID]FlowID),
		},
	}
	b.run(builtin)
	return b.out
}

type loopCtx struct {
	breaks    []FlowID
	continues []FlowID
}

type binder struct {
	file     *pyast.File
	out      *BoundFile
	symbols  int
	loops    []*loopCtx
	curScope *Scope
}

func (b *binder) run(builtin *Scope) {
	root := b.file.Root
	mod := newScope(ScopeModule, builtin, root)
	b.out.ModuleScope = mod
	b.out.Scopes[root] = mod
	b.curScope = mod

	b.detectFutureImports(root)

	start := b.newFlow(FlowStart, pyast.InvalidNodeID)
	rootNode := b.file.Get(root)
	if rootNode != nil {
		b.bindStatements(rootNode.Children, mod, start)
	}

	b.computeDunderAll(mod)
	b.computeHiddenFlags(mod)
}

// --- scope/symbol helpers ---

func (b *binder) newSymbolID() int {
	id := b.symbols
	b.symbols++
	return id
}

// declare records a new binding of name in scope, creating the Symbol on
// first sight and always appending a fresh Declaration (§3 "the same name
// may be re-bound multiple times, producing multiple declarations").
// global/nonlocal names are redirected to the scope that actually owns
// them and never get a local symbol, per §4.4 step 1.
func (b *binder) declare(scope *Scope, name string, decl *Declaration) *Symbol {
	if scope.Global[name] {
		target := b.out.ModuleScope
		return b.declareIn(target, name, decl)
	}
	if scope.Nonlocal[name] {
		for sc := scope.Parent; sc != nil; sc = sc.Parent {
			if sc.Kind == ScopeFunction {
				return b.declareIn(sc, name, decl)
			}
		}
	}
	return b.declareIn(scope, name, decl)
}

func (b *binder) declareIn(scope *Scope, name string, decl *Declaration) *Symbol {
	sym, ok := scope.Symbol(name)
	if !ok {
		sym = &Symbol{ID: b.newSymbolID(), Name: name, Scope: scope}
		scope.set(sym)
	}
	sym.addDeclaration(decl)
	return sym
}

func (b *binder) declAt(kind DeclKind, node pyast.NodeID) *Declaration {
	n := b.file.Get(node)
	d := &Declaration{Kind: kind, Node: node, File: b.file.Path}
	if n != nil {
		d.Start, d.End = n.Start, n.End
	}
	return d
}

// --- flow graph helpers ---

func (b *binder) newFlow(kind FlowKind, node pyast.NodeID, antecedents ...FlowID) FlowID {
	id := FlowID(len(b.out.Flow))
	b.out.Flow = append(b.out.Flow, FlowNode{
		ID:          id,
		Kind:        kind,
		Node:        node,
		Antecedents: append([]FlowID(nil), antecedents...),
	})
	return id
}

func (b *binder) addAntecedent(label FlowID, pred FlowID) {
	fn := &b.out.Flow[label]
	fn.Antecedents = append(fn.Antecedents, pred)
}

// annotateRefsIn records cur as the current flow for every Name node in the
// subtree rooted at node, stopping at nested scope boundaries (those get
// bound into their own scope with their own independent flow graph — see
// bindLambda/bindComprehension). Used for condition, value, and
// call-argument expressions, which execute before the statement's own
// binding takes effect. scope is the enclosing scope the walk is
// currently in, needed to parent any Lambda/Comprehension found inline.
func (b *binder) annotateRefsIn(node pyast.NodeID, scope *Scope, cur FlowID) {
	if node == pyast.InvalidNodeID {
		return
	}
	n := b.file.Get(node)
	if n == nil {
		return
	}
	switch n.Kind {
	case pyast.KindLambda:
		b.bindLambda(node, scope, cur)
		return
	case pyast.KindComprehension:
		b.bindComprehension(node, scope, cur)
		return
	case pyast.KindName:
		b.out.ReferenceFlow[node] = cur
	}
	for _, c := range n.Children {
		b.annotateRefsIn(c, scope, cur)
	}
}

// annotateRefs is annotateRefsIn against the binder's ambient scope
// tracked via curScope; most call sites don't have a scope value handy
// since they're deep in statement-specific helpers, so those instead
// call annotateRefsIn directly when they already hold the scope.
func (b *binder) annotateRefs(node pyast.NodeID, cur FlowID) {
	b.annotateRefsIn(node, b.curScope, cur)
}

// --- future-import / __all__ / hidden-name passes ---

func (b *binder) detectFutureImports(root pyast.NodeID) {
	rootNode := b.file.Get(root)
	if rootNode == nil {
		return
	}
	for _, c := range rootNode.Children {
		n := b.file.Get(c)
		if n == nil {
			continue
		}
		if n.Kind == pyast.KindExprStmt {
			continue // docstring or bare expression; keep scanning
		}
		if n.Kind != pyast.KindImportFrom {
			break
		}
		if n.ImportModule != "__future__" {
			break
		}
		for _, nameChild := range n.Children {
			nn := b.file.Get(nameChild)
			if nn != nil && nn.Name == "annotations" {
				b.out.FutureAnnotations = true
			}
		}
	}
}

// computeDunderAll looks for a module-level `__all__ = [...]`/`(...)`
// assignment of string literals, per §4.4 step 5. Augmented forms
// (`__all__ += [...]`) extend a prior list; anything else (a call, a
// comprehension, a name) is not statically inferable and leaves
// HasDunderAll false.
func (b *binder) computeDunderAll(mod *Scope) {
	rootNode := b.file.Get(b.file.Root)
	if rootNode == nil {
		return
	}
	var all []string
	inferable := false
	for _, c := range rootNode.Children {
		n := b.file.Get(c)
		if n == nil {
			continue
		}
		switch n.Kind {
		case pyast.KindAssign:
			if len(n.Children) < 2 {
				continue
			}
			target := b.file.Get(n.Children[0])
			if target == nil || target.Kind != pyast.KindName || target.Name != "__all__" {
				continue
			}
			values, ok := b.stringListLiterals(n.Children[len(n.Children)-1])
			if !ok {
				inferable = false
				continue
			}
			all = values
			inferable = true
		case pyast.KindAugAssign:
			if n.Operator != "+=" || len(n.Children) < 2 {
				continue
			}
			target := b.file.Get(n.Children[0])
			if target == nil || target.Kind != pyast.KindName || target.Name != "__all__" {
				continue
			}
			values, ok := b.stringListLiterals(n.Children[len(n.Children)-1])
			if !ok || !inferable {
				continue
			}
			all = append(all, values...)
		}
	}
	if inferable {
		b.out.HasDunderAll = true
		b.out.DunderAll = all
	}
}

func (b *binder) stringListLiterals(node pyast.NodeID) ([]string, bool) {
	n := b.file.Get(node)
	if n == nil {
		return nil, false
	}
	if n.Kind != pyast.KindListExpr && n.Kind != pyast.KindTuple && n.Kind != pyast.KindSetExpr {
		return nil, false
	}
	var out []string
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn == nil || cn.Kind != pyast.KindStringLit {
			return nil, false
		}
		out = append(out, cn.StringValue)
	}
	return out, true
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4
}

// computeHiddenFlags applies §4.4 step 5's precedence: a statically
// inferable `__all__` wins outright; otherwise a leading underscore hides
// a module-level symbol unless it is a dunder.
func (b *binder) computeHiddenFlags(mod *Scope) {
	if b.out.HasDunderAll {
		exported := make(map[string]bool, len(b.out.DunderAll))
		for _, name := range b.out.DunderAll {
			exported[name] = true
		}
		for _, name := range mod.Names() {
			sym, _ := mod.Symbol(name)
			sym.ExternallyHidden = !exported[name]
		}
		return
	}
	for _, name := range mod.Names() {
		sym, _ := mod.Symbol(name)
		sym.ExternallyHidden = strings.HasPrefix(name, "_") && !isDunder(name)
	}
}
