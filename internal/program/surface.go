package program

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/docstring"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// ensureAnalyzed force-computes path's bound tree (ignoring the
// cooperative budget), the same force-compute path GetDiagnostics uses,
// since every §6 editor method needs an up-to-date parse/bind to answer.
func (p *Program) ensureAnalyzed(path string) (*SourceFile, bool) {
	path = filepath.Clean(path)
	sf := p.ensureEntry(path)
	if sf.dirty || !sf.analyzed {
		if err := p.analyzeFile(context.Background(), path); err != nil {
			return nil, false
		}
	}
	if sf.Bound == nil {
		return nil, false
	}
	return sf, true
}

// nodeAt resolves an editor position to the innermost AST node, or false
// if the file couldn't be analyzed or the position is out of range.
func (p *Program) nodeAt(path string, pos sourcetext.Position) (*SourceFile, pyast.NodeID, bool) {
	sf, ok := p.ensureAnalyzed(path)
	if !ok {
		return nil, pyast.InvalidNodeID, false
	}
	offset := sf.Index.OffsetAt(pos)
	id := sf.Tree.NodeAt(offset)
	if id == pyast.InvalidNodeID {
		return nil, pyast.InvalidNodeID, false
	}
	return sf, id, true
}

// GetType implements §6's get_type: the inferred Type of the expression
// at pos, or the declared-symbol's type when pos lands on a Name.
func (p *Program) GetType(path string, pos sourcetext.Position) (*types.Type, bool) {
	sf, id, ok := p.nodeAt(path, pos)
	if !ok {
		return nil, false
	}
	t := p.ev.TypeOf(sf.Bound, id)
	if t == nil {
		return nil, false
	}
	return t, true
}

// TypeOfDeclaration evaluates decl's own defining node (a Name target,
// FunctionDef, or ClassDef) within bf, used by --verifytypes to judge
// how much of a module's public surface has a known (non-Unknown/Any)
// type without needing a specific reference site.
func (p *Program) TypeOfDeclaration(bf *binder.BoundFile, decl *binder.Declaration) *types.Type {
	if decl == nil {
		return nil
	}
	return p.ev.TypeOf(bf, decl.Node)
}

// GetDeclarationsForName implements §6's get_declarations_for_name: every
// Declaration recorded for the symbol the Name at pos resolves to.
func (p *Program) GetDeclarationsForName(path string, pos sourcetext.Position) ([]*binder.Declaration, bool) {
	sf, id, ok := p.nodeAt(path, pos)
	if !ok {
		return nil, false
	}
	n := sf.Tree.Get(id)
	if n == nil || n.Kind != pyast.KindName {
		return nil, false
	}
	scope := enclosingScopeOf(sf.Bound, id)
	if scope == nil {
		return nil, false
	}
	sym, _ := scope.Lookup(n.Name)
	if sym == nil {
		return nil, false
	}
	return sym.Declarations, true
}

// ResolveAlias implements §6's resolve_alias: follows an import alias
// Declaration to the Declaration it ultimately names in the imported
// module, per §4.6's invariant that an alias's resolved path either
// exists or is surfaced as a diagnostic. Unlike
// evaluator.resolveAliasDeclaration, ImportLevel is read from the
// enclosing ImportFrom statement, not the per-alias child node: only the
// statement node carries the leading-dot count.
func (p *Program) ResolveAlias(fromFile string, decl *binder.Declaration) (*binder.Declaration, bool) {
	if decl == nil || decl.Kind != binder.DeclAlias {
		return nil, false
	}
	sf, ok := p.files[fromFile]
	if !ok || sf.Tree == nil {
		return nil, false
	}
	level := 0
	if parent := sf.Tree.Get(sf.Tree.ParentOf(decl.Node)); parent != nil && parent.Kind == pyast.KindImportFrom {
		level = parent.ImportLevel
	}
	res, ok := p.ResolveImport(fromFile, decl.ImportPath, level)
	if !ok || len(res.ResolvedPaths) == 0 {
		return nil, false
	}
	target := res.ResolvedPaths[0]
	bf, ok := p.BoundFileAt(target)
	if !ok {
		return nil, false
	}
	chain := decl.SubmoduleChain
	if len(chain) == 0 {
		return nil, false
	}
	sym, ok := bf.ModuleScope.Symbol(chain[len(chain)-1])
	if !ok || sym.Latest() == nil {
		return nil, false
	}
	return sym.Latest(), true
}

// GetCompletionSuggestions implements §6's get_completion_suggestions for
// a partially-typed module name: the well-known framework table's names
// whose pyimport.SuggestModules edit-distance similarity reaches the
// threshold, in table order.
func (p *Program) GetCompletionSuggestions(partial string, similarity float64) []pyimport.Completion {
	seen := make(map[string]bool)
	var candidates []string
	for _, fw := range pyimport.KnownFrameworks {
		if !seen[fw.Name] {
			seen[fw.Name] = true
			candidates = append(candidates, fw.Name)
		}
	}
	return pyimport.SuggestModules(partial, candidates, similarity)
}

// SignatureInfo is the shape §6's get_signature_info returns: a rendered
// signature plus the parameter index the caller's cursor sits within a
// Call's argument list, if it does.
type SignatureInfo struct {
	Signature     string
	Doc           string
	ActiveParam   int
	HasActiveCall bool
}

// GetSignatureInfo implements §6's get_signature_info: walks outward from
// pos to the nearest enclosing Call, evaluates its callee's Function
// type, and reports which parameter the cursor is positioned at.
func (p *Program) GetSignatureInfo(path string, pos sourcetext.Position) (*SignatureInfo, bool) {
	sf, id, ok := p.nodeAt(path, pos)
	if !ok {
		return nil, false
	}
	offset := sf.Index.OffsetAt(pos)
	call := id
	for call != pyast.InvalidNodeID {
		n := sf.Tree.Get(call)
		if n == nil {
			return nil, false
		}
		if n.Kind == pyast.KindCall {
			break
		}
		call = n.Parent
	}
	if call == pyast.InvalidNodeID {
		return nil, false
	}
	callNode := sf.Tree.Get(call)
	if len(callNode.Children) == 0 {
		return nil, false
	}
	calleeType := p.ev.TypeOf(sf.Bound, callNode.Children[0])
	fn := functionOfCallee(calleeType)
	if fn == nil {
		return nil, false
	}
	active := 0
	for i, argID := range callNode.Children[1:] {
		argNode := sf.Tree.Get(argID)
		if argNode != nil && offset > argNode.Start {
			active = i
		}
	}
	var doc string
	if def := definitionNodeOf(sf, callNode.Children[0]); def != nil {
		if d, ok := docstring.Extract(sf.Tree, def, bodySuiteStart(sf.Tree, def)); ok {
			doc = d
		}
	}
	return &SignatureInfo{
		Signature:     renderSignature(fn),
		Doc:           doc,
		ActiveParam:   active,
		HasActiveCall: true,
	}, true
}

func functionOfCallee(t *types.Type) *types.Function {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KindFunction:
		return t.Function
	case types.KindOverloadedFunction:
		if t.OverloadImpl != nil {
			return t.OverloadImpl
		}
		if len(t.Overloads) > 0 {
			return t.Overloads[0]
		}
	}
	return nil
}

func renderSignature(fn *types.Function) string {
	var b strings.Builder
	b.WriteString(fn.Name)
	b.WriteByte('(')
	for i, param := range fn.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Name)
	}
	b.WriteByte(')')
	return b.String()
}

// definitionNodeOf returns the FunctionDef a callee Name expression
// resolves to, when its latest declaration's Node is one, so a docstring
// can be found for the hover/signature surface. Any other callee,
// including a class, yields nil.
func definitionNodeOf(sf *SourceFile, calleeID pyast.NodeID) *pyast.Node {
	n := sf.Tree.Get(calleeID)
	if n == nil || n.Kind != pyast.KindName {
		return nil
	}
	scope := enclosingScopeOf(sf.Bound, calleeID)
	if scope == nil {
		return nil
	}
	sym, _ := scope.Lookup(n.Name)
	if sym == nil || sym.Latest() == nil {
		return nil
	}
	def := sf.Tree.Get(sym.Latest().Node)
	if def == nil || def.Kind != pyast.KindFunctionDef {
		return nil
	}
	return def
}

// bodySuiteStart finds the index within def.Children where the function
// body's statements begin, skipping the leading Parameters node and an
// optional return annotation — the same layout evaluator.functionOf
// parses.
func bodySuiteStart(file *pyast.File, def *pyast.Node) int {
	bodyStart := 0
	if len(def.Children) > 0 {
		if pn := file.Get(def.Children[0]); pn != nil && pn.Kind == pyast.KindParameters {
			bodyStart = 1
		}
	}
	if bodyStart < len(def.Children) {
		if rn := file.Get(def.Children[bodyStart]); rn != nil && !isStatementLikeKind(rn.Kind) {
			bodyStart++
		}
	}
	return bodyStart
}

// isStatementLikeKind reports whether k is a statement kind (vs. an
// expression used as a return-annotation), mirroring the unexported
// evaluator.isStatementKind without depending on that package's
// internals.
func isStatementLikeKind(k pyast.Kind) bool {
	switch k {
	case pyast.KindExprStmt, pyast.KindAssign, pyast.KindAugAssign, pyast.KindAnnAssign,
		pyast.KindReturn, pyast.KindPass, pyast.KindBreak, pyast.KindContinue,
		pyast.KindRaise, pyast.KindGlobal, pyast.KindNonlocal, pyast.KindImport,
		pyast.KindImportFrom, pyast.KindIf, pyast.KindWhile, pyast.KindFor,
		pyast.KindTry, pyast.KindWith, pyast.KindFunctionDef, pyast.KindClassDef,
		pyast.KindDel, pyast.KindAssert:
		return true
	default:
		return false
	}
}

// FindReferences implements §6's find_references: every Name node across
// every tracked-or-loaded file whose lookup resolves to the same symbol
// declaration set as the one at pos.
func (p *Program) FindReferences(path string, pos sourcetext.Position, includeDeclaration bool) ([]sourcetext.Range, bool) {
	sf, id, ok := p.nodeAt(path, pos)
	if !ok {
		return nil, false
	}
	n := sf.Tree.Get(id)
	if n == nil || n.Kind != pyast.KindName {
		return nil, false
	}
	scope := enclosingScopeOf(sf.Bound, id)
	if scope == nil {
		return nil, false
	}
	target, _ := scope.Lookup(n.Name)
	if target == nil {
		return nil, false
	}
	var out []sourcetext.Range
	for _, candidate := range p.files {
		if candidate.Bound == nil {
			continue
		}
		candidate.Tree.Walk(candidate.Tree.Root, func(nid pyast.NodeID, cn *pyast.Node) bool {
			if cn.Kind != pyast.KindName || cn.Name != n.Name {
				return true
			}
			cscope := enclosingScopeOf(candidate.Bound, nid)
			if cscope == nil {
				return true
			}
			sym, _ := cscope.Lookup(cn.Name)
			if sym != target {
				return true
			}
			if !includeDeclaration && nid == id {
				return true
			}
			out = append(out, sourcetext.Range{Start: cn.Start, End: cn.End})
			return true
		})
	}
	return out, true
}
