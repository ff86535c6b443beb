package program

import (
	"context"

	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/diagnostic"
	"github.com/shivasurya/pathfinder-pytype/internal/evaluator"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// computeDiagnostics runs the semantic checks of §7.2 over sf's freshly
// bound tree: unresolved imports, Optional subscript/member access (§8
// S3), TypedDict literal key validation, and possibly-unbound names (§8
// S6). Cancellation is checked once per top-level statement, per §5.
func (p *Program) computeDiagnostics(ctx context.Context, sf *SourceFile) error {
	root := sf.Tree.Get(sf.Tree.Root)
	if root == nil {
		return nil
	}
	for _, stmt := range root.Children {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.checkSubtree(sf, stmt)
	}
	return nil
}

// checkSubtree walks stmt's whole subtree (including nested function and
// class bodies) looking for the node shapes each check recognizes.
func (p *Program) checkSubtree(sf *SourceFile, id pyast.NodeID) {
	sf.Tree.Walk(id, func(nid pyast.NodeID, n *pyast.Node) bool {
		switch n.Kind {
		case pyast.KindImport:
			p.checkImportNode(sf, n)
		case pyast.KindImportFrom:
			p.checkImportFromNode(sf, n)
		case pyast.KindSubscript:
			p.checkOptionalSubscript(sf, nid, n)
		case pyast.KindAttribute:
			p.checkOptionalMemberAccess(sf, nid, n)
		case pyast.KindAnnAssign:
			p.checkTypedDictLiteral(sf, n)
		case pyast.KindName:
			p.checkPossiblyUnbound(sf, nid, n)
		}
		return true
	})
}

func (p *Program) report(sf *SourceFile, code string, rng sourcetext.Range, msg string, actions ...diagnostic.Action) {
	sev := p.opts.Rules.SeverityFor(code)
	if sev == diagnostic.SeverityNone {
		return
	}
	sf.sink.Report(diagnostic.Diagnostic{
		File:     sf.Path,
		Severity: sev,
		Code:     code,
		Range:    sourcetext.Range{Start: rng.Start, End: rng.End},
		Message:  msg,
		Actions:  actions,
	})
}

func (p *Program) checkImportNode(sf *SourceFile, n *pyast.Node) {
	for _, c := range n.Children {
		cn := sf.Tree.Get(c)
		if cn == nil {
			continue
		}
		res := p.resolver.Resolve(sf.Path, cn.ImportModule, 0)
		if res.Type == pyimport.ImportUnknown {
			p.report(sf, diagnostic.RuleMissingImport,
				sourcetext.Range{Start: cn.Start, End: cn.End},
				"could not resolve import \""+cn.ImportModule+"\"",
				diagnostic.Action{Kind: diagnostic.ActionCreateTypeStub, ModuleName: cn.ImportModule})
		}
	}
}

func (p *Program) checkImportFromNode(sf *SourceFile, n *pyast.Node) {
	if n.IsWildcard {
		return
	}
	res := p.resolver.Resolve(sf.Path, n.ImportModule, n.ImportLevel)
	if res.Type == pyimport.ImportUnknown {
		p.report(sf, diagnostic.RuleMissingImport,
			sourcetext.Range{Start: n.Start, End: n.End},
			"could not resolve import \""+n.ImportModule+"\"",
			diagnostic.Action{Kind: diagnostic.ActionCreateTypeStub, ModuleName: n.ImportModule})
	}
}

// unionContainsNone reports whether t is a union with a NoneType member,
// the shape produced for an `Optional[X]`/`X | None` annotation.
func unionContainsNone(t *types.Type) bool {
	if t == nil || t.Kind != types.KindUnion {
		return false
	}
	for _, m := range t.Members {
		if m.Kind == types.KindObject && m.Class != nil && m.Class.Name == "NoneType" {
			return true
		}
	}
	return false
}

func (p *Program) checkOptionalSubscript(sf *SourceFile, id pyast.NodeID, n *pyast.Node) {
	if len(n.Children) == 0 {
		return
	}
	target := p.ev.TypeOf(sf.Bound, n.Children[0])
	if unionContainsNone(target) {
		p.report(sf, diagnostic.RuleOptionalSubscript,
			sourcetext.Range{Start: n.Start, End: n.End},
			"object is possibly None and is not subscriptable",
			diagnostic.Action{Kind: diagnostic.ActionAddMissingOptional, TypeNodeOffset: n.Start})
	}
}

func (p *Program) checkOptionalMemberAccess(sf *SourceFile, id pyast.NodeID, n *pyast.Node) {
	if len(n.Children) == 0 {
		return
	}
	target := p.ev.TypeOf(sf.Bound, n.Children[0])
	if unionContainsNone(target) {
		p.report(sf, diagnostic.RuleOptionalMemberAccess,
			sourcetext.Range{Start: n.Start, End: n.End},
			"object is possibly None and has no attribute \""+n.Name+"\"",
			diagnostic.Action{Kind: diagnostic.ActionAddMissingOptional, TypeNodeOffset: n.Start})
	}
}

// checkTypedDictLiteral validates `name: TDClass = {...}` assignments
// against the TypedDict's declared fields (§4.5 "TypedDict key
// validation").
func (p *Program) checkTypedDictLiteral(sf *SourceFile, n *pyast.Node) {
	if len(n.Children) != 3 {
		return
	}
	annType := p.ev.EvalAnnotation(sf.Bound, n.Children[1])
	if annType == nil || annType.Kind != types.KindObject || annType.Class == nil || !annType.Class.Flags.TypedDict {
		return
	}
	valueNode := sf.Tree.Get(n.Children[2])
	if valueNode == nil || valueNode.Kind != pyast.KindDictExpr {
		return
	}
	var keys []string
	for i := 0; i+1 < len(valueNode.Children); i += 2 {
		keyNode := sf.Tree.Get(valueNode.Children[i])
		if keyNode == nil || keyNode.Kind != pyast.KindStringLit {
			return // a non-literal key defeats static validation
		}
		keys = append(keys, keyNode.StringValue)
	}
	for _, e := range evaluator.ValidateTypedDictLiteral(annType.Class, keys) {
		if e.Missing {
			p.report(sf, diagnostic.RuleTypedDictKey,
				sourcetext.Range{Start: valueNode.Start, End: valueNode.End},
				"missing required key \""+e.Key+"\" for TypedDict \""+annType.Class.Name+"\"")
		} else {
			p.report(sf, diagnostic.RuleTypedDictKey,
				sourcetext.Range{Start: valueNode.Start, End: valueNode.End},
				"key \""+e.Key+"\" is not declared on TypedDict \""+annType.Class.Name+"\"")
		}
	}
}

// checkPossiblyUnbound implements §8 S6: a Name reference whose symbol's
// every declaration is an ordinary variable assignment (never a
// parameter, function, class, import alias, or builtin — those are
// always bound by definition) is flagged when at least one path through
// the flow graph reaches the file's start without an intervening
// assignment of that name.
func (p *Program) checkPossiblyUnbound(sf *SourceFile, id pyast.NodeID, n *pyast.Node) {
	switch n.Name {
	case "None", "True", "False":
		return
	}
	scope := enclosingScopeOf(sf.Bound, id)
	if scope == nil || scope.Kind == binder.ScopeBuiltin {
		return
	}
	sym, declScope := scope.Lookup(n.Name)
	if sym == nil || declScope == nil || declScope.Kind == binder.ScopeBuiltin {
		return
	}
	for _, d := range sym.Declarations {
		if d.Kind != binder.DeclVariable {
			return
		}
	}
	flowID, ok := sf.Bound.ReferenceFlow[id]
	if !ok {
		return
	}
	if hasUnboundPath(sf.Bound, flowID, n.Name, make(map[binder.FlowID]bool)) {
		p.report(sf, diagnostic.RulePossiblyUnbound,
			sourcetext.Range{Start: n.Start, End: n.End},
			"\""+n.Name+"\" is possibly unbound")
	}
}

// hasUnboundPath walks backward from id through the flow graph's
// antecedents, returning true as soon as it finds a path reaching
// FlowStart without passing an Assignment that binds name.
func hasUnboundPath(bf *binder.BoundFile, id binder.FlowID, name string, visited map[binder.FlowID]bool) bool {
	if visited[id] {
		return false
	}
	visited[id] = true
	node := bf.FlowNode(id)
	if node == nil {
		return false
	}
	switch node.Kind {
	case binder.FlowStart:
		return true
	case binder.FlowAssignment:
		for _, bound := range node.Names {
			if bound == name {
				return false
			}
		}
	}
	if len(node.Antecedents) == 0 {
		return false
	}
	for _, a := range node.Antecedents {
		if hasUnboundPath(bf, a, name, visited) {
			return true
		}
	}
	return false
}

// enclosingScopeOf mirrors evaluator's unexported enclosingScope: pyast
// nodes carry no scope pointer, so the nearest scope-introducing ancestor
// the binder recorded is found by walking parent links.
func enclosingScopeOf(bf *binder.BoundFile, node pyast.NodeID) *binder.Scope {
	for cur := node; cur != pyast.InvalidNodeID; {
		n := bf.File.Get(cur)
		if n == nil {
			break
		}
		if s, ok := bf.ScopeOf(cur); ok {
			return s
		}
		cur = n.Parent
	}
	return bf.ModuleScope
}
