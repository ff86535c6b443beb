package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// bindStatements threads cur sequentially through stmts, returning the
// flow id reached after the last statement. Branching constructs recurse
// and rejoin at a label before control returns here.
func (b *binder) bindStatements(stmts []pyast.NodeID, scope *Scope, cur FlowID) FlowID {
	for _, id := range stmts {
		cur = b.bindStmt(id, scope, cur)
	}
	return cur
}

func (b *binder) bindStmt(id pyast.NodeID, scope *Scope, cur FlowID) FlowID {
	n := b.file.Get(id)
	if n == nil {
		return cur
	}
	b.curScope = scope
	switch n.Kind {
	case pyast.KindPass, pyast.KindError:
		return cur

	case pyast.KindExprStmt:
		if len(n.Children) > 0 {
			b.annotateRefs(n.Children[0], cur)
		}
		return cur

	case pyast.KindAssign:
		return b.bindAssign(n, scope, cur)
	case pyast.KindAugAssign:
		return b.bindAugAssign(n, scope, cur)
	case pyast.KindAnnAssign:
		return b.bindAnnAssign(n, scope, cur)

	case pyast.KindGlobal:
		for _, c := range n.Children {
			cn := b.file.Get(c)
			if cn != nil {
				scope.Global[cn.Name] = true
			}
		}
		return cur
	case pyast.KindNonlocal:
		for _, c := range n.Children {
			cn := b.file.Get(c)
			if cn != nil {
				scope.Nonlocal[cn.Name] = true
			}
		}
		return cur

	case pyast.KindReturn, pyast.KindYield, pyast.KindYieldFrom:
		for _, c := range n.Children {
			b.annotateRefs(c, cur)
		}
		return b.newFlow(FlowUnreachable, id, cur)

	case pyast.KindRaise:
		for _, c := range n.Children {
			b.annotateRefs(c, cur)
		}
		return b.newFlow(FlowUnreachable, id, cur)

	case pyast.KindBreak:
		if len(b.loops) > 0 {
			top := b.loops[len(b.loops)-1]
			top.breaks = append(top.breaks, cur)
		}
		return b.newFlow(FlowUnreachable, id, cur)
	case pyast.KindContinue:
		if len(b.loops) > 0 {
			top := b.loops[len(b.loops)-1]
			top.continues = append(top.continues, cur)
		}
		return b.newFlow(FlowUnreachable, id, cur)

	case pyast.KindAssert:
		for _, c := range n.Children {
			b.annotateRefs(c, cur)
		}
		trueBranch := b.newFlow(FlowBranch, id, cur)
		b.out.Flow[trueBranch].BranchTrue = true
		return trueBranch

	case pyast.KindDel:
		for _, c := range n.Children {
			b.annotateRefs(c, cur)
		}
		return cur

	case pyast.KindImport:
		return b.bindImport(n, scope, cur)
	case pyast.KindImportFrom:
		return b.bindImportFrom(n, scope, cur)

	case pyast.KindIf:
		return b.bindIf(n, scope, cur)
	case pyast.KindWhile:
		return b.bindWhile(n, scope, cur)
	case pyast.KindFor:
		return b.bindFor(n, scope, cur)
	case pyast.KindTry:
		return b.bindTry(n, scope, cur)
	case pyast.KindWith:
		return b.bindWith(n, scope, cur)

	case pyast.KindFunctionDef:
		return b.bindFunctionDef(id, n, scope, cur)
	case pyast.KindClassDef:
		return b.bindClassDef(id, n, scope, cur)

	default:
		// Any other statement form reduces to "evaluate its subtrees at
		// the current flow"; safe default for grammar corners not yet
		// given dedicated flow semantics.
		b.annotateRefs(id, cur)
		return cur
	}
}

// bindTargets records declarations for every simple Name found in a
// (possibly nested) assignment target, skipping Attribute/Subscript
// targets (those mutate an existing object, they don't bind a symbol)
// and recursing through Tuple/List/Starred unpacking. It returns the
// bound names for the caller's Assignment flow node.
func (b *binder) bindTargets(target pyast.NodeID, scope *Scope, declKind DeclKind, cur FlowID) []string {
	n := b.file.Get(target)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case pyast.KindName:
		b.declare(scope, n.Name, b.declAt(declKind, target))
		b.out.ReferenceFlow[target] = cur
		return []string{n.Name}
	case pyast.KindTuple, pyast.KindListExpr:
		var names []string
		for _, c := range n.Children {
			names = append(names, b.bindTargets(c, scope, declKind, cur)...)
		}
		return names
	case pyast.KindStarred:
		if len(n.Children) > 0 {
			return b.bindTargets(n.Children[0], scope, declKind, cur)
		}
		return nil
	case pyast.KindAttribute, pyast.KindSubscript:
		if len(n.Children) > 0 {
			b.annotateRefs(n.Children[0], cur)
		}
		return nil
	default:
		b.annotateRefs(target, cur)
		return nil
	}
}

func (b *binder) bindAssign(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) == 0 {
		return cur
	}
	value := n.Children[len(n.Children)-1]
	targets := n.Children[:len(n.Children)-1]
	b.annotateRefs(value, cur)
	var names []string
	for _, t := range targets {
		names = append(names, b.bindTargets(t, scope, DeclVariable, cur)...)
	}
	if len(names) == 0 {
		return cur
	}
	return b.newFlow(FlowAssignment, 0, cur).withNames(b, names)
}

func (b *binder) bindAugAssign(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) < 2 {
		return cur
	}
	target, value := n.Children[0], n.Children[1]
	b.annotateRefs(value, cur)
	b.annotateRefs(target, cur) // aug-assign also reads the target
	names := b.bindTargets(target, scope, DeclVariable, cur)
	if len(names) == 0 {
		return cur
	}
	return b.newFlow(FlowAssignment, 0, cur).withNames(b, names)
}

func (b *binder) bindAnnAssign(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) < 2 {
		return cur
	}
	target, ann := n.Children[0], n.Children[1]
	var value pyast.NodeID = pyast.InvalidNodeID
	if len(n.Children) > 2 {
		value = n.Children[2]
		b.annotateRefs(value, cur)
	}
	b.annotateRefs(ann, cur)
	tn := b.file.Get(target)
	if tn == nil || tn.Kind != pyast.KindName {
		b.annotateRefs(target, cur)
		return cur
	}
	decl := b.declAt(DeclVariable, target)
	decl.Annotation = ann
	decl.IsFinal = isFinalAnnotation(b.file, ann)
	decl.IsConstant = decl.IsFinal && value != pyast.InvalidNodeID
	b.declare(scope, tn.Name, decl)
	b.out.ReferenceFlow[target] = cur
	return b.newFlow(FlowAssignment, 0, cur).withNames(b, []string{tn.Name})
}

// isFinalAnnotation reports whether ann spells `Final` or `Final[...]`,
// the only annotation form that marks a Variable declaration constant
// per §3 "Variable records is_constant, is_final".
func isFinalAnnotation(file *pyast.File, ann pyast.NodeID) bool {
	n := file.Get(ann)
	if n == nil {
		return false
	}
	switch n.Kind {
	case pyast.KindName:
		return n.Name == "Final"
	case pyast.KindSubscript:
		if len(n.Children) == 0 {
			return false
		}
		base := file.Get(n.Children[0])
		return base != nil && base.Kind == pyast.KindName && base.Name == "Final"
	case pyast.KindAttribute:
		return n.Name == "Final"
	}
	return false
}

func (b *binder) bindImport(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	var names []string
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn == nil {
			continue
		}
		segments := splitDotted(cn.ImportModule)
		if len(segments) == 0 {
			continue
		}
		bindName := segments[0]
		chain := segments
		if cn.ImportAlias != "" {
			bindName = cn.ImportAlias
			chain = segments
		}
		decl := b.declAt(DeclAlias, c)
		decl.ImportPath = cn.ImportModule
		decl.SubmoduleChain = chain
		b.declare(scope, bindName, decl)
		b.out.ReferenceFlow[c] = cur
		names = append(names, bindName)
	}
	if len(names) == 0 {
		return cur
	}
	return b.newFlow(FlowAssignment, 0, cur).withNames(b, names)
}

func (b *binder) bindImportFrom(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if n.IsWildcard {
		return b.newFlow(FlowWildcardImport, 0, cur)
	}
	var names []string
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn == nil {
			continue
		}
		bindName := cn.Name
		if cn.ImportAlias != "" {
			bindName = cn.ImportAlias
		}
		decl := b.declAt(DeclAlias, c)
		decl.ImportPath = n.ImportModule
		decl.SubmoduleChain = []string{cn.Name}
		b.declare(scope, bindName, decl)
		b.out.ReferenceFlow[c] = cur
		names = append(names, bindName)
	}
	if len(names) == 0 {
		return cur
	}
	return b.newFlow(FlowAssignment, 0, cur).withNames(b, names)
}

func splitDotted(s string) []string {
	if s == "" {
		return nil
	}
	out := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// withNames sets Names on the just-created flow node and returns its id,
// a small chaining helper since newFlow itself must stay general.
func (id FlowID) withNames(b *binder, names []string) FlowID {
	b.out.Flow[id].Names = names
	return id
}
