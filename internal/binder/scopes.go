package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// bindFunctionDef declares the function's own symbol in the enclosing
// scope, then binds its parameters and body in a fresh Function scope
// with its own independent flow graph (a function's body runs at call
// time, not at definition time, so it doesn't inherit the defining
// flow position — only the defining Assignment that follows it does).
func (b *binder) bindFunctionDef(id pyast.NodeID, n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	for _, d := range n.Decorators {
		b.annotateRefs(d, cur)
	}
	// Parameter default values and annotations are evaluated in the
	// enclosing scope at definition time.
	var params *pyast.Node
	var bodyStart int
	if len(n.Children) > 0 {
		if pn := b.file.Get(n.Children[0]); pn != nil && pn.Kind == pyast.KindParameters {
			params = pn
			bodyStart = 1
		}
	}
	var retAnn pyast.NodeID = pyast.InvalidNodeID
	if bodyStart < len(n.Children) {
		if rn := b.file.Get(n.Children[bodyStart]); rn != nil && !isStatementKind(rn.Kind) {
			retAnn = n.Children[bodyStart]
			bodyStart++
		}
	}
	if params != nil {
		for _, p := range params.Children {
			pn := b.file.Get(p)
			if pn == nil {
				continue
			}
			for _, sub := range pn.Children {
				b.annotateRefs(sub, cur)
			}
		}
	}
	b.annotateRefs(retAnn, cur)

	fnScope := newScope(ScopeFunction, scope, id)
	b.out.Scopes[id] = fnScope
	fnStart := b.newFlow(FlowStart, id)
	if params != nil {
		for _, p := range params.Children {
			pn := b.file.Get(p)
			if pn == nil {
				continue
			}
			decl := b.declAt(DeclParameter, p)
			decl.ParamKind = pn.ParamKind
			if len(pn.Children) > 0 {
				first := b.file.Get(pn.Children[0])
				if first != nil {
					decl.Annotation = pn.Children[0]
				}
			}
			b.declare(fnScope, pn.Name, decl)
			b.out.ReferenceFlow[p] = fnStart
		}
	}
	body := n.Children[bodyStart:]
	b.bindStatements(body, fnScope, fnStart)

	decl := b.declAt(DeclFunction, id)
	decl.IsMethod = scope.Kind == ScopeClass
	b.declare(scope, n.Name, decl)
	return b.newFlow(FlowAssignment, id, cur).withNames(b, []string{n.Name})
}

// bindClassDef declares the class symbol, evaluates its bases/keywords in
// the enclosing scope, and binds the class body in a fresh Class scope
// with its own flow graph (class bodies execute once, sequentially, at
// class-creation time).
func (b *binder) bindClassDef(id pyast.NodeID, n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	for _, d := range n.Decorators {
		b.annotateRefs(d, cur)
	}
	var bases, body []pyast.NodeID
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn != nil && isStatementKind(cn.Kind) {
			body = append(body, c)
		} else {
			bases = append(bases, c)
		}
	}
	for _, base := range bases {
		b.annotateRefs(base, cur)
	}

	classScope := newScope(ScopeClass, scope, id)
	b.out.Scopes[id] = classScope
	classStart := b.newFlow(FlowStart, id)
	b.bindStatements(body, classScope, classStart)

	decl := b.declAt(DeclClass, id)
	b.declare(scope, n.Name, decl)
	return b.newFlow(FlowAssignment, id, cur).withNames(b, []string{n.Name})
}

// bindLambda binds a lambda expression's parameters and body expression
// in a fresh Function-kind scope. Called from annotateRefs when the walk
// reaches a Lambda node inline in an expression.
func (b *binder) bindLambda(id pyast.NodeID, scope *Scope, cur FlowID) {
	n := b.file.Get(id)
	if n == nil || len(n.Children) < 2 {
		return
	}
	params := b.file.Get(n.Children[0])
	bodyExpr := n.Children[1]
	if params != nil {
		for _, p := range params.Children {
			pn := b.file.Get(p)
			if pn == nil {
				continue
			}
			for _, sub := range pn.Children {
				b.annotateRefs(sub, cur)
			}
		}
	}
	fnScope := newScope(ScopeFunction, scope, id)
	b.out.Scopes[id] = fnScope
	fnStart := b.newFlow(FlowStart, id)
	if params != nil {
		for _, p := range params.Children {
			pn := b.file.Get(p)
			if pn == nil {
				continue
			}
			decl := b.declAt(DeclParameter, p)
			decl.ParamKind = pn.ParamKind
			b.declare(fnScope, pn.Name, decl)
			b.out.ReferenceFlow[p] = fnStart
		}
	}
	b.annotateRefs(bodyExpr, fnStart)
}

// bindComprehension binds a list/set/dict/generator comprehension's
// `for`/`if` clauses in a fresh Comprehension scope, processing clauses
// left to right so each clause's iterable sees targets bound by earlier
// clauses (matching Python's left-to-right comprehension scoping), then
// binds the result element expression last.
func (b *binder) bindComprehension(id pyast.NodeID, scope *Scope, cur FlowID) {
	n := b.file.Get(id)
	if n == nil || len(n.Children) == 0 {
		return
	}
	element := n.Children[0]
	compScope := newScope(ScopeComprehension, scope, id)
	b.out.Scopes[id] = compScope
	flow := b.newFlow(FlowStart, id, cur)
	for _, c := range n.Children[1:] {
		cn := b.file.Get(c)
		if cn == nil || cn.Kind != pyast.KindComprehensionClause || len(cn.Children) < 2 {
			continue
		}
		target, iter := cn.Children[0], cn.Children[1]
		b.annotateRefs(iter, flow)
		names := b.bindTargets(target, compScope, DeclVariable, flow)
		flow = b.newFlow(FlowAssignment, c, flow).withNames(b, names)
		for _, cond := range cn.Children[2:] {
			b.annotateRefs(cond, flow)
		}
	}
	b.annotateRefs(element, flow)
}
