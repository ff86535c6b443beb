package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// bindIf handles `if`/`elif`/`else`, forking into Branch flow nodes for
// the True/False edges and rejoining at a Label, per §4.4 step 3.
// An `elif` was parsed as a nested If node reused as the "else" arm, so
// this single function handles arbitrarily long elif chains.
func (b *binder) bindIf(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) == 0 {
		return cur
	}
	cond := n.Children[0]
	b.annotateRefs(cond, cur)

	rest := n.Children[1:]
	bodyLen := n.PrimaryBodyLen
	if bodyLen > len(rest) {
		bodyLen = len(rest)
	}
	body, tail := rest[:bodyLen], rest[bodyLen:]

	trueEntry := b.newFlow(FlowBranch, cond, cur)
	b.out.Flow[trueEntry].BranchTrue = true
	falseEntry := b.newFlow(FlowBranch, cond, cur)
	b.out.Flow[falseEntry].BranchTrue = false

	curTrue := b.bindStatements(body, scope, trueEntry)

	var curFalse FlowID
	switch {
	case len(tail) == 0:
		curFalse = falseEntry
	case len(tail) == 1 && b.file.Get(tail[0]).Kind == pyast.KindIf:
		// elif: the tail is a single nested If reused as the false arm.
		curFalse = b.bindStmt(tail[0], scope, falseEntry)
	default:
		// else: tail is the else-suite's statements directly.
		curFalse = b.bindStatements(tail, scope, falseEntry)
	}

	return b.newFlow(FlowLabel, 0, curTrue, curFalse)
}

func (b *binder) bindWhile(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) == 0 {
		return cur
	}
	cond := n.Children[0]
	b.annotateRefs(cond, cur)

	rest := n.Children[1:]
	bodyLen := n.PrimaryBodyLen
	if bodyLen > len(rest) {
		bodyLen = len(rest)
	}
	body, elseBody := rest[:bodyLen], rest[bodyLen:]

	entryLabel := b.newFlow(FlowLabel, cond, cur)
	trueEntry := b.newFlow(FlowBranch, cond, entryLabel)
	b.out.Flow[trueEntry].BranchTrue = true

	b.loops = append(b.loops, &loopCtx{})
	curAfterBody := b.bindStatements(body, scope, trueEntry)
	loop := b.loops[len(b.loops)-1]
	b.loops = b.loops[:len(b.loops)-1]
	b.addAntecedent(entryLabel, curAfterBody)
	for _, c := range loop.continues {
		b.addAntecedent(entryLabel, c)
	}

	falseEntry := b.newFlow(FlowBranch, cond, entryLabel)
	b.out.Flow[falseEntry].BranchTrue = false
	// The `else` suite runs only on normal (non-break) loop exit.
	curAfterElse := b.bindStatements(elseBody, scope, falseEntry)

	postAntecedents := append([]FlowID{curAfterElse}, loop.breaks...)
	post := b.newFlow(FlowLabel, 0, postAntecedents...)
	return post
}

func (b *binder) bindFor(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	if len(n.Children) < 2 {
		return cur
	}
	target, iter := n.Children[0], n.Children[1]
	b.annotateRefs(iter, cur)

	rest := n.Children[2:]
	bodyLen := n.PrimaryBodyLen
	if bodyLen > len(rest) {
		bodyLen = len(rest)
	}
	body, elseBody := rest[:bodyLen], rest[bodyLen:]

	entryLabel := b.newFlow(FlowLabel, iter, cur)
	names := b.bindTargets(target, scope, DeclVariable, entryLabel)
	bodyEntry := b.newFlow(FlowAssignment, target, entryLabel)
	b.out.Flow[bodyEntry].Names = names

	b.loops = append(b.loops, &loopCtx{})
	curAfterBody := b.bindStatements(body, scope, bodyEntry)
	loop := b.loops[len(b.loops)-1]
	b.loops = b.loops[:len(b.loops)-1]
	b.addAntecedent(entryLabel, curAfterBody)
	for _, c := range loop.continues {
		b.addAntecedent(entryLabel, c)
	}

	// The `else` suite runs on normal exhaustion of the iterable,
	// including the zero-iteration case (both flow from entryLabel).
	curAfterElse := b.bindStatements(elseBody, scope, entryLabel)
	postAntecedents := append([]FlowID{curAfterElse}, loop.breaks...)
	post := b.newFlow(FlowLabel, 0, postAntecedents...)
	return post
}

func (b *binder) bindTry(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	var nonHandlers []pyast.NodeID
	var handlers []pyast.NodeID
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn == nil {
			continue
		}
		if cn.Kind == pyast.KindExceptHandler {
			handlers = append(handlers, c)
			continue
		}
		nonHandlers = append(nonHandlers, c)
	}
	tryLen := n.PrimaryBodyLen
	if tryLen > len(nonHandlers) {
		tryLen = len(nonHandlers)
	}
	tryBody := nonHandlers[:tryLen]
	rest := nonHandlers[tryLen:]
	elseLen := n.SecondaryBodyLen
	if elseLen > len(rest) {
		elseLen = len(rest)
	}
	elseBody, finallyBody := rest[:elseLen], rest[elseLen:]

	bodyEntry := cur
	curAfterBody := b.bindStatements(tryBody, scope, bodyEntry)

	var handlerJoins []FlowID
	for _, h := range handlers {
		hn := b.file.Get(h)
		if hn == nil {
			continue
		}
		// Exceptions can interrupt the try body at any point; approximate
		// every handler's entry as reachable from the body's start.
		handlerEntry := b.newFlow(FlowLabel, h, bodyEntry)
		hBody := hn.Children
		if len(hBody) > 0 {
			first := b.file.Get(hBody[0])
			if first != nil && !isStatementKind(first.Kind) {
				b.annotateRefs(hBody[0], handlerEntry)
				hBody = hBody[1:]
			}
		}
		curHandlerEntry := handlerEntry
		if hn.Name != "" {
			decl := b.declAt(DeclVariable, h)
			b.declare(scope, hn.Name, decl)
			curHandlerEntry = b.newFlow(FlowAssignment, h, handlerEntry).withNames(b, []string{hn.Name})
		}
		curAfterHandler := b.bindStatements(hBody, scope, curHandlerEntry)
		handlerJoins = append(handlerJoins, curAfterHandler)
	}

	// `else` runs only when the try body completed without raising.
	curAfterElse := b.bindStatements(elseBody, scope, curAfterBody)

	preFinally := b.newFlow(FlowLabel, 0, append([]FlowID{curAfterElse}, handlerJoins...)...)
	if len(finallyBody) == 0 {
		return preFinally
	}
	curAfterFinally := b.bindStatements(finallyBody, scope, preFinally)
	return b.newFlow(FlowPostFinally, 0, curAfterFinally)
}

// isStatementKind reports whether kind is a statement production (as
// opposed to an expression), used to separate an ExceptHandler's
// optional leading exception-type expression from its suite.
func isStatementKind(kind pyast.Kind) bool {
	switch kind {
	case pyast.KindClassDef, pyast.KindFunctionDef, pyast.KindAssign, pyast.KindAugAssign,
		pyast.KindAnnAssign, pyast.KindIf, pyast.KindWhile, pyast.KindFor, pyast.KindTry,
		pyast.KindWith, pyast.KindReturn, pyast.KindRaise, pyast.KindGlobal, pyast.KindNonlocal,
		pyast.KindImport, pyast.KindImportFrom, pyast.KindPass, pyast.KindBreak, pyast.KindContinue,
		pyast.KindAssert, pyast.KindDel, pyast.KindExprStmt, pyast.KindError:
		return true
	default:
		return false
	}
}

func (b *binder) bindWith(n *pyast.Node, scope *Scope, cur FlowID) FlowID {
	var items []pyast.NodeID
	var body []pyast.NodeID
	for _, c := range n.Children {
		cn := b.file.Get(c)
		if cn != nil && cn.Kind == pyast.KindWithItem {
			items = append(items, c)
		} else {
			body = append(body, c)
		}
	}
	for _, item := range items {
		itn := b.file.Get(item)
		if itn == nil || len(itn.Children) == 0 {
			continue
		}
		ctx := itn.Children[0]
		b.annotateRefs(ctx, cur)
		if len(itn.Children) > 1 {
			names := b.bindTargets(itn.Children[1], scope, DeclVariable, cur)
			if len(names) > 0 {
				cur = b.newFlow(FlowAssignment, item, cur).withNames(b, names)
			}
		}
	}
	curAfterBody := b.bindStatements(body, scope, cur)
	return b.newFlow(FlowPostContextManager, 0, curAfterBody)
}
