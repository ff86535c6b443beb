package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// narrowAt computes the narrowed type reaching the given Name reference
// by walking backward from its attached flow id through the binder's
// antecedent graph, applying each Branch node's condition as a predicate
// filter on static when that condition tests sym, per §4.5 "Flow
// narrowing". Predicates recognized: isinstance (True edge only),
// None-comparison, truth tests, `type(x) is C`; `callable(x)` is not
// narrowed. `assert`/walrus narrow by virtue of being ordinary
// Branch/Assignment nodes already in the graph.
func (e *Evaluator) narrowAt(file *binder.BoundFile, ref pyast.NodeID, sym *binder.Symbol, static *types.Type) *types.Type {
	start, ok := file.ReferenceFlow[ref]
	if !ok {
		return static
	}
	visited := make(map[binder.FlowID]bool)
	return e.walkFlow(file, start, sym, static, visited)
}

func (e *Evaluator) walkFlow(file *binder.BoundFile, id binder.FlowID, sym *binder.Symbol, static *types.Type, visited map[binder.FlowID]bool) *types.Type {
	if visited[id] {
		// A loop back-edge: the type reaching here is whatever the
		// static declared type says, since the narrowed type at a loop
		// header must already account for every iteration.
		return static
	}
	visited[id] = true
	node := file.FlowNode(id)
	if node == nil {
		return static
	}
	switch node.Kind {
	case binder.FlowStart:
		return static
	case binder.FlowAssignment:
		for _, n := range node.Names {
			if n == sym.Name {
				// This is the nearest reaching assignment; its own
				// narrowed type comes from the assigned value's type,
				// which a caller (evalName) already folds into static
				// via typeOfDeclarations — further walking back of an
				// assignment doesn't refine this reference any more.
				return static
			}
		}
		return e.antecedentUnion(file, node, sym, static)
	case binder.FlowBranch:
		refined, matched := e.applyPredicate(file, node, sym, static)
		if matched {
			return refined
		}
		return e.antecedentUnion(file, node, sym, static)
	case binder.FlowTrueNeverCondition, binder.FlowFalseNeverCondition:
		return types.Unknown()
	default:
		return e.antecedentUnion(file, node, sym, static)
	}
}

func (e *Evaluator) antecedentUnion(file *binder.BoundFile, node *binder.FlowNode, sym *binder.Symbol, static *types.Type) *types.Type {
	if len(node.Antecedents) == 0 {
		return static
	}
	members := make([]*types.Type, 0, len(node.Antecedents))
	for _, a := range node.Antecedents {
		members = append(members, e.walkFlow(file, a, sym, static, map[binder.FlowID]bool{}))
	}
	return types.NewUnion(members...)
}

// applyPredicate inspects a Branch flow node's condition expression for a
// recognized narrowing pattern that mentions sym, returning the refined
// type and true if one was recognized, else (static, false).
func (e *Evaluator) applyPredicate(file *binder.BoundFile, node *binder.FlowNode, sym *binder.Symbol, static *types.Type) (*types.Type, bool) {
	cond := file.File.Get(node.Node)
	if cond == nil {
		return static, false
	}
	return e.narrowCondition(file, cond, sym, static, node.BranchTrue)
}

// narrowCondition recursively evaluates cond as a narrowing predicate on
// sym, given which edge (wantTrue) the consumer is walking.
func (e *Evaluator) narrowCondition(file *binder.BoundFile, cond *pyast.Node, sym *binder.Symbol, static *types.Type, wantTrue bool) (*types.Type, bool) {
	switch cond.Kind {
	case pyast.KindUnaryOp:
		if cond.Operator == "not" && len(cond.Children) == 1 {
			inner := file.File.Get(cond.Children[0])
			if inner == nil {
				return static, false
			}
			return e.narrowCondition(file, inner, sym, static, !wantTrue)
		}
	case pyast.KindName:
		// Bare truthiness test: `if x:` narrows away None on the true
		// edge. Only useful when static is a union including NoneType.
		if cond.Name == sym.Name {
			if wantTrue {
				return e.removeNone(static), true
			}
			return static, false
		}
	case pyast.KindCall:
		return e.narrowCall(file, cond, sym, static, wantTrue)
	case pyast.KindCompare:
		return e.narrowCompare(file, cond, sym, static, wantTrue)
	case pyast.KindNamedExpr:
		if len(cond.Children) == 2 {
			if target := file.File.Get(cond.Children[0]); target != nil && target.Kind == pyast.KindName && target.Name == sym.Name {
				return e.TypeOf(file, cond.Children[1]).General(), true
			}
		}
	case pyast.KindBoolOp:
		// `and`: both edges' refinements apply on the True branch, to a
		// first approximation only the last clause's refinement is kept
		// (matching typical guard idioms `x is not None and x.foo`).
		if cond.Operator == "and" && wantTrue && len(cond.Children) > 0 {
			last := file.File.Get(cond.Children[len(cond.Children)-1])
			if last != nil {
				return e.narrowCondition(file, last, sym, static, true)
			}
		}
	}
	return static, false
}

func (e *Evaluator) narrowCall(file *binder.BoundFile, call *pyast.Node, sym *binder.Symbol, static *types.Type, wantTrue bool) (*types.Type, bool) {
	if len(call.Children) < 2 {
		return static, false
	}
	callee := file.File.Get(call.Children[0])
	if callee == nil || callee.Kind != pyast.KindName {
		return static, false
	}
	switch callee.Name {
	case "isinstance":
		target := firstArg(file, call)
		if target == nil || target.Kind != pyast.KindName || target.Name != sym.Name {
			return static, false
		}
		classArgID := argIDAt(file, call, 1)
		classes := e.isinstanceClasses(file, classArgID)
		if len(classes) == 0 {
			return static, false
		}
		if wantTrue {
			members := make([]*types.Type, 0, len(classes))
			for _, c := range classes {
				members = append(members, types.NewObject(c))
			}
			return types.NewUnion(members...), true
		}
		// The False edge excludes each listed class's Object type, a
		// negative-narrowing step the union Type doesn't currently
		// represent as subtraction, so it conservatively keeps static.
		return static, false
	}
	// `callable(x)` narrows by adding a synthetic Callable upper bound,
	// which this evaluator's Type variant has no way to intersect with an
	// existing class without a protocol-shaped stand-in; left
	// unnarrowed. `type(x) is C` is a Compare, handled in narrowCompare.
	return static, false
}

func (e *Evaluator) narrowCompare(file *binder.BoundFile, cmp *pyast.Node, sym *binder.Symbol, static *types.Type, wantTrue bool) (*types.Type, bool) {
	if len(cmp.Children) < 2 || cmp.Operator == "" {
		return static, false
	}
	left := file.File.Get(cmp.Children[0])
	right := file.File.Get(cmp.Children[1])
	if left == nil || right == nil {
		return static, false
	}

	isNoneLit := func(n *pyast.Node) bool { return n.Kind == pyast.KindName && n.Name == "None" }
	nameMatches := func(n *pyast.Node) bool { return n.Kind == pyast.KindName && n.Name == sym.Name }

	op := cmp.Operator // single comparator only; chained comparisons are not narrowed
	if (nameMatches(left) && isNoneLit(right)) || (nameMatches(right) && isNoneLit(left)) {
		isNot := op == "is not" || op == "!="
		wantsNotNone := isNot == wantTrue
		if wantsNotNone {
			return e.removeNone(static), true
		}
		return e.builtins.none, true
	}

	// `type(x) is C`: narrow x to exactly C (not its subclasses) on the
	// true edge of `is` (or the false edge of `is not`).
	if op == "is" || op == "is not" {
		if callNode, classID, ok := typeCallAndClass(file, left, right, cmp.Children); ok && isTypeCall(file, callNode, sym) {
			wantsMatch := (op == "is") == wantTrue
			if !wantsMatch {
				return static, false
			}
			if cls := e.classFromExpr(file, classID); cls != nil {
				return types.NewObject(cls), true
			}
		}
	}
	return static, false
}

// typeCallAndClass detects `type(x) OP C`/`C OP type(x)` and returns the
// type() call node plus the class-expression node id on the other side.
func typeCallAndClass(file *binder.BoundFile, left, right *pyast.Node, children []pyast.NodeID) (*pyast.Node, pyast.NodeID, bool) {
	if left.Kind == pyast.KindCall {
		return left, children[1], true
	}
	if right.Kind == pyast.KindCall {
		return right, children[0], true
	}
	return nil, pyast.InvalidNodeID, false
}

func isTypeCall(file *binder.BoundFile, call *pyast.Node, sym *binder.Symbol) bool {
	if call == nil || len(call.Children) < 2 {
		return false
	}
	callee := file.File.Get(call.Children[0])
	if callee == nil || callee.Kind != pyast.KindName || callee.Name != "type" {
		return false
	}
	arg := firstArg(file, call)
	return arg != nil && arg.Kind == pyast.KindName && arg.Name == sym.Name
}

func (e *Evaluator) removeNone(t *types.Type) *types.Type {
	if t == nil {
		return t
	}
	if t.Kind == types.KindObject && t.Class == e.builtins.noneType {
		return types.Unknown()
	}
	if t.Kind != types.KindUnion {
		return t
	}
	kept := make([]*types.Type, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Kind == types.KindObject && m.Class == e.builtins.noneType {
			continue
		}
		kept = append(kept, m)
	}
	return types.NewUnion(kept...)
}

func firstArg(file *binder.BoundFile, call *pyast.Node) *pyast.Node {
	return argAt(file, call, 0)
}

// argIDAt returns the node id of the i'th positional argument expression
// of a Call node (Children[0] is the callee, Children[1:] are
// Argument/KeywordArg wrappers), unwrapping the Argument wrapper to its
// value, or InvalidNodeID if there is no such positional argument.
func argIDAt(file *binder.BoundFile, call *pyast.Node, i int) pyast.NodeID {
	idx := i + 1
	if idx >= len(call.Children) {
		return pyast.InvalidNodeID
	}
	wrapper := file.File.Get(call.Children[idx])
	if wrapper == nil || len(wrapper.Children) == 0 || wrapper.Kind == pyast.KindKeywordArg {
		return pyast.InvalidNodeID
	}
	return wrapper.Children[0]
}

// argAt returns the i'th positional argument expression node itself.
func argAt(file *binder.BoundFile, call *pyast.Node, i int) *pyast.Node {
	id := argIDAt(file, call, i)
	if id == pyast.InvalidNodeID {
		return nil
	}
	return file.File.Get(id)
}

// isinstanceClasses resolves an isinstance second argument, a single
// class name or a tuple of class names, to their Class definitions.
func (e *Evaluator) isinstanceClasses(file *binder.BoundFile, id pyast.NodeID) []*types.Class {
	n := file.File.Get(id)
	if n == nil {
		return nil
	}
	if n.Kind == pyast.KindTuple {
		var out []*types.Class
		for _, c := range n.Children {
			if cls := e.classFromExpr(file, c); cls != nil {
				out = append(out, cls)
			}
		}
		return out
	}
	if cls := e.classFromExpr(file, id); cls != nil {
		return []*types.Class{cls}
	}
	return nil
}

func (e *Evaluator) classFromExpr(file *binder.BoundFile, id pyast.NodeID) *types.Class {
	n := file.File.Get(id)
	if n == nil || n.Kind != pyast.KindName {
		return nil
	}
	if cls := e.builtins.classByName(n.Name); cls != nil {
		return cls
	}
	t := e.EvalAnnotation(file, id)
	if t.Kind == types.KindObject {
		return t.Class
	}
	return nil
}
