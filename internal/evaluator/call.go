package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// evalAttribute resolves `obj.name`, applying the descriptor protocol
// named in §4.5: a Function member read through an instance becomes a
// bound method, a property getter's return type is read directly instead
// of the function itself, and a class-level member read through the
// class object (rather than an instance) stays unbound.
func (e *Evaluator) evalAttribute(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	if len(n.Children) != 1 {
		return types.Unknown()
	}
	obj := e.TypeOf(file, n.Children[0])
	return e.memberType(file, n.Children[0], obj, n.Name)
}

// memberType looks up name on obj, applying descriptor binding. objNode
// is obj's own defining expression; it is only passed along to the
// per-member calls for a union, and property getters are detected from
// the owning class's Flags.PropertyNames instead.
func (e *Evaluator) memberType(file *binder.BoundFile, objNode pyast.NodeID, obj *types.Type, name string) *types.Type {
	switch obj.Kind {
	case types.KindModule:
		if t, ok := obj.Module.Export(name); ok {
			return t
		}
		return types.Unknown()
	case types.KindObject:
		member, owner, ok := obj.Class.ResolveMember(name)
		if !ok {
			return types.Unknown()
		}
		return e.bindMember(file, owner, member, true)
	case types.KindClass:
		member, owner, ok := obj.Class.ResolveMember(name)
		if !ok {
			return types.Unknown()
		}
		return e.bindMember(file, owner, member, false)
	case types.KindUnion:
		members := make([]*types.Type, 0, len(obj.Members))
		for _, m := range obj.Members {
			members = append(members, e.memberType(file, objNode, m, name))
		}
		return types.NewUnion(members...)
	default:
		return types.Unknown()
	}
}

// bindMember applies the descriptor protocol to a resolved Member:
// accessed through an instance, an ordinary Function becomes a bound
// method (Bind strips `self`); a classmethod/staticmethod/plain
// class-level value is returned as-is regardless of access path, since
// IsClassLevel already means "not rebound by instance access".
func (e *Evaluator) bindMember(file *binder.BoundFile, owner *types.Class, member *types.Member, throughInstance bool) *types.Type {
	if !throughInstance || member.IsClassLevel {
		return member.Type
	}
	if member.Type.Kind != types.KindFunction {
		return member.Type
	}
	if owner != nil && owner.Flags.PropertyNames[member.Name] {
		return member.Type.Function.Return
	}
	return types.NewFunction(member.Type.Function.Bind())
}

// evalSubscript resolves `target[index]`: generic container element
// access for list/dict/tuple/set/frozenset/range, str/bytes for str/bytes
// targets, and `type[...]`/`Type[...]` pass-through for a Class-kind
// target. Subscripting an instance of any other class, including a user
// generic class, yields Unknown.
func (e *Evaluator) evalSubscript(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	if len(n.Children) < 2 {
		return types.Unknown()
	}
	target := e.TypeOf(file, n.Children[0])
	switch target.Kind {
	case types.KindClass:
		// `SomeClass[int]` as a value expression (not an annotation):
		// PEP 585 generic alias, still ultimately a Class-kind value.
		return target
	case types.KindObject:
		switch target.Class {
		case e.builtins.list_, e.builtins.set_, e.builtins.frozenset_, e.builtins.range_:
			if len(target.TypeArgs) > 0 {
				return target.TypeArgs[0]
			}
			return types.Unknown()
		case e.builtins.dict_:
			if len(target.TypeArgs) > 1 {
				return target.TypeArgs[1]
			}
			return types.Unknown()
		case e.builtins.tuple_:
			return e.tupleSubscriptResult(file, target, n.Children[1])
		case e.builtins.str_, e.builtins.bytes_:
			return types.NewObject(target.Class)
		default:
			return types.Unknown()
		}
	default:
		return types.Unknown()
	}
}

func (e *Evaluator) tupleSubscriptResult(file *binder.BoundFile, target *types.Type, indexNode pyast.NodeID) *types.Type {
	idxNode := file.File.Get(indexNode)
	if idxNode != nil && idxNode.Kind == pyast.KindSlice {
		return target
	}
	if idxNode != nil && idxNode.Kind == pyast.KindNumberLit {
		lit := literalOfNumberText(e.builtins, idxNode.NumberText)
		if lit.Kind == types.KindLiteral && lit.LiteralValue.Kind == types.LiteralInt {
			i := int(lit.LiteralValue.Int)
			if i >= 0 && i < len(target.TypeArgs) {
				return target.TypeArgs[i]
			}
		}
	}
	if len(target.TypeArgs) > 0 {
		return types.NewUnion(target.TypeArgs...)
	}
	return types.Unknown()
}

// evalCall resolves a call expression's result type: constructor calls
// (calling a Class produces an Object of it), ordinary/bound-method
// function calls (the function's Return, after generic TypeVar
// substitution from argument types), and overload resolution (see
// evalOverloadedCall; no diagnostic is reported when no overload
// matches).
func (e *Evaluator) evalCall(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	if len(n.Children) == 0 {
		return types.Unknown()
	}
	callee := e.TypeOf(file, n.Children[0])
	args := n.Children[1:]

	switch callee.Kind {
	case types.KindClass:
		return e.evalConstructorCall(file, callee.Class, args)
	case types.KindFunction:
		return e.evalFunctionCall(file, callee.Function, args)
	case types.KindOverloadedFunction:
		return e.evalOverloadedCall(file, callee, args)
	case types.KindUnion:
		members := make([]*types.Type, 0, len(callee.Members))
		for _, m := range callee.Members {
			members = append(members, e.callOne(file, m, args))
		}
		return types.NewUnion(members...)
	default:
		return types.Unknown()
	}
}

func (e *Evaluator) callOne(file *binder.BoundFile, callee *types.Type, args []pyast.NodeID) *types.Type {
	switch callee.Kind {
	case types.KindClass:
		return e.evalConstructorCall(file, callee.Class, args)
	case types.KindFunction:
		return e.evalFunctionCall(file, callee.Function, args)
	case types.KindOverloadedFunction:
		return e.evalOverloadedCall(file, callee, args)
	default:
		return types.Unknown()
	}
}

// evalConstructorCall instantiates cls: the result is an Object of cls,
// with type arguments solved from `__init__`'s parameter annotations
// against the call's actual argument types when cls is generic.
func (e *Evaluator) evalConstructorCall(file *binder.BoundFile, cls *types.Class, args []pyast.NodeID) *types.Type {
	if len(cls.TypeParams) == 0 {
		return types.NewObject(cls)
	}
	init, _, ok := cls.ResolveMember("__init__")
	if !ok || init.Type.Kind != types.KindFunction {
		placeholders := make([]*types.Type, len(cls.TypeParams))
		for i := range placeholders {
			placeholders[i] = types.Unknown()
		}
		return types.NewObject(cls, placeholders...)
	}
	bound := init.Type.Function.Bind()
	solved := e.solveTypeVars(file, bound, args, cls.TypeParams)
	return types.NewObject(cls, solved...)
}

func (e *Evaluator) evalFunctionCall(file *binder.BoundFile, fn *types.Function, args []pyast.NodeID) *types.Type {
	if fn == nil {
		return types.Unknown()
	}
	if len(fn.TypeParams) == 0 {
		if fn.Return == nil {
			return types.Unknown()
		}
		return fn.Return
	}
	subst := e.solveTypeVarsByName(file, fn, args)
	return substituteTypeVars(fn.Return, subst)
}

// evalOverloadedCall picks the first overload whose parameter count the
// call's argument count could satisfy, a simplified stand-in for full
// signature-compatibility matching (§4.5 "overload resolution: first
// matching overload; else Unknown + diagnostic"). Falls back to the
// implementation's own Return, else Unknown, when none match.
func (e *Evaluator) evalOverloadedCall(file *binder.BoundFile, callee *types.Type, args []pyast.NodeID) *types.Type {
	for _, ov := range callee.Overloads {
		if arityCompatible(ov, len(args)) {
			return e.evalFunctionCall(file, ov, args)
		}
	}
	if callee.OverloadImpl != nil {
		return e.evalFunctionCall(file, callee.OverloadImpl, args)
	}
	return types.Unknown()
}

func arityCompatible(fn *types.Function, nargs int) bool {
	min, max := 0, 0
	unbounded := false
	for _, p := range fn.Parameters {
		switch p.Kind {
		case types.ParamVararg, types.ParamVarKwarg:
			unbounded = true
		default:
			max++
			if !p.HasDefault {
				min++
			}
		}
	}
	if nargs < min {
		return false
	}
	return unbounded || nargs <= max
}

// solveTypeVars binds fn's TypeVar-typed parameters to the actual
// argument types at each matching position, producing one concrete type
// per entry of typeParams in order — a direct equality-only constraint
// solver (§4.5's "generic instantiation via a constraint solver", scoped
// to the positional-equality case; variance-aware subtype/supertype
// constraints are a documented simplification left for a fuller solver).
func (e *Evaluator) solveTypeVars(file *binder.BoundFile, fn *types.Function, args []pyast.NodeID, typeParams []*types.TypeVarInfo) []*types.Type {
	subst := e.solveTypeVarsByName(file, fn, args)
	out := make([]*types.Type, len(typeParams))
	for i, tv := range typeParams {
		if t, ok := subst[tv.Name]; ok {
			out[i] = t
		} else if tv.Bound != nil {
			out[i] = tv.Bound
		} else {
			out[i] = types.Unknown()
		}
	}
	return out
}

func (e *Evaluator) solveTypeVarsByName(file *binder.BoundFile, fn *types.Function, args []pyast.NodeID) map[string]*types.Type {
	subst := make(map[string]*types.Type)
	positional := 0
	for _, p := range fn.Parameters {
		if p.Kind == types.ParamVararg || p.Kind == types.ParamVarKwarg {
			continue
		}
		if positional >= len(args) {
			break
		}
		argID := argExprAt(file, args, positional)
		positional++
		if argID == pyast.InvalidNodeID || p.Type == nil {
			continue
		}
		argType := e.TypeOf(file, argID).General()
		bindTypeVar(p.Type, argType, subst)
	}
	return subst
}

func argExprAt(file *binder.BoundFile, args []pyast.NodeID, i int) pyast.NodeID {
	count := 0
	for _, a := range args {
		wrapper := file.File.Get(a)
		if wrapper == nil || wrapper.Kind == pyast.KindKeywordArg || len(wrapper.Children) == 0 {
			continue
		}
		if count == i {
			return wrapper.Children[0]
		}
		count++
	}
	return pyast.InvalidNodeID
}

// bindTypeVar unifies a parameter's declared type (possibly containing a
// bare TypeVar, or a generic Object wrapping one in its TypeArgs) against
// an actual argument type, recording the first binding seen for each
// TypeVar name.
func bindTypeVar(paramType, argType *types.Type, subst map[string]*types.Type) {
	if paramType == nil || argType == nil {
		return
	}
	if paramType.Kind == types.KindTypeVar {
		if _, bound := subst[paramType.TypeVar.Name]; !bound {
			subst[paramType.TypeVar.Name] = argType
		}
		return
	}
	if paramType.Kind == types.KindObject && argType.Kind == types.KindObject {
		for i, pt := range paramType.TypeArgs {
			if i < len(argType.TypeArgs) {
				bindTypeVar(pt, argType.TypeArgs[i], subst)
			}
		}
	}
}

// substituteTypeVars replaces every TypeVar occurrence in t (including
// nested in TypeArgs) with its solved binding, leaving Unknown for any
// TypeVar left unbound by the call site.
func substituteTypeVars(t *types.Type, subst map[string]*types.Type) *types.Type {
	if t == nil {
		return types.Unknown()
	}
	if t.Kind == types.KindTypeVar {
		if bound, ok := subst[t.TypeVar.Name]; ok {
			return bound
		}
		return types.Unknown()
	}
	if t.Kind == types.KindObject && len(t.TypeArgs) > 0 {
		args := make([]*types.Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = substituteTypeVars(a, subst)
		}
		return types.NewObject(t.Class, args...)
	}
	return t
}
