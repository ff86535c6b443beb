package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// EvalAnnotation interprets node as a type expression rather than a value
// expression — `x: Foo` and `def f() -> Foo` both mean "instances of
// Foo", not "the class object Foo", per §4.5's annotation-vs-value
// distinction. Recognized typing-module spellings (Optional, Union,
// List, Dict, Tuple, Callable) are matched by bare name since the
// binder's symbol table does not currently distinguish a `typing` import
// alias from a same-named local — an acceptable approximation, since
// shadowing `Optional`/`Union` at module scope is vanishingly rare in
// practice.
func (e *Evaluator) EvalAnnotation(file *binder.BoundFile, node pyast.NodeID) *types.Type {
	n := file.File.Get(node)
	if n == nil {
		return types.Unknown()
	}
	switch n.Kind {
	case pyast.KindName:
		return e.annotationName(file, node, n)
	case pyast.KindAttribute:
		// `typing.Optional[...]`'s subscript target; bare `module.Class`
		// resolves through the attribute's own object type.
		return e.evalAttribute(file, node, n)
	case pyast.KindSubscript:
		return e.annotationSubscript(file, node, n)
	case pyast.KindBinOp:
		if n.Operator == "|" && len(n.Children) == 2 {
			a := e.EvalAnnotation(file, n.Children[0])
			b := e.EvalAnnotation(file, n.Children[1])
			return types.NewUnion(a, b)
		}
		return types.Unknown()
	case pyast.KindStringLit:
		// Forward reference: resolve the literal text as a bare dotted
		// name in the annotation's own scope, without re-lexing/parsing
		// it as a nested expression (no scenario in §8 depends on a
		// forward reference containing its own subscript/union syntax).
		return e.resolveForwardRef(file, node, n.StringValue)
	case pyast.KindTuple:
		// `Callable[[int, str], bool]`'s parameter-list position, or a
		// bare tuple annotation; treated as its own tuple-of-annotations
		// value for the one caller (annotationSubscript) that needs it.
		args := make([]*types.Type, 0, len(n.Children))
		for _, c := range n.Children {
			args = append(args, e.EvalAnnotation(file, c))
		}
		return types.NewObject(e.builtins.tuple_, args...)
	default:
		return types.Unknown()
	}
}

func (e *Evaluator) annotationName(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	switch n.Name {
	case "None":
		return e.builtins.none
	case "Any":
		return types.Any()
	case "object":
		return types.NewObject(e.builtins.object)
	}
	if cls := e.builtins.classByName(n.Name); cls != nil {
		return types.NewObject(cls)
	}
	scope := e.enclosingScope(file, node)
	if scope == nil {
		return types.Unknown()
	}
	sym, _ := scope.Lookup(n.Name)
	if sym == nil {
		return types.Unknown()
	}
	decl := sym.Latest()
	if decl == nil {
		return types.Unknown()
	}
	switch decl.Kind {
	case binder.DeclClass:
		return types.NewObject(e.classOf(file, decl.Node, file.File.Get(decl.Node)))
	case binder.DeclAlias:
		return e.resolveAliasDeclaration(file, decl, map[string]bool{})
	default:
		// A TypeVar assigned via `T = TypeVar("T")`, or any other
		// annotation-position name this table doesn't special-case,
		// widens to Unknown rather than guessing.
		return types.Unknown()
	}
}

func (e *Evaluator) annotationSubscript(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	if len(n.Children) == 0 {
		return types.Unknown()
	}
	base := n.Children[0]
	baseName := bareName(file, base)
	indices := n.Children[1:]

	switch baseName {
	case "Optional":
		if len(indices) != 1 {
			return types.Unknown()
		}
		return types.NewUnion(e.EvalAnnotation(file, indices[0]), e.builtins.none)
	case "Union":
		members := make([]*types.Type, 0, len(indices))
		for _, idx := range indices {
			members = append(members, e.EvalAnnotation(file, idx))
		}
		return types.NewUnion(members...)
	case "List", "list":
		return e.genericOne(file, indices, e.builtins.list_)
	case "Set", "set", "FrozenSet", "frozenset":
		cls := e.builtins.set_
		if baseName == "FrozenSet" || baseName == "frozenset" {
			cls = e.builtins.frozenset_
		}
		return e.genericOne(file, indices, cls)
	case "Dict", "dict":
		return e.genericTwo(file, indices, e.builtins.dict_)
	case "Tuple", "tuple":
		args := make([]*types.Type, 0, len(indices))
		for _, idx := range indices {
			args = append(args, e.EvalAnnotation(file, idx))
		}
		return types.NewObject(e.builtins.tuple_, args...)
	case "Type", "type":
		if len(indices) != 1 {
			return types.Unknown()
		}
		inner := e.EvalAnnotation(file, indices[0])
		if inner.Kind == types.KindObject {
			return types.ClassType(inner.Class)
		}
		return types.Unknown()
	case "Callable":
		// A Callable[[params], ret] annotation resolves to a Function
		// value with unnamed positional parameters; ret is indices[1]
		// when given, Unknown when `...` was used for the parameter list.
		fn := &types.Function{Name: "<callable>"}
		if len(indices) == 2 {
			if paramsNode := file.File.Get(indices[0]); paramsNode != nil && paramsNode.Kind == pyast.KindTuple {
				for _, p := range paramsNode.Children {
					fn.Parameters = append(fn.Parameters, types.Parameter{
						Kind: types.ParamPositionalOnly,
						Type: e.EvalAnnotation(file, p),
					})
				}
			}
			fn.Return = e.EvalAnnotation(file, indices[1])
		}
		return types.NewFunction(fn)
	default:
		// A user generic class subscripted with concrete type arguments,
		// e.g. `Box[int]`.
		baseType := e.EvalAnnotation(file, base)
		if baseType.Kind == types.KindObject {
			args := make([]*types.Type, 0, len(indices))
			for _, idx := range indices {
				args = append(args, e.EvalAnnotation(file, idx))
			}
			return types.NewObject(baseType.Class, args...)
		}
		return types.Unknown()
	}
}

func (e *Evaluator) genericOne(file *binder.BoundFile, indices []pyast.NodeID, cls *types.Class) *types.Type {
	if len(indices) != 1 {
		return types.NewObject(cls, types.Unknown())
	}
	return types.NewObject(cls, e.EvalAnnotation(file, indices[0]))
}

func (e *Evaluator) genericTwo(file *binder.BoundFile, indices []pyast.NodeID, cls *types.Class) *types.Type {
	if len(indices) != 2 {
		return types.NewObject(cls, types.Unknown(), types.Unknown())
	}
	return types.NewObject(cls, e.EvalAnnotation(file, indices[0]), e.EvalAnnotation(file, indices[1]))
}

// bareName returns a Name node's identifier, or "" for anything else
// (including a dotted `typing.Optional`, whose last attribute segment a
// caller can fetch via a second bareName call on its Attribute child if
// ever needed).
func bareName(file *binder.BoundFile, node pyast.NodeID) string {
	n := file.File.Get(node)
	if n == nil {
		return ""
	}
	if n.Kind == pyast.KindName {
		return n.Name
	}
	if n.Kind == pyast.KindAttribute {
		return n.Name
	}
	return ""
}

// resolveForwardRef looks up a string-literal annotation's text as a bare
// name in node's enclosing scope, the common case for self-referential
// classes (`class Node: children: list["Node"]`).
func (e *Evaluator) resolveForwardRef(file *binder.BoundFile, node pyast.NodeID, text string) *types.Type {
	scope := e.enclosingScope(file, node)
	if scope == nil {
		return types.Unknown()
	}
	sym, _ := scope.Lookup(text)
	if sym == nil {
		return types.Unknown()
	}
	decl := sym.Latest()
	if decl == nil || decl.Kind != binder.DeclClass {
		return types.Unknown()
	}
	return types.NewObject(e.classOf(file, decl.Node, file.File.Get(decl.Node)))
}
